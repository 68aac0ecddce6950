// Package triage implements the staged compound triage rules: a short-circuit
// safety filter, a soft developability filter, ADME penalties, a composite
// developability score and the final ACCEPT/REVIEW/REJECT decision.
package triage

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/admet-cli/internal/config"
	"github.com/sells-group/admet-cli/internal/model"
)

// DefaultConfig returns the standard triage thresholds.
func DefaultConfig() config.TriageConfig {
	return config.TriageConfig{
		HERG: model.RiskBands{High: 0.7, Medium: 0.3},
		DILI: model.RiskBands{High: 0.7, Medium: 0.3},

		Developability: config.DevelopabilityConfig{
			SA:   config.Constraint{Label: "SA", Default: 5.0, Reject: 6.0, Review: 5.0, Precision: 1},
			QED:  config.Constraint{Label: "QED", Default: 0.6, Reject: 0.4, Review: 0.6, LowerIsWorse: true, Precision: 1},
			MW:   config.Constraint{Label: "MW", Default: 400, Reject: 550, Review: 500, ReviewInclusive: true},
			TPSA: config.Constraint{Label: "TPSA", Default: 100, Reject: 160, Review: 140, ReviewInclusive: true},
			LogP: config.Constraint{Label: "WLogP", Default: 3, Reject: 6, Review: 5, ReviewInclusive: true},
		},

		Penalty: config.PenaltyConfig{
			ADMEFlag:        5,
			HERGMedium:      10,
			SABand:          10,
			QEDLow:          10,
			PPBThreshold:    95,
			PPBDefault:      90,
			SAFloor:         6.0,
			SABandMin:       5.0,
			SADefault:       5.0,
			QEDPenaltyBelow: 0.6,
			QEDDefault:      0.6,
		},

		Decision: config.DecisionConfig{
			AcceptMin: 75,
			ReviewMin: 60,
		},
	}
}

// ValidateConfig checks that a TriageConfig is internally consistent.
func ValidateConfig(c config.TriageConfig) error {
	var errs []string

	for name, b := range map[string]model.RiskBands{"herg": c.HERG, "dili": c.DILI} {
		if b.Medium < 0 || b.High > 1 {
			errs = append(errs, fmt.Sprintf("%s bands must lie within [0,1]", name))
		}
		if b.Medium >= b.High {
			errs = append(errs, fmt.Sprintf("%s.medium must be < %s.high", name, name))
		}
	}

	for _, ct := range constraints(c.Developability) {
		if ct.Label == "" {
			errs = append(errs, "developability constraint label must not be empty")
			continue
		}
		if ct.LowerIsWorse && ct.Review < ct.Reject {
			errs = append(errs, fmt.Sprintf("%s: review bound must be >= reject bound", ct.Label))
		}
		if !ct.LowerIsWorse && ct.Review > ct.Reject {
			errs = append(errs, fmt.Sprintf("%s: review bound must be <= reject bound", ct.Label))
		}
		if ct.Precision < 0 || ct.Precision > 4 {
			errs = append(errs, fmt.Sprintf("%s: precision must be between 0 and 4", ct.Label))
		}
	}

	p := c.Penalty
	if p.ADMEFlag < 0 || p.HERGMedium < 0 || p.SABand < 0 || p.QEDLow < 0 {
		errs = append(errs, "penalties must be >= 0")
	}
	if p.SABandMin > p.SAFloor {
		errs = append(errs, "penalty.sa_band_min must be <= penalty.sa_floor")
	}

	d := c.Decision
	if d.ReviewMin < 0 || d.AcceptMin > 100 || d.ReviewMin > d.AcceptMin {
		errs = append(errs, "decision cut-offs must satisfy 0 <= review_min <= accept_min <= 100")
	}

	if len(errs) > 0 {
		return eris.Errorf("triage: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// LoadRules overlays a YAML rules profile onto base. Keys absent from the
// file keep their base values.
func LoadRules(path string, base config.TriageConfig) (config.TriageConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, eris.Wrapf(err, "triage: read rules %s", path)
	}
	out := base
	if err := yaml.Unmarshal(data, &out); err != nil {
		return base, eris.Wrapf(err, "triage: parse rules %s", path)
	}
	if err := ValidateConfig(out); err != nil {
		return base, err
	}
	return out, nil
}

// MarshalRules renders a TriageConfig as a YAML rules profile.
func MarshalRules(c config.TriageConfig) ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, eris.Wrap(err, "triage: marshal rules")
	}
	return out, nil
}
