package triage

import (
	"github.com/sells-group/admet-cli/internal/config"
	"github.com/sells-group/admet-cli/internal/model"
)

// Evaluator runs the full stage pipeline for single compounds. It holds no
// mutable state and is safe for concurrent use.
type Evaluator struct {
	cfg config.TriageConfig
}

// NewEvaluator creates an Evaluator with the given thresholds.
func NewEvaluator(cfg config.TriageConfig) *Evaluator {
	return &Evaluator{cfg: cfg}
}

// Config returns the thresholds the evaluator applies.
func (e *Evaluator) Config() config.TriageConfig {
	return e.cfg
}

// Evaluate produces the decision for one compound. A REJECT from the primary
// or developability filter ends evaluation with a score of 0 and that
// stage's reasons. Otherwise the score decides the label and any REVIEW
// warnings from either filter are attached, promoting an ACCEPT to REVIEW.
func (e *Evaluator) Evaluate(rec model.CompoundRecord) model.DecisionRecord {
	p := NewProfile(&rec, e.cfg)

	d := model.DecisionRecord{
		Identifier: rec.Identifier,
		Primary:    PrimaryFilter(&rec, p),
		Reasons:    []string{},
	}
	if d.Primary.Outcome == model.OutcomeReject {
		return rejected(d, d.Primary.Reasons)
	}

	dev := DevelopabilityFilter(&rec, e.cfg.Developability)
	d.Developability = &dev
	if dev.Outcome == model.OutcomeReject {
		return rejected(d, dev.Reasons)
	}

	d.ADMEPenalty = ADMEPenalty(&rec, p, e.cfg.Penalty)
	d.DevelopabilityScore = DevelopabilityScore(&rec, d.ADMEPenalty, e.cfg.Penalty)
	d.Label = LabelForScore(d.DevelopabilityScore, e.cfg.Decision)

	if d.Primary.Outcome == model.OutcomeReview {
		d.Reasons = append(d.Reasons, d.Primary.Reasons...)
	}
	if dev.Outcome == model.OutcomeReview {
		d.Reasons = append(d.Reasons, dev.Reasons...)
	}
	if len(d.Reasons) > 0 && d.Label == model.OutcomeAccept {
		d.Label = model.OutcomeReview
	}

	d.FinalDecision = model.RenderDecision(d.Label, d.Reasons)
	return d
}

func rejected(d model.DecisionRecord, reasons []string) model.DecisionRecord {
	d.Label = model.OutcomeReject
	d.DevelopabilityScore = 0
	d.Reasons = append(d.Reasons, reasons...)
	d.FinalDecision = model.RenderDecision(d.Label, d.Reasons)
	return d
}
