package triage

import (
	"github.com/sells-group/admet-cli/internal/config"
	"github.com/sells-group/admet-cli/internal/model"
)

// MaxScore is the developability score of a compound with no penalties.
const MaxScore = 100

// ADMEPenalty sums the deductions for secondary ADME risk flags. Every rule
// contributes independently. The hERG medium band is charged here even when
// the primary filter already flagged it for review.
func ADMEPenalty(rec *model.CompoundRecord, p Profile, c config.PenaltyConfig) int {
	penalty := 0

	if model.CategoryIs(rec.GIAbsorption, "Medium", "Moderate") {
		penalty += c.ADMEFlag
	}
	if model.CategoryIs(rec.Caco2Permeability, "Moderate") {
		penalty += c.ADMEFlag
	}
	if model.CategoryIs(rec.BBBPermeability, "Borderline") {
		penalty += c.ADMEFlag
	}
	if rec.PlasmaProteinBinding.Or(c.PPBDefault) >= c.PPBThreshold {
		penalty += c.ADMEFlag
	}
	if rec.CYP3A4Inhibition.IsSetOrWeak() {
		penalty += c.ADMEFlag
	}
	if rec.CYP2D6Inhibition.IsSetOrWeak() {
		penalty += c.ADMEFlag
	}
	if p.HERG == model.TierMedium {
		penalty += c.HERGMedium
	}

	return penalty
}

// DevelopabilityScore combines the synthetic accessibility band, the QED
// penalty and the ADME penalty into a score in [0,100]. A synthetic
// accessibility above the floor returns 0 immediately without consulting
// the other penalties.
func DevelopabilityScore(rec *model.CompoundRecord, admePenalty int, c config.PenaltyConfig) int {
	sa := rec.SyntheticAccessibility.Or(c.SADefault)
	if sa > c.SAFloor {
		return 0
	}

	penalty := admePenalty
	if sa >= c.SABandMin {
		penalty += c.SABand
	}
	if rec.QED.Or(c.QEDDefault) < c.QEDPenaltyBelow {
		penalty += c.QEDLow
	}

	return clampScore(MaxScore - penalty)
}

func clampScore(s int) int {
	return max(0, min(MaxScore, s))
}

// LabelForScore maps a developability score onto ACCEPT, REVIEW or REJECT.
func LabelForScore(score int, c config.DecisionConfig) model.Outcome {
	switch {
	case score >= c.AcceptMin:
		return model.OutcomeAccept
	case score >= c.ReviewMin:
		return model.OutcomeReview
	default:
		return model.OutcomeReject
	}
}
