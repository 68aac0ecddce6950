package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/admet-cli/internal/model"
)

func penaltyOf(rec model.CompoundRecord) int {
	cfg := DefaultConfig()
	return ADMEPenalty(&rec, NewProfile(&rec, cfg), cfg.Penalty)
}

func TestADMEPenalty_Rules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.CompoundRecord)
		want   int
	}{
		{"none", func(r *model.CompoundRecord) {}, 0},
		{"gi medium", func(r *model.CompoundRecord) { r.GIAbsorption = "Medium" }, 5},
		{"gi moderate", func(r *model.CompoundRecord) { r.GIAbsorption = "moderate" }, 5},
		{"gi low", func(r *model.CompoundRecord) { r.GIAbsorption = "Low" }, 0},
		{"caco2 moderate", func(r *model.CompoundRecord) { r.Caco2Permeability = "Moderate" }, 5},
		{"bbb borderline", func(r *model.CompoundRecord) { r.BBBPermeability = "Borderline" }, 5},
		{"ppb at threshold", func(r *model.CompoundRecord) { r.PlasmaProteinBinding = model.Num(95) }, 5},
		{"ppb below threshold", func(r *model.CompoundRecord) { r.PlasmaProteinBinding = model.Num(94.99) }, 0},
		{"ppb unparsable", func(r *model.CompoundRecord) { r.PlasmaProteinBinding = model.ParseNumber("high") }, 0},
		{"cyp3a4 weak", func(r *model.CompoundRecord) { r.CYP3A4Inhibition = model.ParseFlag("Weak") }, 5},
		{"cyp3a4 one", func(r *model.CompoundRecord) { r.CYP3A4Inhibition = model.ParseFlag("1") }, 5},
		{"cyp2d6 yes", func(r *model.CompoundRecord) { r.CYP2D6Inhibition = model.ParseFlag("Yes") }, 5},
		{"cyp2d6 probability", func(r *model.CompoundRecord) { r.CYP2D6Inhibition = model.ParseFlag("0.4") }, 0},
		{"herg medium", func(r *model.CompoundRecord) { r.HERG = model.Probability(0.3) }, 10},
		{"herg high not charged", func(r *model.CompoundRecord) { r.HERG = model.Probability(0.7) }, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := cleanCompound()
			tt.mutate(&rec)
			assert.Equal(t, tt.want, penaltyOf(rec))
		})
	}
}

func TestADMEPenalty_Maximum(t *testing.T) {
	rec := cleanCompound()
	rec.GIAbsorption = "Moderate"
	rec.Caco2Permeability = "Moderate"
	rec.BBBPermeability = "Borderline"
	rec.PlasmaProteinBinding = model.Num(99)
	rec.CYP3A4Inhibition = model.Yes()
	rec.CYP2D6Inhibition = model.ParseFlag("Weak")
	rec.HERG = model.Tiered(model.TierMedium)

	assert.Equal(t, 40, penaltyOf(rec))
}

func TestDevelopabilityScore(t *testing.T) {
	cfg := DefaultConfig().Penalty

	tests := []struct {
		name    string
		sa      model.Number
		qed     model.Number
		penalty int
		want    int
	}{
		{"clean", model.Num(4), model.Num(0.8), 0, 100},
		{"sa band low edge", model.Num(5.0), model.Num(0.8), 0, 90},
		{"sa band high edge", model.Num(6.0), model.Num(0.8), 0, 90},
		{"sa floor", model.Num(6.01), model.Num(0.8), 0, 0},
		{"sa floor ignores penalties", model.Num(7), model.Num(0.1), 40, 0},
		{"sa default in band", model.Number{}, model.Num(0.8), 0, 90},
		{"qed low", model.Num(4), model.Num(0.59), 0, 90},
		{"qed default", model.Num(4), model.ParseNumber("bad"), 0, 100},
		{"all penalties", model.Num(5.5), model.Num(0.5), 40, 40},
		{"clamped at zero", model.Num(5.5), model.Num(0.5), 95, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := model.CompoundRecord{SyntheticAccessibility: tt.sa, QED: tt.qed}
			assert.Equal(t, tt.want, DevelopabilityScore(&rec, tt.penalty, cfg))
		})
	}
}

// With default thresholds the developability filter rejects every SA above
// the scorer floor, so both paths report 0.
func TestDevelopabilityScore_FloorAgreesWithFilter(t *testing.T) {
	ev := newTestEvaluator()
	cfg := DefaultConfig().Penalty
	for _, sa := range []float64{6.001, 6.5, 8, 10} {
		rec := cleanCompound()
		rec.SyntheticAccessibility = model.Num(sa)

		assert.Equal(t, 0, DevelopabilityScore(&rec, 0, cfg), "sa=%v", sa)

		d := ev.Evaluate(rec)
		assert.Equal(t, 0, d.DevelopabilityScore, "sa=%v", sa)
		assert.Equal(t, "REJECT (SA > 6.0)", d.FinalDecision, "sa=%v", sa)
	}
}

func TestLabelForScore(t *testing.T) {
	cfg := DefaultConfig().Decision

	assert.Equal(t, model.OutcomeAccept, LabelForScore(100, cfg))
	assert.Equal(t, model.OutcomeAccept, LabelForScore(75, cfg))
	assert.Equal(t, model.OutcomeReview, LabelForScore(74, cfg))
	assert.Equal(t, model.OutcomeReview, LabelForScore(60, cfg))
	assert.Equal(t, model.OutcomeReject, LabelForScore(59, cfg))
	assert.Equal(t, model.OutcomeReject, LabelForScore(0, cfg))
}
