package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/admet-cli/internal/model"
)

// cleanCompound is a compound that passes every stage with no penalty.
func cleanCompound() model.CompoundRecord {
	return model.CompoundRecord{
		Identifier:             "lig_001_ligand_poses.pdb",
		StructureDescriptor:    "CC(=O)Nc1ccc(O)cc1",
		DockingScore:           model.Num(-8.2),
		Lipinski:               model.Yes(),
		PAINSAlert:             model.No(),
		BrenkAlert:             model.No(),
		Ames:                   model.No(),
		HERG:                   model.Probability(0.1),
		DILI:                   model.Probability(0.1),
		Carcinogenicity:        model.No(),
		SyntheticAccessibility: model.Num(4.0),
		QED:                    model.Num(0.8),
		MolecularWeight:        model.Num(300),
		TPSA:                   model.Num(60),
		LogP:                   model.Num(2),
		GIAbsorption:           "High",
		Caco2Permeability:      "High",
		BBBPermeability:        "High",
		PlasmaProteinBinding:   model.Num(50),
		CYP3A4Inhibition:       model.No(),
		CYP2D6Inhibition:       model.No(),
	}
}

func newTestEvaluator() *Evaluator {
	return NewEvaluator(DefaultConfig())
}

func TestEvaluate_CleanCompoundAccepted(t *testing.T) {
	d := newTestEvaluator().Evaluate(cleanCompound())

	assert.Equal(t, 100, d.DevelopabilityScore)
	assert.Equal(t, model.OutcomeAccept, d.Label)
	assert.Equal(t, "ACCEPT", d.FinalDecision)
	assert.Empty(t, d.Reasons)
	assert.Equal(t, "lig_001_ligand_poses.pdb", d.Identifier)
}

func TestEvaluate_HighSARejectedByDevelopabilityFilter(t *testing.T) {
	rec := cleanCompound()
	rec.SyntheticAccessibility = model.Num(6.5)

	d := newTestEvaluator().Evaluate(rec)

	assert.Equal(t, 0, d.DevelopabilityScore)
	assert.Equal(t, model.OutcomeReject, d.Label)
	assert.Equal(t, "REJECT (SA > 6.0)", d.FinalDecision)
	require.NotNil(t, d.Developability)
	assert.Equal(t, model.OutcomeReject, d.Developability.Outcome)
}

func TestEvaluate_SABandWarningPromotesToReview(t *testing.T) {
	rec := cleanCompound()
	rec.SyntheticAccessibility = model.Num(5.5)

	d := newTestEvaluator().Evaluate(rec)

	require.NotNil(t, d.Developability)
	assert.Equal(t, model.OutcomeReview, d.Developability.Outcome)
	assert.Equal(t, "SA 5.0-6.0", d.Developability.Reason())
	assert.Equal(t, 90, d.DevelopabilityScore)
	assert.Equal(t, "REVIEW (SA 5.0-6.0)", d.FinalDecision)
}

func TestEvaluate_CombinedWarnings(t *testing.T) {
	rec := cleanCompound()
	rec.HERG = model.Probability(0.5)
	rec.QED = model.Num(0.5)

	d := newTestEvaluator().Evaluate(rec)

	assert.Equal(t, model.OutcomeReview, d.Primary.Outcome)
	assert.Equal(t, []string{ReasonHERGMedium}, d.Primary.Reasons)
	require.NotNil(t, d.Developability)
	assert.Equal(t, []string{"QED 0.4-0.6"}, d.Developability.Reasons)
	assert.Equal(t, 10, d.ADMEPenalty)
	assert.Equal(t, 80, d.DevelopabilityScore)
	assert.Equal(t, "REVIEW (hERG Medium Risk; QED 0.4-0.6)", d.FinalDecision)
	assert.Equal(t, []string{"hERG Medium Risk", "QED 0.4-0.6"}, d.Reasons)
}

func TestEvaluate_ScoreLabelKeptWithWarnings(t *testing.T) {
	rec := cleanCompound()
	rec.HERG = model.Tiered(model.TierMedium) // review + 10
	rec.GIAbsorption = "Moderate"             // 5
	rec.Caco2Permeability = "Moderate"        // 5
	rec.BBBPermeability = "Borderline"        // 5
	rec.PlasmaProteinBinding = model.Num(97)  // 5
	rec.CYP3A4Inhibition = model.ParseFlag("Weak")
	rec.CYP2D6Inhibition = model.Yes()

	d := newTestEvaluator().Evaluate(rec)

	assert.Equal(t, 40, d.ADMEPenalty)
	assert.Equal(t, 60, d.DevelopabilityScore)
	assert.Equal(t, model.OutcomeReview, d.Label)
	assert.Equal(t, "REVIEW (hERG Medium Risk)", d.FinalDecision)

	rec.QED = model.Num(0.45) // QED review + 10 penalty
	d = newTestEvaluator().Evaluate(rec)
	assert.Equal(t, 50, d.DevelopabilityScore)
	assert.Equal(t, "REJECT (hERG Medium Risk; QED 0.4-0.6)", d.FinalDecision)
}

func TestEvaluate_LowScoreWithoutWarnings(t *testing.T) {
	rec := cleanCompound()
	rec.GIAbsorption = "Medium"
	rec.Caco2Permeability = "Moderate"
	rec.BBBPermeability = "Borderline"
	rec.PlasmaProteinBinding = model.Num(95)
	rec.CYP3A4Inhibition = model.Yes()

	d := newTestEvaluator().Evaluate(rec)

	assert.Equal(t, 75, d.DevelopabilityScore)
	assert.Equal(t, "ACCEPT", d.FinalDecision)

	rec.CYP2D6Inhibition = model.Yes()
	d = newTestEvaluator().Evaluate(rec)
	assert.Equal(t, 70, d.DevelopabilityScore)
	assert.Equal(t, "REVIEW", d.FinalDecision)
	assert.Empty(t, d.Reasons)
}

func TestEvaluate_PrimaryRejectSkipsLaterStages(t *testing.T) {
	rec := cleanCompound()
	rec.PAINSAlert = model.Yes()
	rec.SyntheticAccessibility = model.Num(9)

	d := newTestEvaluator().Evaluate(rec)

	assert.Equal(t, "REJECT (PAINS Alert)", d.FinalDecision)
	assert.Equal(t, 0, d.DevelopabilityScore)
	assert.Nil(t, d.Developability)
	assert.Zero(t, d.ADMEPenalty)
}

func TestEvaluate_DevelopabilityRejectListsOnlyRejectReasons(t *testing.T) {
	rec := cleanCompound()
	rec.QED = model.Num(0.3)
	rec.MolecularWeight = model.Num(600)
	rec.TPSA = model.Num(150)

	d := newTestEvaluator().Evaluate(rec)

	assert.Equal(t, "REJECT (QED < 0.4; MW > 550)", d.FinalDecision)
}

func TestEvaluate_LipinskiFailAlwaysRejects(t *testing.T) {
	variants := []func(*model.CompoundRecord){
		func(r *model.CompoundRecord) {},
		func(r *model.CompoundRecord) { r.PAINSAlert = model.Yes() },
		func(r *model.CompoundRecord) { r.HERG = model.Probability(0.9) },
		func(r *model.CompoundRecord) { r.SyntheticAccessibility = model.Num(1) },
		func(r *model.CompoundRecord) { *r = model.CompoundRecord{Identifier: r.Identifier} },
	}

	ev := newTestEvaluator()
	for i, mutate := range variants {
		rec := cleanCompound()
		mutate(&rec)
		rec.Lipinski = model.ParseFlag("Fail")

		d := ev.Evaluate(rec)
		assert.Contains(t, d.FinalDecision, "REJECT", "variant %d", i)
		assert.Equal(t, 0, d.DevelopabilityScore, "variant %d", i)
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	ev := newTestEvaluator()
	rec := cleanCompound()
	rec.HERG = model.Probability(0.5)
	rec.QED = model.Num(0.5)

	first := ev.Evaluate(rec)
	second := ev.Evaluate(rec)
	assert.Equal(t, first, second)
}

func TestEvaluate_EmptyRecordUsesDefaults(t *testing.T) {
	d := newTestEvaluator().Evaluate(model.CompoundRecord{Identifier: "bare"})

	// SA defaults to 5.0, inside the scoring band; QED defaults to 0.6, outside
	// its penalty range; PPB defaults to 90.
	assert.Equal(t, model.OutcomePass, d.Primary.Outcome)
	require.NotNil(t, d.Developability)
	assert.Equal(t, model.OutcomeAccept, d.Developability.Outcome)
	assert.Equal(t, 90, d.DevelopabilityScore)
	assert.Equal(t, "ACCEPT", d.FinalDecision)
}

func TestEvaluate_ScoreAlwaysInRange(t *testing.T) {
	ev := newTestEvaluator()
	saValues := []float64{-5, 0, 4.9, 5, 5.5, 6, 6.01, 10, 50}
	qedValues := []float64{-1, 0, 0.39, 0.4, 0.59, 0.6, 1, 2}
	hergValues := []model.RiskLevel{
		model.Probability(0), model.Probability(0.3), model.Probability(0.69),
		model.Probability(0.7), model.Tiered(model.TierMedium), model.ParseRiskLevel("unknown"),
	}

	for _, sa := range saValues {
		for _, qed := range qedValues {
			for _, herg := range hergValues {
				rec := cleanCompound()
				rec.SyntheticAccessibility = model.Num(sa)
				rec.QED = model.Num(qed)
				rec.HERG = herg
				rec.GIAbsorption = "Moderate"
				rec.CYP3A4Inhibition = model.Yes()
				rec.CYP2D6Inhibition = model.Yes()
				rec.PlasmaProteinBinding = model.Num(99)

				d := ev.Evaluate(rec)
				assert.GreaterOrEqual(t, d.DevelopabilityScore, 0)
				assert.LessOrEqual(t, d.DevelopabilityScore, 100)
				if d.Label == model.OutcomeReject {
					assert.Contains(t, d.FinalDecision, "REJECT")
				}
			}
		}
	}
}
