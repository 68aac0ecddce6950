package triage

import "github.com/sells-group/admet-cli/internal/model"

// Primary filter reasons.
const (
	ReasonLipinski     = "Lipinski Fail"
	ReasonPAINS        = "PAINS Alert"
	ReasonBrenk        = "Brenk Alert"
	ReasonAmes         = "Ames Positive"
	ReasonHERGHigh     = "hERG High Risk"
	ReasonHERGMedium   = "hERG Medium Risk"
	ReasonCarcinogenic = "Carcinogenic"
	ReasonDILIHigh     = "DILI High Risk"
	ReasonDILIMedium   = "DILI Medium Risk"
)

// PrimaryFilter applies the hard safety gate. Rules are checked in priority
// order and the first match decides: Lipinski, PAINS, Brenk, Ames, hERG,
// carcinogenicity, DILI. A medium hERG risk stops evaluation with REVIEW, so
// carcinogenicity and DILI are not consulted for that compound.
func PrimaryFilter(rec *model.CompoundRecord, p Profile) model.StageResult {
	switch {
	case rec.Lipinski.IsCleared():
		return reject(ReasonLipinski)
	case rec.PAINSAlert.IsSet():
		return reject(ReasonPAINS)
	case rec.BrenkAlert.IsSet():
		return reject(ReasonBrenk)
	case rec.Ames.IsSet():
		return reject(ReasonAmes)
	}

	switch p.HERG {
	case model.TierHigh:
		return reject(ReasonHERGHigh)
	case model.TierMedium:
		return review(ReasonHERGMedium)
	}

	if rec.Carcinogenicity.IsSet() {
		return reject(ReasonCarcinogenic)
	}

	switch p.DILI {
	case model.TierHigh:
		return reject(ReasonDILIHigh)
	case model.TierMedium:
		return review(ReasonDILIMedium)
	}

	return model.StageResult{Outcome: model.OutcomePass}
}

func reject(reasons ...string) model.StageResult {
	return model.StageResult{Outcome: model.OutcomeReject, Reasons: reasons}
}

func review(reasons ...string) model.StageResult {
	return model.StageResult{Outcome: model.OutcomeReview, Reasons: reasons}
}
