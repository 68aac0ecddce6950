package triage

import (
	"strconv"

	"github.com/sells-group/admet-cli/internal/config"
	"github.com/sells-group/admet-cli/internal/model"
)

type boundProperty struct {
	constraint config.Constraint
	value      model.Number
}

// constraints lists the developability constraints in evaluation order.
func constraints(c config.DevelopabilityConfig) []config.Constraint {
	return []config.Constraint{c.SA, c.QED, c.MW, c.TPSA, c.LogP}
}

func boundProperties(rec *model.CompoundRecord, c config.DevelopabilityConfig) []boundProperty {
	return []boundProperty{
		{c.SA, rec.SyntheticAccessibility},
		{c.QED, rec.QED},
		{c.MW, rec.MolecularWeight},
		{c.TPSA, rec.TPSA},
		{c.LogP, rec.LogP},
	}
}

// DevelopabilityFilter evaluates every soft constraint without
// short-circuiting. Any rejecting constraint makes the stage REJECT and only
// the rejecting reasons are reported; otherwise any reviewing constraint makes
// it REVIEW. Absent or unparsable properties use the constraint default.
func DevelopabilityFilter(rec *model.CompoundRecord, c config.DevelopabilityConfig) model.StageResult {
	var rejects, reviews []string

	for _, bp := range boundProperties(rec, c) {
		ct := bp.constraint
		v := bp.value.Or(ct.Default)
		switch {
		case exceedsReject(v, ct):
			rejects = append(rejects, rejectReason(ct))
		case inReviewBand(v, ct):
			reviews = append(reviews, reviewReason(ct))
		}
	}

	switch {
	case len(rejects) > 0:
		return reject(rejects...)
	case len(reviews) > 0:
		return review(reviews...)
	}
	return model.StageResult{Outcome: model.OutcomeAccept}
}

func exceedsReject(v float64, ct config.Constraint) bool {
	if ct.LowerIsWorse {
		return v < ct.Reject
	}
	return v > ct.Reject
}

// inReviewBand assumes the value did not reject.
func inReviewBand(v float64, ct config.Constraint) bool {
	if ct.ReviewInclusive && v == ct.Review {
		return true
	}
	if ct.LowerIsWorse {
		return v < ct.Review
	}
	return v > ct.Review
}

func rejectReason(ct config.Constraint) string {
	op := " > "
	if ct.LowerIsWorse {
		op = " < "
	}
	return ct.Label + op + formatBound(ct.Reject, ct.Precision)
}

func reviewReason(ct config.Constraint) string {
	lo, hi := ct.Review, ct.Reject
	if ct.LowerIsWorse {
		lo, hi = ct.Reject, ct.Review
	}
	return ct.Label + " " + formatBound(lo, ct.Precision) + "-" + formatBound(hi, ct.Precision)
}

func formatBound(v float64, precision int) string {
	return strconv.FormatFloat(v, 'f', precision, 64)
}
