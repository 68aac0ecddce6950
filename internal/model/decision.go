package model

import "strings"

// Outcome is the verdict of a single triage stage or of the whole pipeline.
type Outcome string

const (
	OutcomePass   Outcome = "PASS"
	OutcomeAccept Outcome = "ACCEPT"
	OutcomeReview Outcome = "REVIEW"
	OutcomeReject Outcome = "REJECT"
)

// StageResult is the outcome of one filter stage. Reasons is empty for a
// clean pass.
type StageResult struct {
	Outcome Outcome  `json:"outcome"`
	Reasons []string `json:"reasons,omitempty"`
}

// Reason joins the stage reasons the way they are rendered in decisions.
func (s StageResult) Reason() string {
	return strings.Join(s.Reasons, ReasonSeparator)
}

// ReasonSeparator joins individual reasons in rendered decisions.
const ReasonSeparator = "; "

// DecisionRecord is the immutable triage result for one compound.
type DecisionRecord struct {
	Identifier          string   `json:"identifier"`
	DevelopabilityScore int      `json:"developability_score"`
	Label               Outcome  `json:"label"`
	Reasons             []string `json:"reason"`
	FinalDecision       string   `json:"final_decision"`

	Primary        StageResult  `json:"primary"`
	Developability *StageResult `json:"developability,omitempty"`
	ADMEPenalty    int          `json:"adme_penalty"`
}

// RenderDecision formats a label and its reasons as "LABEL" or
// "LABEL (reason; reason)".
func RenderDecision(label Outcome, reasons []string) string {
	if len(reasons) == 0 {
		return string(label)
	}
	return string(label) + " (" + strings.Join(reasons, ReasonSeparator) + ")"
}

// TriagedCompound pairs a compound with its decision for reporting.
type TriagedCompound struct {
	Compound CompoundRecord `json:"compound"`
	Decision DecisionRecord `json:"decision"`
}
