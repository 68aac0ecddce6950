package model

import "time"

// RunStatus represents the current state of a triage run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusEmpty    RunStatus = "empty"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one batch triage execution.
type Run struct {
	ID          string        `json:"id"`
	Source      string        `json:"source"`
	Status      RunStatus     `json:"status"`
	Summary     *BatchSummary `json:"summary,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

// FailureKind classifies why a compound never reached triage.
type FailureKind string

const (
	// FailureStructure marks a compound whose structure descriptor could not be derived.
	FailureStructure FailureKind = "structure"
	// FailureAlignment marks a property row that could not be matched to exactly one compound.
	FailureAlignment FailureKind = "alignment"
)

// BuildFailure records a compound or table row dropped while assembling the
// property table.
type BuildFailure struct {
	Identifier string      `json:"identifier"`
	Kind       FailureKind `json:"kind"`
	Source     string      `json:"source"`
	Detail     string      `json:"detail"`
}

// BatchSummary aggregates the decisions of one run.
type BatchSummary struct {
	Total    int     `json:"total"`
	Accepted int     `json:"accepted"`
	Review   int     `json:"review"`
	Rejected int     `json:"rejected"`
	Dropped  int     `json:"dropped"`
	MinScore int     `json:"min_score"`
	MaxScore int     `json:"max_score"`
	AvgScore float64 `json:"avg_score"`
}

// Summarize tallies decisions by final label. dropped is the number of
// compounds removed before triage.
func Summarize(decisions []DecisionRecord, dropped int) BatchSummary {
	s := BatchSummary{Total: len(decisions), Dropped: dropped}
	if len(decisions) == 0 {
		return s
	}
	s.MinScore = 101
	var sum int
	for _, d := range decisions {
		switch d.Label {
		case OutcomeAccept:
			s.Accepted++
		case OutcomeReview:
			s.Review++
		default:
			s.Rejected++
		}
		sum += d.DevelopabilityScore
		if d.DevelopabilityScore < s.MinScore {
			s.MinScore = d.DevelopabilityScore
		}
		if d.DevelopabilityScore > s.MaxScore {
			s.MaxScore = d.DevelopabilityScore
		}
	}
	s.AvgScore = float64(sum) / float64(len(decisions))
	return s
}
