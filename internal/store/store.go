// Package store persists triage runs, their decisions and the compounds
// dropped while building the property table.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/admet-cli/internal/model"
)

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = eris.New("run not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for triage runs.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, source string) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, status model.RunStatus, summary *model.BatchSummary) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Results
	SaveDecisions(ctx context.Context, runID string, items []model.TriagedCompound) error
	ListDecisions(ctx context.Context, runID string) ([]model.TriagedCompound, error)
	SaveFailures(ctx context.Context, runID string, failures []model.BuildFailure) error
	ListFailures(ctx context.Context, runID string) ([]model.BuildFailure, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

const defaultListLimit = 100

// decisionRow is the flattened form of a triaged compound shared by both
// backends.
type decisionRow struct {
	position      int
	identifier    string
	score         int
	label         string
	finalDecision string
	decision      []byte
	compound      []byte
}
