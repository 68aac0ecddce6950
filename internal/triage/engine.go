package triage

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/admet-cli/internal/config"
	"github.com/sells-group/admet-cli/internal/model"
)

// ErrEmptyBatch is returned when a batch has no compounds.
var ErrEmptyBatch = model.ErrEmptyBatch

// Engine evaluates batches of compounds. Compounds are independent, so the
// engine fans evaluation out over a bounded number of goroutines and writes
// each decision into the slot matching its input position.
type Engine struct {
	eval        *Evaluator
	concurrency int
}

// NewEngine creates an Engine. A concurrency below 1 evaluates sequentially.
func NewEngine(cfg config.TriageConfig, concurrency int) *Engine {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Engine{eval: NewEvaluator(cfg), concurrency: concurrency}
}

// Evaluator returns the engine's single-compound evaluator.
func (e *Engine) Evaluator() *Evaluator {
	return e.eval
}

// EvaluateBatch returns one decision per compound in input order. An empty
// batch returns ErrEmptyBatch.
func (e *Engine) EvaluateBatch(ctx context.Context, compounds []model.CompoundRecord) ([]model.DecisionRecord, error) {
	if len(compounds) == 0 {
		return nil, ErrEmptyBatch
	}

	decisions := make([]model.DecisionRecord, len(compounds))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i := range compounds {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			decisions[i] = e.eval.Evaluate(compounds[i])
			zap.L().Debug("triage: compound evaluated",
				zap.String("identifier", compounds[i].Identifier),
				zap.String("decision", decisions[i].FinalDecision),
				zap.Int("score", decisions[i].DevelopabilityScore),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "triage: evaluate batch")
	}

	summary := model.Summarize(decisions, 0)
	zap.L().Info("triage: batch evaluated",
		zap.Int("total", summary.Total),
		zap.Int("accepted", summary.Accepted),
		zap.Int("review", summary.Review),
		zap.Int("rejected", summary.Rejected),
	)

	return decisions, nil
}
