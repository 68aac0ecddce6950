package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/admet-cli/internal/config"
	"github.com/sells-group/admet-cli/internal/ingest"
	"github.com/sells-group/admet-cli/internal/model"
	"github.com/sells-group/admet-cli/internal/report"
	"github.com/sells-group/admet-cli/internal/resilience"
	"github.com/sells-group/admet-cli/internal/store"
	"github.com/sells-group/admet-cli/internal/triage"
)

// triageOptions are the inputs of one triage run.
type triageOptions struct {
	Structures  string
	Descriptors []string
	Predictions []string
	Poses       string
	Rules       string
}

// source describes the run inputs for the run history.
func (o triageOptions) source() string {
	var parts []string
	if o.Structures != "" {
		parts = append(parts, o.Structures)
	}
	if o.Poses != "" {
		parts = append(parts, o.Poses)
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ",")
}

// triageResult is what a run produced.
type triageResult struct {
	RunID    string
	Summary  model.BatchSummary
	Items    []model.TriagedCompound
	Failures []model.BuildFailure
	Written  []string
}

var triageCmd = &cobra.Command{
	Use:   "triage",
	Short: "Triage a batch of compounds",
	Long:  "Builds the property table from the structure list, pose files and property tables, evaluates every compound and writes the report.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		opts := triageOptions{}
		opts.Structures, _ = cmd.Flags().GetString("structures")
		opts.Descriptors, _ = cmd.Flags().GetStringSlice("descriptors")
		opts.Predictions, _ = cmd.Flags().GetStringSlice("predictions")
		opts.Poses, _ = cmd.Flags().GetString("poses")
		opts.Rules, _ = cmd.Flags().GetString("rules")

		if cmd.Flags().Changed("output-dir") {
			cfg.Report.OutputDir, _ = cmd.Flags().GetString("output-dir")
		}
		if cmd.Flags().Changed("format") {
			cfg.Report.Formats, _ = cmd.Flags().GetStringSlice("format")
		}
		if cmd.Flags().Changed("concurrency") {
			cfg.Batch.Concurrency, _ = cmd.Flags().GetInt("concurrency")
		}
		if err := cfg.Validate("triage"); err != nil {
			return err
		}
		if opts.Structures == "" && opts.Poses == "" {
			return eris.New("triage: --structures or --poses is required")
		}

		var st store.Store
		if save, _ := cmd.Flags().GetBool("save"); save {
			s, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close() //nolint:errcheck
			st = s
		}

		res, err := runTriage(ctx, cfg, opts, st)
		if errors.Is(err, model.ErrEmptyBatch) {
			fmt.Fprintln(os.Stderr, "No compounds to process.")
			return nil
		}
		if err != nil {
			return err
		}

		if res.RunID != "" {
			fmt.Printf("Run: %s\n", res.RunID)
		}
		report.FormatSummary(os.Stdout, res.Summary, res.Failures)
		for _, p := range res.Written {
			fmt.Printf("Wrote %s\n", p)
		}
		return nil
	},
}

// runTriage assembles, evaluates and reports one batch. When st is non-nil
// the run, its decisions and its build failures are recorded. An empty
// structure batch returns model.ErrEmptyBatch and writes no report.
func runTriage(ctx context.Context, c *config.Config, opts triageOptions, st store.Store) (*triageResult, error) {
	rules := c.Triage
	if opts.Rules != "" {
		r, err := triage.LoadRules(opts.Rules, rules)
		if err != nil {
			return nil, err
		}
		rules = r
	}
	if err := triage.ValidateConfig(rules); err != nil {
		return nil, err
	}

	src, err := loadSources(ctx, c, opts)
	if err != nil {
		return nil, err
	}

	res := &triageResult{}
	if st != nil {
		run, err := st.CreateRun(ctx, opts.source())
		if err != nil {
			return nil, err
		}
		res.RunID = run.ID
	}

	built, err := ingest.Build(src)
	if err != nil {
		if errors.Is(err, model.ErrEmptyBatch) {
			completeRun(ctx, st, res.RunID, model.RunStatusEmpty, nil)
		}
		return nil, err
	}
	res.Failures = built.Failures

	var decisions []model.DecisionRecord
	if len(built.Compounds) > 0 {
		decisions, err = triage.NewEngine(rules, c.Batch.Concurrency).EvaluateBatch(ctx, built.Compounds)
		if err != nil {
			completeRun(ctx, st, res.RunID, model.RunStatusFailed, nil)
			return nil, err
		}
	}

	res.Items = make([]model.TriagedCompound, len(decisions))
	for i := range decisions {
		res.Items[i] = model.TriagedCompound{Compound: built.Compounds[i], Decision: decisions[i]}
	}
	res.Summary = model.Summarize(decisions, built.Dropped())

	if st != nil {
		if err := persistRun(ctx, st, c.Store, res); err != nil {
			completeRun(ctx, st, res.RunID, model.RunStatusFailed, nil)
			return nil, err
		}
	}

	res.Written, err = report.WriteAll(c.Report.OutputDir, c.Report.Formats, report.Results{
		RunID:     res.RunID,
		Summary:   res.Summary,
		Compounds: res.Items,
		Failures:  res.Failures,
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("triage: run complete",
		zap.String("run_id", res.RunID),
		zap.Int("total", res.Summary.Total),
		zap.Int("dropped", res.Summary.Dropped),
	)
	return res, nil
}

// loadSources reads every input named in opts.
func loadSources(ctx context.Context, c *config.Config, opts triageOptions) (ingest.Sources, error) {
	var src ingest.Sources

	if opts.Structures != "" {
		t, err := ingest.ReadTable(opts.Structures)
		if err != nil {
			return src, err
		}
		src.Structures = t
	}

	if opts.Poses != "" {
		poses, err := ingest.ScanPoses(ctx, opts.Poses, c.Ingest.PoseGlob, c.Ingest.DefaultDockingScore, c.Batch.Concurrency)
		if err != nil {
			return src, err
		}
		src.Poses = poses
	}

	paths := append(append([]string{}, opts.Descriptors...), opts.Predictions...)
	for _, p := range paths {
		t, err := ingest.ReadTable(p)
		if err != nil {
			return src, err
		}
		src.Properties = append(src.Properties, t)
	}
	return src, nil
}

func persistRun(ctx context.Context, st store.Store, sc config.StoreConfig, res *triageResult) error {
	err := resilience.Do(ctx, storeRetry(sc, "save_decisions"), func(ctx context.Context) error {
		return st.SaveDecisions(ctx, res.RunID, res.Items)
	})
	if err != nil {
		return eris.Wrap(err, "triage: save decisions")
	}

	err = resilience.Do(ctx, storeRetry(sc, "save_failures"), func(ctx context.Context) error {
		return st.SaveFailures(ctx, res.RunID, res.Failures)
	})
	if err != nil {
		return eris.Wrap(err, "triage: save failures")
	}

	summary := res.Summary
	err = resilience.Do(ctx, storeRetry(sc, "complete_run"), func(ctx context.Context) error {
		return st.CompleteRun(ctx, res.RunID, model.RunStatusComplete, &summary)
	})
	if err != nil {
		return eris.Wrap(err, "triage: complete run")
	}
	return nil
}

// completeRun records a terminal status, logging rather than returning a
// store error so the original failure reaches the caller.
func completeRun(ctx context.Context, st store.Store, runID string, status model.RunStatus, summary *model.BatchSummary) {
	if st == nil || runID == "" {
		return
	}
	if err := st.CompleteRun(ctx, runID, status, summary); err != nil {
		zap.L().Error("triage: record run status",
			zap.String("run_id", runID),
			zap.String("status", string(status)),
			zap.Error(err),
		)
	}
}

func init() {
	triageCmd.Flags().String("structures", "", "structure list (csv, tsv or xlsx) with identifier and SMILES columns")
	triageCmd.Flags().StringSlice("descriptors", nil, "descriptor table(s) to join by identifier")
	triageCmd.Flags().StringSlice("predictions", nil, "ADMET prediction table(s) to join by identifier")
	triageCmd.Flags().String("poses", "", "directory of docked pose PDB files")
	triageCmd.Flags().String("output-dir", "", "report directory (default from config)")
	triageCmd.Flags().StringSlice("format", nil, "report formats: csv, json, xlsx (default from config)")
	triageCmd.Flags().Bool("save", false, "record the run in the store")
	triageCmd.Flags().String("rules", "", "YAML thresholds profile")
	triageCmd.Flags().Int("concurrency", 0, "parallel evaluations (default from config)")
	rootCmd.AddCommand(triageCmd)
}
