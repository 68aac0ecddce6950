package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/admet-cli/internal/model"
	"github.com/sells-group/admet-cli/internal/report"
	"github.com/sells-group/admet-cli/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect triage run history",
	Long:  "Commands for listing saved triage runs and viewing their decisions.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved triage runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Status: model.RunStatus(status),
			Limit:  limit,
		})
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the decisions of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		format, _ := cmd.Flags().GetString("format")
		if format != "table" && format != "csv" {
			return eris.Errorf("runs show: unsupported format %q", format)
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}
		items, err := st.ListDecisions(ctx, run.ID)
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		if format == "csv" {
			return report.WriteCSV(os.Stdout, items)
		}

		failures, err := st.ListFailures(ctx, run.ID)
		if err != nil {
			return eris.Wrap(err, "runs show")
		}
		formatRunDetail(os.Stdout, run, items, failures)
		return nil
	},
}

func init() {
	runsListCmd.Flags().String("status", "", "filter by run status (running, complete, empty, failed)")
	runsListCmd.Flags().Int("limit", 50, "max number of runs to display")

	runsShowCmd.Flags().String("format", "table", "output format: table or csv")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

// formatRunsList writes a tabular list of runs to w.
func formatRunsList(out io.Writer, runs []model.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSOURCE\tSTATUS\tTOTAL\tACCEPT\tREVIEW\tREJECT\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t------\t------\t-----\t------\t------\t------\t-------")

	for _, r := range runs {
		source := r.Source
		if len(source) > 30 {
			source = source[:27] + "..."
		}

		var s model.BatchSummary
		if r.Summary != nil {
			s = *r.Summary
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			truncateID(r.ID),
			source,
			r.Status,
			s.Total,
			s.Accepted,
			s.Review,
			s.Rejected,
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// formatRunDetail writes a run header, its summary and its decisions to w.
func formatRunDetail(out io.Writer, run *model.Run, items []model.TriagedCompound, failures []model.BuildFailure) {
	_, _ = fmt.Fprintf(out, "Run:     %s\n", run.ID)
	_, _ = fmt.Fprintf(out, "Source:  %s\n", run.Source)
	_, _ = fmt.Fprintf(out, "Status:  %s\n", run.Status)
	_, _ = fmt.Fprintf(out, "Created: %s\n\n", run.CreatedAt.Format("2006-01-02 15:04:05"))

	var s model.BatchSummary
	if run.Summary != nil {
		s = *run.Summary
	}
	report.FormatSummary(out, s, failures)

	if len(items) == 0 {
		return
	}
	decisions := make([]model.DecisionRecord, len(items))
	for i, it := range items {
		decisions[i] = it.Decision
	}
	_, _ = fmt.Fprintln(out)
	report.FormatDecisions(out, decisions)
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
