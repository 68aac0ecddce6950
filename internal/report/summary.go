package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sells-group/admet-cli/internal/model"
)

// FormatSummary writes the batch counts and any build failures to w.
func FormatSummary(out io.Writer, s model.BatchSummary, failures []model.BuildFailure) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Compounds:\t%d\n", s.Total)
	_, _ = fmt.Fprintf(w, "  ACCEPT:\t%d\n", s.Accepted)
	_, _ = fmt.Fprintf(w, "  REVIEW:\t%d\n", s.Review)
	_, _ = fmt.Fprintf(w, "  REJECT:\t%d\n", s.Rejected)
	_, _ = fmt.Fprintf(w, "Dropped:\t%d\n", s.Dropped)
	if s.Total > 0 {
		_, _ = fmt.Fprintf(w, "Score:\tmin %d  max %d  mean %.1f\n", s.MinScore, s.MaxScore, s.AvgScore)
	}
	_ = w.Flush()

	if len(failures) == 0 {
		return
	}
	_, _ = fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "IDENTIFIER\tKIND\tSOURCE\tDETAIL")
	for _, f := range failures {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.Identifier, f.Kind, f.Source, f.Detail)
	}
	_ = w.Flush()
}

// FormatDecisions writes decisions as an aligned table.
func FormatDecisions(out io.Writer, decisions []model.DecisionRecord) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "IDENTIFIER\tSCORE\tDECISION")
	_, _ = fmt.Fprintln(w, "----------\t-----\t--------")
	for _, d := range decisions {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\n", d.Identifier, d.DevelopabilityScore, d.FinalDecision)
	}
	_ = w.Flush()
}
