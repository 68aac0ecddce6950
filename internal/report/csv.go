// Package report renders triage results: the fixed-column CSV report, JSON
// records, an XLSX workbook and the plain-text batch summary.
package report

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/admet-cli/internal/model"
)

// Columns is the header of the CSV report, in output order.
var Columns = []string{
	"Filename",
	"Docking Score",
	"Final Decision",
	"SA Score",
	"QED",
	"hERG",
	"Ames",
	"CYP3A4 Inhibition",
	"CYP2D6 Inhibition",
	"Developability Score",
}

// Row projects one triaged compound onto Columns.
func Row(tc model.TriagedCompound) []string {
	c, d := tc.Compound, tc.Decision
	return []string{
		c.Identifier,
		FormatNumber(c.DockingScore),
		d.FinalDecision,
		FormatNumber(c.SyntheticAccessibility),
		FormatNumber(c.QED),
		formatRaw(c.HERG.Raw),
		formatRaw(c.Ames.Raw),
		formatRaw(c.CYP3A4Inhibition.Raw),
		formatRaw(c.CYP2D6Inhibition.Raw),
		strconv.Itoa(d.DevelopabilityScore),
	}
}

// WriteCSV writes the report header followed by one row per compound.
func WriteCSV(w io.Writer, items []model.TriagedCompound) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return eris.Wrap(err, "report: write csv header")
	}
	for _, tc := range items {
		if err := cw.Write(Row(tc)); err != nil {
			return eris.Wrapf(err, "report: write csv row %s", tc.Compound.Identifier)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "report: flush csv")
	}
	return nil
}

// FormatNumber rounds to two decimals and drops trailing zeros. An absent
// number is an empty cell.
func FormatNumber(n model.Number) string {
	if !n.Valid {
		return ""
	}
	v := math.Round(n.Value*100) / 100
	if v == 0 {
		v = 0 // normalize -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatRaw prints categorical values as given and rounds numeric ones.
func formatRaw(raw string) string {
	if n := model.ParseNumber(raw); n.Valid {
		return FormatNumber(n)
	}
	return raw
}
