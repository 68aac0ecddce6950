package report

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// WriteXLSX saves a workbook with a "Report" sheet mirroring the CSV and a
// "Summary" sheet with the batch counts.
func WriteXLSX(path string, res Results) error {
	f := xlsx.NewFile()

	sheet, err := f.AddSheet("Report")
	if err != nil {
		return eris.Wrap(err, "report: add report sheet")
	}
	addRow(sheet, Columns)
	for _, tc := range res.Compounds {
		addRow(sheet, Row(tc))
	}

	summary, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "report: add summary sheet")
	}
	s := res.Summary
	for _, kv := range [][2]string{
		{"Total", strconv.Itoa(s.Total)},
		{"ACCEPT", strconv.Itoa(s.Accepted)},
		{"REVIEW", strconv.Itoa(s.Review)},
		{"REJECT", strconv.Itoa(s.Rejected)},
		{"Dropped", strconv.Itoa(s.Dropped)},
		{"Min Score", strconv.Itoa(s.MinScore)},
		{"Max Score", strconv.Itoa(s.MaxScore)},
		{"Mean Score", strconv.FormatFloat(s.AvgScore, 'f', 2, 64)},
	} {
		addRow(summary, kv[:])
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "report: save xlsx %s", path)
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, cells []string) {
	row := sheet.AddRow()
	for _, c := range cells {
		cell := row.AddCell()
		if v, err := strconv.ParseFloat(c, 64); err == nil {
			cell.SetFloat(v)
			continue
		}
		cell.SetString(c)
	}
}
