package report

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Output file names inside the report directory.
const (
	CSVFile  = "final_admet_report.csv"
	JSONFile = "admet_results.json"
	XLSXFile = "final_admet_report.xlsx"
)

// WriteAll writes res to dir in each requested format ("csv", "json",
// "xlsx") and returns the paths written.
func WriteAll(dir string, formats []string, res Results) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "report: create %s", dir)
	}

	var written []string
	for _, format := range formats {
		var (
			path string
			err  error
		)
		switch format {
		case "csv":
			path = filepath.Join(dir, CSVFile)
			err = writeFile(path, func(f *os.File) error { return WriteCSV(f, res.Compounds) })
		case "json":
			path = filepath.Join(dir, JSONFile)
			err = writeFile(path, func(f *os.File) error { return WriteJSON(f, res) })
		case "xlsx":
			path = filepath.Join(dir, XLSXFile)
			err = WriteXLSX(path, res)
		default:
			return written, eris.Errorf("report: unsupported format %q", format)
		}
		if err != nil {
			return written, err
		}
		written = append(written, path)
		zap.L().Info("report: written", zap.String("format", format), zap.String("path", path))
	}
	return written, nil
}

func writeFile(path string, fn func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", path)
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "report: close %s", path)
	}
	return nil
}
