package report

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/admet-cli/internal/model"
)

// Results is the document written to admet_results.json.
type Results struct {
	RunID     string                  `json:"run_id,omitempty"`
	Summary   model.BatchSummary      `json:"summary"`
	Compounds []model.TriagedCompound `json:"compounds"`
	Failures  []model.BuildFailure    `json:"failures,omitempty"`
}

// WriteJSON writes the full records of a batch as indented JSON.
func WriteJSON(w io.Writer, res Results) error {
	if res.Compounds == nil {
		res.Compounds = []model.TriagedCompound{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return eris.Wrap(err, "report: encode json")
	}
	return nil
}
