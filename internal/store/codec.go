package store

import (
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/sells-group/admet-cli/internal/model"
)

func encodeDecision(pos int, tc model.TriagedCompound) (decisionRow, error) {
	d, err := json.Marshal(tc.Decision)
	if err != nil {
		return decisionRow{}, eris.Wrapf(err, "store: marshal decision %s", tc.Decision.Identifier)
	}
	c, err := json.Marshal(tc.Compound)
	if err != nil {
		return decisionRow{}, eris.Wrapf(err, "store: marshal compound %s", tc.Compound.Identifier)
	}
	return decisionRow{
		position:      pos,
		identifier:    tc.Decision.Identifier,
		score:         tc.Decision.DevelopabilityScore,
		label:         string(tc.Decision.Label),
		finalDecision: tc.Decision.FinalDecision,
		decision:      d,
		compound:      c,
	}, nil
}

func decodeDecision(decision, compound []byte) (model.TriagedCompound, error) {
	var tc model.TriagedCompound
	if err := json.Unmarshal(decision, &tc.Decision); err != nil {
		return tc, eris.Wrap(err, "store: unmarshal decision")
	}
	if err := json.Unmarshal(compound, &tc.Compound); err != nil {
		return tc, eris.Wrap(err, "store: unmarshal compound")
	}
	return tc, nil
}

func encodeSummary(s *model.BatchSummary) ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	out, err := json.Marshal(s)
	return out, eris.Wrap(err, "store: marshal summary")
}

func decodeSummary(data []byte) (*model.BatchSummary, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var s model.BatchSummary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal summary")
	}
	return &s, nil
}
