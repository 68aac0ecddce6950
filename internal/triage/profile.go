package triage

import (
	"github.com/sells-group/admet-cli/internal/config"
	"github.com/sells-group/admet-cli/internal/model"
)

// Profile carries the union-typed toxicity predictions of one compound
// resolved to a single tier each. It is computed once per evaluation and
// shared by every stage that compares against a risk tier.
type Profile struct {
	HERG model.Tier
	DILI model.Tier
}

// NewProfile resolves the compound's hERG and DILI predictions using the
// configured probability bands.
func NewProfile(rec *model.CompoundRecord, cfg config.TriageConfig) Profile {
	return Profile{
		HERG: rec.HERG.Resolve(cfg.HERG),
		DILI: rec.DILI.Resolve(cfg.DILI),
	}
}
