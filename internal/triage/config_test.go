package triage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Valid(t *testing.T) {
	require.NoError(t, ValidateConfig(DefaultConfig()))
}

func TestValidateConfig_Errors(t *testing.T) {
	c := DefaultConfig()
	c.HERG.Medium = 0.8
	c.Developability.MW.Review = 600
	c.Developability.QED.Review = 0.2
	c.Penalty.ADMEFlag = -1
	c.Decision.ReviewMin = 90

	err := ValidateConfig(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "herg.medium must be < herg.high")
	assert.Contains(t, err.Error(), "MW: review bound must be <= reject bound")
	assert.Contains(t, err.Error(), "QED: review bound must be >= reject bound")
	assert.Contains(t, err.Error(), "penalties must be >= 0")
	assert.Contains(t, err.Error(), "decision cut-offs")
}

func TestValidateConfig_EmptyLabel(t *testing.T) {
	c := DefaultConfig()
	c.Developability.TPSA.Label = ""

	err := ValidateConfig(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "label must not be empty")
}

func TestLoadRules_OverlaysBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	rules := `
herg:
  high: 0.8
developability:
  mw:
    reject: 600
decision:
  accept_min: 80
`
	require.NoError(t, os.WriteFile(path, []byte(rules), 0o644))

	c, err := LoadRules(path, DefaultConfig())
	require.NoError(t, err)

	assert.InDelta(t, 0.8, c.HERG.High, 0.001)
	assert.InDelta(t, 0.3, c.HERG.Medium, 0.001)
	assert.InDelta(t, 600, c.Developability.MW.Reject, 0.001)
	assert.InDelta(t, 500, c.Developability.MW.Review, 0.001)
	assert.Equal(t, "MW", c.Developability.MW.Label)
	assert.Equal(t, 80, c.Decision.AcceptMin)
	assert.Equal(t, 60, c.Decision.ReviewMin)
}

func TestLoadRules_InvalidProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("decision:\n  review_min: 99\n"), 0o644))

	_, err := LoadRules(path, DefaultConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decision cut-offs")
}

func TestLoadRules_MissingFile(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "nope.yaml"), DefaultConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read rules")
}

func TestMarshalRules_RoundTrip(t *testing.T) {
	data, err := MarshalRules(DefaultConfig())
	require.NoError(t, err)
	assert.Contains(t, string(data), "accept_min: 75")

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	c, err := LoadRules(path, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c)
}

func TestCustomThresholdsChangeReasons(t *testing.T) {
	c := DefaultConfig()
	c.Developability.SA.Reject = 7
	c.Developability.SA.Review = 6
	c.Penalty.SAFloor = 7

	rec := cleanCompound()
	rec.SyntheticAccessibility.Value = 6.5

	d := NewEvaluator(c).Evaluate(rec)
	assert.Equal(t, "REVIEW (SA 6.0-7.0)", d.FinalDecision)
	assert.Equal(t, 90, d.DevelopabilityScore)
}
