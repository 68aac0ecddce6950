package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultBands = RiskBands{High: 0.7, Medium: 0.3}

func TestParseRiskLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		kind RiskKind
		tier Tier
	}{
		{"", RiskAbsent, TierUnknown},
		{"0.82", RiskProbability, TierHigh},
		{"0.3", RiskProbability, TierMedium},
		{"0.12", RiskProbability, TierLow},
		{"high", RiskTiered, TierHigh},
		{" Medium ", RiskTiered, TierMedium},
		{"LOW", RiskTiered, TierLow},
		{"moderate", RiskTiered, TierUnknown},
		{"n/a", RiskTiered, TierUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			got := ParseRiskLevel(tt.raw)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.tier, got.Resolve(defaultBands))
			assert.Equal(t, tt.raw, got.Raw)
		})
	}
}

func TestRiskLevel_ResolveBoundaries(t *testing.T) {
	t.Parallel()

	assert.Equal(t, TierHigh, Probability(0.7).Resolve(defaultBands))
	assert.Equal(t, TierMedium, Probability(0.6999).Resolve(defaultBands))
	assert.Equal(t, TierMedium, Probability(0.3).Resolve(defaultBands))
	assert.Equal(t, TierLow, Probability(0.2999).Resolve(defaultBands))
	assert.Equal(t, TierUnknown, RiskLevel{}.Resolve(defaultBands))

	custom := RiskBands{High: 0.9, Medium: 0.5}
	assert.Equal(t, TierMedium, Probability(0.7).Resolve(custom))
	assert.Equal(t, TierHigh, Tiered(TierHigh).Resolve(custom))
}

func TestRiskLevel_JSON(t *testing.T) {
	t.Parallel()

	out, err := json.Marshal([]RiskLevel{Probability(0.45), Tiered(TierMedium), {}})
	require.NoError(t, err)
	assert.JSONEq(t, `[0.45,"Medium",null]`, string(out))

	var in []RiskLevel
	require.NoError(t, json.Unmarshal([]byte(`[0.9,"low",null,"0.5"]`), &in))
	require.Len(t, in, 4)
	assert.True(t, in[0].IsNumeric())
	assert.Equal(t, TierHigh, in[0].Resolve(defaultBands))
	assert.Equal(t, TierLow, in[1].Resolve(defaultBands))
	assert.Equal(t, RiskAbsent, in[2].Kind)
	assert.Equal(t, TierMedium, in[3].Resolve(defaultBands))
}

func TestParseFlag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want FlagValue
	}{
		{"", FlagUnknown},
		{"Yes", FlagYes},
		{"y", FlagYes},
		{"TRUE", FlagYes},
		{"Positive", FlagYes},
		{"Pass", FlagYes},
		{"Inhibitor", FlagYes},
		{"1", FlagYes},
		{"1.0", FlagYes},
		{"0", FlagNo},
		{"0.63", FlagNo},
		{"No", FlagNo},
		{"Negative", FlagNo},
		{"Fail", FlagNo},
		{"Non-Inhibitor", FlagNo},
		{"Weak", FlagWeak},
		{"maybe", FlagUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParseFlag(tt.raw).Value)
		})
	}
}

func TestFlag_Predicates(t *testing.T) {
	t.Parallel()

	assert.True(t, Yes().IsSet())
	assert.True(t, Yes().IsSetOrWeak())
	assert.False(t, Yes().IsCleared())

	weak := ParseFlag("weak")
	assert.False(t, weak.IsSet())
	assert.True(t, weak.IsSetOrWeak())

	assert.True(t, No().IsCleared())
	assert.False(t, Flag{}.IsCleared())
	assert.False(t, Flag{}.IsSet())

	assert.Equal(t, Yes(), Bool(true))
	assert.Equal(t, No(), Bool(false))
}

func TestFlag_JSON(t *testing.T) {
	t.Parallel()

	out, err := json.Marshal([]Flag{Yes(), ParseFlag("1"), {}})
	require.NoError(t, err)
	assert.JSONEq(t, `["Yes",1,null]`, string(out))

	var in []Flag
	require.NoError(t, json.Unmarshal([]byte(`[true,1,"Fail","Weak",null]`), &in))
	require.Len(t, in, 5)
	assert.True(t, in[0].IsSet())
	assert.True(t, in[1].IsSet())
	assert.True(t, in[2].IsCleared())
	assert.Equal(t, FlagWeak, in[3].Value)
	assert.Equal(t, FlagUnknown, in[4].Value)
}
