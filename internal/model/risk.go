package model

import (
	"encoding/json"
	"strconv"
)

// Tier is a normalized toxicity risk tier.
type Tier string

const (
	TierUnknown Tier = ""
	TierLow     Tier = "Low"
	TierMedium  Tier = "Medium"
	TierHigh    Tier = "High"
)

// RiskKind tags which variant a RiskLevel carries.
type RiskKind uint8

const (
	RiskAbsent RiskKind = iota
	RiskTiered
	RiskProbability
)

// RiskLevel is a toxicity prediction reported either as a categorical tier
// or as a probability in [0,1]. Raw keeps the value as received for reporting.
type RiskLevel struct {
	Kind        RiskKind
	Tier        Tier
	Probability float64
	Raw         string
}

// RiskBands holds the probability cut-offs used to map a probability onto a tier.
type RiskBands struct {
	High   float64 `yaml:"high" mapstructure:"high"`
	Medium float64 `yaml:"medium" mapstructure:"medium"`
}

// Probability returns a probability-valued RiskLevel.
func Probability(p float64) RiskLevel {
	return RiskLevel{Kind: RiskProbability, Probability: p, Raw: strconv.FormatFloat(p, 'f', -1, 64)}
}

// Tiered returns a tier-valued RiskLevel.
func Tiered(t Tier) RiskLevel {
	return RiskLevel{Kind: RiskTiered, Tier: t, Raw: string(t)}
}

// ParseRiskLevel interprets a raw cell: numeric values become probabilities,
// "low"/"medium"/"high" (any case) become tiers. Anything else is kept as
// Raw but resolves to TierUnknown.
func ParseRiskLevel(raw string) RiskLevel {
	if n := ParseNumber(raw); n.Valid {
		r := Probability(n.Value)
		r.Raw = raw
		return r
	}
	switch normalize(raw) {
	case "":
		return RiskLevel{}
	case "low":
		return RiskLevel{Kind: RiskTiered, Tier: TierLow, Raw: raw}
	case "medium":
		return RiskLevel{Kind: RiskTiered, Tier: TierMedium, Raw: raw}
	case "high":
		return RiskLevel{Kind: RiskTiered, Tier: TierHigh, Raw: raw}
	}
	return RiskLevel{Kind: RiskTiered, Tier: TierUnknown, Raw: raw}
}

// Resolve maps the variant onto a single tier. A probability at or above
// bands.High is High, one in [bands.Medium, bands.High) is Medium and
// anything lower is Low.
func (r RiskLevel) Resolve(bands RiskBands) Tier {
	switch r.Kind {
	case RiskTiered:
		return r.Tier
	case RiskProbability:
		switch {
		case r.Probability >= bands.High:
			return TierHigh
		case r.Probability >= bands.Medium:
			return TierMedium
		default:
			return TierLow
		}
	}
	return TierUnknown
}

// IsNumeric reports whether the level carries a probability.
func (r RiskLevel) IsNumeric() bool { return r.Kind == RiskProbability }

func (r RiskLevel) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case RiskProbability:
		return json.Marshal(r.Probability)
	case RiskTiered:
		return json.Marshal(r.Raw)
	}
	return []byte("null"), nil
}

func (r *RiskLevel) UnmarshalJSON(data []byte) error {
	raw, ok := rawJSON(data)
	if !ok {
		*r = RiskLevel{}
		return nil
	}
	*r = ParseRiskLevel(raw)
	return nil
}

// FlagValue is a normalized boolean-like prediction.
type FlagValue uint8

const (
	FlagUnknown FlagValue = iota
	FlagNo
	FlagWeak
	FlagYes
)

// Flag is a boolean-like property ("Yes"/"No", "Positive", "Pass"/"Fail",
// 1/0, true/false, "Weak"). Raw keeps the value as received.
type Flag struct {
	Value FlagValue
	Raw   string
}

// Yes returns a set flag.
func Yes() Flag { return Flag{Value: FlagYes, Raw: "Yes"} }

// No returns a cleared flag.
func No() Flag { return Flag{Value: FlagNo, Raw: "No"} }

// Bool returns the flag equivalent of b.
func Bool(b bool) Flag {
	if b {
		return Yes()
	}
	return No()
}

// ParseFlag interprets a raw cell. Numeric values count as set only when
// exactly 1, so a model probability such as 0.63 is not a positive call.
func ParseFlag(raw string) Flag {
	if n := ParseNumber(raw); n.Valid {
		if n.Value == 1 {
			return Flag{Value: FlagYes, Raw: raw}
		}
		return Flag{Value: FlagNo, Raw: raw}
	}
	switch normalize(raw) {
	case "":
		return Flag{}
	case "yes", "y", "true", "positive", "pass", "inhibitor":
		return Flag{Value: FlagYes, Raw: raw}
	case "weak":
		return Flag{Value: FlagWeak, Raw: raw}
	case "no", "n", "false", "negative", "fail", "non-inhibitor":
		return Flag{Value: FlagNo, Raw: raw}
	}
	return Flag{Value: FlagUnknown, Raw: raw}
}

// IsSet reports a definite positive.
func (f Flag) IsSet() bool { return f.Value == FlagYes }

// IsCleared reports a definite negative.
func (f Flag) IsCleared() bool { return f.Value == FlagNo }

// IsSetOrWeak reports a positive or weak call.
func (f Flag) IsSetOrWeak() bool { return f.Value == FlagYes || f.Value == FlagWeak }

func (f Flag) MarshalJSON() ([]byte, error) {
	if f.Raw == "" {
		return []byte("null"), nil
	}
	if n := ParseNumber(f.Raw); n.Valid {
		return json.Marshal(n.Value)
	}
	return json.Marshal(f.Raw)
}

func (f *Flag) UnmarshalJSON(data []byte) error {
	raw, ok := rawJSON(data)
	if !ok {
		*f = Flag{}
		return nil
	}
	*f = ParseFlag(raw)
	return nil
}
