package treemap

import (
	"fmt"
	"math"
	"strings"
)

// WeightMode selects how raw item weights map to the weights used for area.
type WeightMode int

const (
	// Linear uses the raw weight directly.
	Linear WeightMode = iota
	// Logarithmic uses ln(max(weight, 1)).
	Logarithmic
)

// String returns the canonical name of the mode ("linear" or "log").
func (m WeightMode) String() string {
	switch m {
	case Linear:
		return "linear"
	case Logarithmic:
		return "log"
	default:
		return fmt.Sprintf("WeightMode(%d)", int(m))
	}
}

// ParseWeightMode parses a mode name. Matching is case-insensitive and accepts
// "linear", "log", and "logarithmic".
func ParseWeightMode(s string) (WeightMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear":
		return Linear, nil
	case "log", "logarithmic":
		return Logarithmic, nil
	default:
		return Linear, fmt.Errorf("unknown weight mode %q (must be 'linear' or 'log')", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m WeightMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *WeightMode) UnmarshalText(text []byte) error {
	mode, err := ParseWeightMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// Effective returns the weight used for area computation.
// Non-finite and non-positive weights yield 0 in both modes.
func (m WeightMode) Effective(weight float64) float64 {
	if math.IsNaN(weight) || math.IsInf(weight, 0) || weight <= 0 {
		return 0
	}
	if m == Logarithmic {
		return math.Log(math.Max(weight, 1))
	}
	return weight
}
