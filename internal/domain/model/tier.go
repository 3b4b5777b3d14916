package model

import (
	"encoding/json"
	"fmt"
)

// Tier is the risk category a security is classified into. The ordering is
// meaningful: higher values are more severe, so callers can sort by it.
type Tier int

// Risk tiers from least to most severe.
const (
	TierSafe Tier = iota
	TierWarning
	TierDanger
)

// String returns the lowercase wire name of the tier.
func (t Tier) String() string {
	switch t {
	case TierSafe:
		return "safe"
	case TierWarning:
		return "warning"
	case TierDanger:
		return "danger"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// MarshalJSON encodes the tier as its lowercase name.
func (t Tier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a lowercase tier name.
func (t *Tier) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("tier must be a string: %w", err)
	}
	switch s {
	case "safe":
		*t = TierSafe
	case "warning":
		*t = TierWarning
	case "danger":
		*t = TierDanger
	default:
		return fmt.Errorf("unknown tier: %q", s)
	}
	return nil
}
