package enums

import "fmt"

// MovementKind describes why a variant's balances changed.
type MovementKind string

const (
	MovementKindSale       MovementKind = "sale"
	MovementKindInward     MovementKind = "inward"
	MovementKindOutward    MovementKind = "outward"
	MovementKindTransfer   MovementKind = "transfer"
	MovementKindAdjustment MovementKind = "adjustment"
)

var validMovementKinds = []MovementKind{
	MovementKindSale,
	MovementKindInward,
	MovementKindOutward,
	MovementKindTransfer,
	MovementKindAdjustment,
}

// String implements fmt.Stringer.
func (m MovementKind) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MovementKind.
func (m MovementKind) IsValid() bool {
	for _, candidate := range validMovementKinds {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMovementKind converts raw input into a MovementKind.
func ParseMovementKind(value string) (MovementKind, error) {
	for _, candidate := range validMovementKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid movement kind %q", value)
}
