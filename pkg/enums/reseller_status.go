package enums

import "fmt"

// ResellerStatus marks whether a reseller can accrue new orders.
type ResellerStatus string

const (
	ResellerStatusActive   ResellerStatus = "active"
	ResellerStatusInactive ResellerStatus = "inactive"
)

var validResellerStatuses = []ResellerStatus{
	ResellerStatusActive,
	ResellerStatusInactive,
}

// String implements fmt.Stringer.
func (r ResellerStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ResellerStatus.
func (r ResellerStatus) IsValid() bool {
	for _, candidate := range validResellerStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseResellerStatus converts raw input into a ResellerStatus.
func ParseResellerStatus(value string) (ResellerStatus, error) {
	for _, candidate := range validResellerStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reseller status %q", value)
}
