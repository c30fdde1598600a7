package enums

import "fmt"

// FulfillmentStatus tracks delivery progress for an order.
type FulfillmentStatus string

const (
	FulfillmentStatusPending   FulfillmentStatus = "pending"
	FulfillmentStatusInTransit FulfillmentStatus = "in_transit"
	FulfillmentStatusDelivered FulfillmentStatus = "delivered"
	FulfillmentStatusPickedUp  FulfillmentStatus = "picked_up"
	FulfillmentStatusCanceled  FulfillmentStatus = "canceled"
)

var validFulfillmentStatuses = []FulfillmentStatus{
	FulfillmentStatusPending,
	FulfillmentStatusInTransit,
	FulfillmentStatusDelivered,
	FulfillmentStatusPickedUp,
	FulfillmentStatusCanceled,
}

// PayoutEligibleFulfillmentStatuses are the terminal states that make an
// order count toward a reseller payout.
var PayoutEligibleFulfillmentStatuses = []FulfillmentStatus{
	FulfillmentStatusDelivered,
	FulfillmentStatusPickedUp,
}

// String implements fmt.Stringer.
func (f FulfillmentStatus) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FulfillmentStatus.
func (f FulfillmentStatus) IsValid() bool {
	for _, candidate := range validFulfillmentStatuses {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFulfillmentStatus converts raw input into a FulfillmentStatus.
func ParseFulfillmentStatus(value string) (FulfillmentStatus, error) {
	for _, candidate := range validFulfillmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid fulfillment status %q", value)
}
