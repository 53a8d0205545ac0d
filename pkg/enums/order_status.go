package enums

import "fmt"

// OrderStatus is the lifecycle state of a procurement order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusApproved  OrderStatus = "approved"
	OrderStatusRejected  OrderStatus = "rejected"
	OrderStatusCompleted OrderStatus = "completed"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusApproved,
	OrderStatusRejected,
	OrderStatusCompleted,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions leave this status.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusRejected || s == OrderStatusCompleted
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
