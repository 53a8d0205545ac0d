package enums

import (
	"fmt"
	"strings"
)

// OrderDecision represents the review outcome a superadmin applies to a pending order.
type OrderDecision string

const (
	OrderDecisionApprove OrderDecision = "approve"
	OrderDecisionReject  OrderDecision = "reject"
)

// String implements fmt.Stringer.
func (d OrderDecision) String() string {
	return string(d)
}

// TargetStatus returns the status a pending order moves to under this decision.
func (d OrderDecision) TargetStatus() OrderStatus {
	if d == OrderDecisionApprove {
		return OrderStatusApproved
	}
	return OrderStatusRejected
}

// ParseOrderDecision converts raw input into an OrderDecision.
func ParseOrderDecision(value string) (OrderDecision, error) {
	switch OrderDecision(strings.ToLower(strings.TrimSpace(value))) {
	case OrderDecisionApprove:
		return OrderDecisionApprove, nil
	case OrderDecisionReject:
		return OrderDecisionReject, nil
	default:
		return "", fmt.Errorf("invalid order decision %q", value)
	}
}
