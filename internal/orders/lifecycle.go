package orders

import (
	"github.com/procurehub/portal/pkg/enums"
	pkgerrors "github.com/procurehub/portal/pkg/errors"
)

// Action names an edge of the order lifecycle.
type Action string

const (
	ActionApprove       Action = "approve"
	ActionReject        Action = "reject"
	ActionPost          Action = "post"
	ActionApproveVendor Action = "approve_vendor"
)

// State is the slice of an order the lifecycle rules look at.
type State struct {
	Status         enums.OrderStatus
	Visible        bool
	VendorSelected bool
}

type edge struct {
	from    enums.OrderStatus
	visible bool
	to      State
}

// edges is the complete transition table; anything not listed is rejected.
var edges = map[Action]edge{
	ActionApprove: {from: enums.OrderStatusPending, to: State{Status: enums.OrderStatusApproved}},
	ActionReject:  {from: enums.OrderStatusPending, to: State{Status: enums.OrderStatusRejected}},
	ActionPost: {
		from: enums.OrderStatusApproved,
		to:   State{Status: enums.OrderStatusApproved, Visible: true},
	},
	ActionApproveVendor: {
		from:    enums.OrderStatusApproved,
		visible: true,
		to:      State{Status: enums.OrderStatusCompleted, Visible: true, VendorSelected: true},
	},
}

// Apply returns the state reached by taking action from current, or an
// INVALID_TRANSITION error when the edge does not exist.
func Apply(current State, action Action) (State, error) {
	e, ok := edges[action]
	if !ok {
		return current, pkgerrors.New(pkgerrors.CodeValidation, "unknown order action")
	}

	allowed := current.Status == e.from
	switch action {
	case ActionApprove, ActionReject, ActionPost:
		allowed = allowed && !current.Visible
	case ActionApproveVendor:
		allowed = allowed && current.Visible == e.visible && !current.VendorSelected
	}
	if !allowed {
		return current, invalidTransition(current, action)
	}
	return e.to, nil
}

// OpenForBids reports whether vendors may currently bid on an order in state s.
func OpenForBids(s State) bool {
	return s.Status == enums.OrderStatusApproved && s.Visible && !s.VendorSelected
}

func invalidTransition(current State, action Action) error {
	return pkgerrors.New(pkgerrors.CodeInvalidTransition, "order cannot "+describe(action)+" from its current state").
		WithDetails(map[string]any{
			"status":             current.Status,
			"visible_to_vendors": current.Visible,
			"vendor_selected":    current.VendorSelected,
			"action":             action,
		})
}

func describe(action Action) string {
	switch action {
	case ActionApprove:
		return "be approved"
	case ActionReject:
		return "be rejected"
	case ActionPost:
		return "be posted"
	default:
		return "select a vendor"
	}
}
