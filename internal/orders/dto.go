package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/procurehub/portal/internal/users"
	"github.com/procurehub/portal/pkg/db/models"
	"github.com/procurehub/portal/pkg/enums"
	"github.com/procurehub/portal/pkg/pagination"
)

// CreateInput carries the fields an admin supplies for a new order.
type CreateInput struct {
	ProductName    string     `json:"product_name" validate:"required"`
	Description    string     `json:"description" validate:"required"`
	Quantity       int        `json:"quantity" validate:"required,gt=0"`
	Specifications *string    `json:"specifications,omitempty"`
	CreatedByID    *uuid.UUID `json:"created_by_id,omitempty"`
}

// DecideInput is the superadmin review of a pending order.
type DecideInput struct {
	Action string `json:"action" validate:"required,oneof=approve reject"`
	Reason string `json:"reason" validate:"required"`
}

// ApproveVendorInput selects the winning vendor for a posted order.
type ApproveVendorInput struct {
	VendorID uuid.UUID `json:"vendor_id" validate:"required"`
	Reason   string    `json:"reason" validate:"required"`
}

// ListParams selects the active or history view and an optional page.
type ListParams struct {
	History bool
	Page    pagination.Params
}

// OrderDTO is the transport shape of an order.
type OrderDTO struct {
	ID               uuid.UUID         `json:"id"`
	ProductName      string            `json:"product_name"`
	Description      string            `json:"description"`
	Quantity         int               `json:"quantity"`
	Specifications   *string           `json:"specifications,omitempty"`
	Status           enums.OrderStatus `json:"status"`
	VisibleToVendors bool              `json:"visible_to_vendors"`
	CreatedByID      uuid.UUID         `json:"created_by_id"`
	CreatedBy        *users.Identity   `json:"created_by,omitempty"`
	ApprovedVendorID *uuid.UUID        `json:"approved_vendor_id,omitempty"`
	ApprovalReason   *string           `json:"approval_reason,omitempty"`
	DecisionReason   *string           `json:"decision_reason,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// FromModel maps a stored order to its DTO, including the creator when loaded.
func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	return &OrderDTO{
		ID:               o.ID,
		ProductName:      o.ProductName,
		Description:      o.Description,
		Quantity:         o.Quantity,
		Specifications:   o.Specifications,
		Status:           o.Status,
		VisibleToVendors: o.VisibleToVendors,
		CreatedByID:      o.CreatedByID,
		CreatedBy:        users.IdentityFromModel(o.CreatedBy),
		ApprovedVendorID: o.ApprovedVendorID,
		ApprovalReason:   o.ApprovalReason,
		DecisionReason:   o.DecisionReason,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

// StateOf extracts the lifecycle state from a stored order.
func StateOf(o *models.Order) State {
	return State{
		Status:         o.Status,
		Visible:        o.VisibleToVendors,
		VendorSelected: o.ApprovedVendorID != nil,
	}
}
