package quotations

import (
	"time"

	"github.com/google/uuid"
	"github.com/procurehub/portal/internal/users"
	"github.com/procurehub/portal/pkg/db/models"
	"github.com/procurehub/portal/pkg/enums"
)

// SubmitInput is a new quotation. A nil OrderID makes it a standalone submission.
type SubmitInput struct {
	OrderID        *uuid.UUID `json:"order_id,omitempty"`
	ProductService string     `json:"product_service" validate:"required"`
	Description    string     `json:"description" validate:"required"`
	Categories     []string   `json:"categories" validate:"required,min=1,dive,category"`
}

// OrderRef is the order summary attached to admin listings.
type OrderRef struct {
	ID          uuid.UUID `json:"id"`
	ProductName string    `json:"product_name"`
}

// QuotationDTO is the transport shape of a quotation.
type QuotationDTO struct {
	ID             uuid.UUID             `json:"id"`
	UserID         uuid.UUID             `json:"user_id"`
	Vendor         *users.Identity       `json:"vendor,omitempty"`
	OrderID        *uuid.UUID            `json:"order_id,omitempty"`
	Order          *OrderRef             `json:"order,omitempty"`
	ProductService string                `json:"product_service"`
	Description    string                `json:"description"`
	Categories     []string              `json:"categories"`
	Status         enums.QuotationStatus `json:"status"`
	ApprovalReason *string               `json:"approval_reason,omitempty"`
	SubmittedAt    time.Time             `json:"submitted_at"`
}

// FromModel maps a stored quotation, including the vendor and order when preloaded.
func FromModel(q *models.Quotation) *QuotationDTO {
	if q == nil {
		return nil
	}
	dto := &QuotationDTO{
		ID:             q.ID,
		UserID:         q.UserID,
		Vendor:         users.IdentityFromModel(q.User),
		OrderID:        q.OrderID,
		ProductService: q.ProductService,
		Description:    q.Description,
		Categories:     append([]string{}, q.Categories...),
		Status:         q.Status,
		ApprovalReason: q.ApprovalReason,
		SubmittedAt:    q.SubmittedAt,
	}
	if q.Order != nil {
		dto.Order = &OrderRef{ID: q.Order.ID, ProductName: q.Order.ProductName}
	}
	return dto
}

func fromModels(rows []models.Quotation) []QuotationDTO {
	out := make([]QuotationDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
