package models

import (
	"time"

	"github.com/google/uuid"
	dbtypes "github.com/procurehub/portal/pkg/db/types"
	"github.com/procurehub/portal/pkg/enums"
	"gorm.io/gorm"
)

// Quotation is a vendor's offer, either a bid on an order or a standalone submission.
type Quotation struct {
	ID             uuid.UUID             `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID             `gorm:"column:user_id;type:uuid;not null;index;uniqueIndex:idx_quotations_order_user,priority:2"`
	User           *User                 `gorm:"foreignKey:UserID;references:ID"`
	OrderID        *uuid.UUID            `gorm:"column:order_id;type:uuid;uniqueIndex:idx_quotations_order_user,priority:1"`
	Order          *Order                `gorm:"foreignKey:OrderID;references:ID"`
	ProductService string                `gorm:"column:product_service;not null"`
	Description    string                `gorm:"column:description;not null"`
	Categories     dbtypes.StringArray   `gorm:"column:categories;not null"`
	Status         enums.QuotationStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	ApprovalReason *string               `gorm:"column:approval_reason"`
	SubmittedAt    time.Time             `gorm:"column:submitted_at;not null"`
}

func (q *Quotation) BeforeCreate(*gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if q.SubmittedAt.IsZero() {
		q.SubmittedAt = time.Now().UTC()
	}
	return nil
}
