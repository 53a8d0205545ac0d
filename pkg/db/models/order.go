package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/procurehub/portal/pkg/enums"
	"gorm.io/gorm"
)

// Order is a procurement request raised by an admin.
type Order struct {
	ID               uuid.UUID         `gorm:"type:uuid;primaryKey"`
	ProductName      string            `gorm:"column:product_name;not null"`
	Description      string            `gorm:"column:description;not null"`
	Quantity         int               `gorm:"column:quantity;not null"`
	Specifications   *string           `gorm:"column:specifications"`
	Status           enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending';index"`
	VisibleToVendors bool              `gorm:"column:visible_to_vendors;not null;default:false"`
	CreatedByID      uuid.UUID         `gorm:"column:created_by_id;type:uuid;not null;index"`
	CreatedBy        *User             `gorm:"foreignKey:CreatedByID;references:ID"`
	ApprovedVendorID *uuid.UUID        `gorm:"column:approved_vendor_id;type:uuid"`
	ApprovalReason   *string           `gorm:"column:approval_reason"`
	DecisionReason   *string           `gorm:"column:decision_reason"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
