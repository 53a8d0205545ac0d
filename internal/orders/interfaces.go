package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/procurehub/portal/pkg/db/models"
	"github.com/procurehub/portal/pkg/enums"
	"github.com/procurehub/portal/pkg/pagination"
	"gorm.io/gorm"
)

// Repository defines persistence operations for the orders table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filter ListFilter) ([]models.Order, error)
	UpdateFrom(ctx context.Context, id uuid.UUID, from enums.OrderStatus, updates map[string]any) (bool, error)
}

// ListFilter narrows List to one partition of the orders table.
type ListFilter struct {
	CreatedByID   *uuid.UUID
	VisibleOnly   bool
	Status        *enums.OrderStatus
	ExcludeStatus *enums.OrderStatus
	// Limit of zero returns every matching row.
	Limit  int
	Cursor *pagination.Cursor
}

// BidApprover resolves and accepts vendor bids inside an order transaction.
type BidApprover interface {
	FindBid(ctx context.Context, tx *gorm.DB, orderID, vendorID uuid.UUID) (*models.Quotation, error)
	ApproveBid(ctx context.Context, tx *gorm.DB, orderID, vendorID uuid.UUID, reason string) error
}

type userLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
