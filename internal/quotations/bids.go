package quotations

import (
	"context"

	"github.com/google/uuid"
	"github.com/procurehub/portal/pkg/db/models"
	"gorm.io/gorm"
)

// Bids lets the order lifecycle read and accept bids within its own transaction.
type Bids struct {
	repo Repository
}

// NewBids wraps repo for use by the order service.
func NewBids(repo Repository) *Bids {
	return &Bids{repo: repo}
}

// FindBid returns the vendor's quotation on the order or gorm.ErrRecordNotFound.
func (b *Bids) FindBid(ctx context.Context, tx *gorm.DB, orderID, vendorID uuid.UUID) (*models.Quotation, error) {
	return b.repo.WithTx(tx).FindBid(ctx, orderID, vendorID)
}

// ApproveBid marks the vendor's quotations on the order approved with reason.
func (b *Bids) ApproveBid(ctx context.Context, tx *gorm.DB, orderID, vendorID uuid.UUID, reason string) error {
	affected, err := b.repo.WithTx(tx).ApproveBid(ctx, orderID, vendorID, reason)
	if err != nil {
		return err
	}
	if affected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
