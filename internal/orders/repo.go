package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/procurehub/portal/pkg/db/models"
	"github.com/procurehub/portal/pkg/enums"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("CreatedBy").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindForUpdate re-reads the row inside a transaction, taking a row lock where
// the dialect supports one.
func (r *repository) FindForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	q := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var order models.Order
	if err := q.Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.Order, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{}).Preload("CreatedBy")
	if filter.CreatedByID != nil {
		q = q.Where("created_by_id = ?", *filter.CreatedByID)
	}
	if filter.VisibleOnly {
		q = q.Where("visible_to_vendors = ?", true)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.ExcludeStatus != nil {
		q = q.Where("status <> ?", *filter.ExcludeStatus)
	}
	if filter.Cursor != nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			filter.Cursor.At, filter.Cursor.At, filter.Cursor.ID)
	}
	q = q.Order("created_at DESC").Order("id DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var rows []models.Order
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateFrom applies updates only while the order is still in status from and
// reports whether a row changed.
func (r *repository) UpdateFrom(ctx context.Context, id uuid.UUID, from enums.OrderStatus, updates map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
