package quotations

import (
	"context"

	"github.com/google/uuid"
	"github.com/procurehub/portal/pkg/db/models"
	"github.com/procurehub/portal/pkg/enums"
	"gorm.io/gorm"
)

// Repository defines persistence operations for quotations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, q *models.Quotation) (*models.Quotation, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Quotation, error)
	FindBid(ctx context.Context, orderID, userID uuid.UUID) (*models.Quotation, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID, userID *uuid.UUID) ([]models.Quotation, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Quotation, error)
	ListByUsers(ctx context.Context, userIDs []uuid.UUID) ([]models.Quotation, error)
	ListForOrderCreator(ctx context.Context, adminID uuid.UUID) ([]models.Quotation, error)
	ApproveBid(ctx context.Context, orderID, userID uuid.UUID, reason string) (int64, error)
	DeletePending(ctx context.Context, id uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a quotations repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, q *models.Quotation) (*models.Quotation, error) {
	if err := r.db.WithContext(ctx).Create(q).Error; err != nil {
		return nil, err
	}
	return q, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Quotation, error) {
	var q models.Quotation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *repository) FindBid(ctx context.Context, orderID, userID uuid.UUID) (*models.Quotation, error) {
	var q models.Quotation
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND user_id = ?", orderID, userID).
		Order("submitted_at ASC").
		First(&q).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *repository) ListByOrder(ctx context.Context, orderID uuid.UUID, userID *uuid.UUID) ([]models.Quotation, error) {
	q := r.db.WithContext(ctx).Preload("User").Where("order_id = ?", orderID)
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	var rows []models.Quotation
	if err := q.Order("submitted_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Quotation, error) {
	var rows []models.Quotation
	err := r.db.WithContext(ctx).
		Preload("Order").
		Where("user_id = ?", userID).
		Order("submitted_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListByUsers(ctx context.Context, userIDs []uuid.UUID) ([]models.Quotation, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var rows []models.Quotation
	err := r.db.WithContext(ctx).
		Preload("Order").
		Where("user_id IN ?", userIDs).
		Order("submitted_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListForOrderCreator(ctx context.Context, adminID uuid.UUID) ([]models.Quotation, error) {
	var rows []models.Quotation
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Order").
		Where("order_id IN (?)", r.db.Model(&models.Order{}).Select("id").Where("created_by_id = ?", adminID)).
		Order("submitted_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ApproveBid(ctx context.Context, orderID, userID uuid.UUID, reason string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Quotation{}).
		Where("order_id = ? AND user_id = ?", orderID, userID).
		Updates(map[string]any{
			"status":          enums.QuotationStatusApproved,
			"approval_reason": reason,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) DeletePending(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, enums.QuotationStatusPending).
		Delete(&models.Quotation{})
	return res.RowsAffected, res.Error
}
