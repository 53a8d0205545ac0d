package users

import (
	"context"

	"github.com/google/uuid"
	"github.com/procurehub/portal/pkg/db/models"
	"github.com/procurehub/portal/pkg/enums"
	"gorm.io/gorm"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByUsername retrieves the user matching the provided username.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// IdentityTaken reports which of the unique identity fields already belong to
// another user. Empty values are not checked.
func (r *Repository) IdentityTaken(ctx context.Context, username, email, vendorID, employeeID string) ([]string, error) {
	checks := []struct {
		field  string
		column string
		value  string
	}{
		{"username", "username", username},
		{"email", "email", email},
		{"vendor_id", "vendor_id", vendorID},
		{"employee_id", "employee_id", employeeID},
	}

	var taken []string
	for _, c := range checks {
		if c.value == "" {
			continue
		}
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.User{}).Where(c.column+" = ?", c.value).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			taken = append(taken, c.field)
		}
	}
	return taken, nil
}

// UpdateProfile writes the provided columns and returns the refreshed row.
func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, cols map[string]any) (*models.User, error) {
	if len(cols) > 0 {
		res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return r.FindByID(ctx, id)
}

// UpdatePasswordHash replaces the stored password hash.
func (r *Repository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password_hash", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByRole returns users holding role, newest first.
func (r *Repository) ListByRole(ctx context.Context, role enums.Role) ([]models.User, error) {
	var out []models.User
	err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}
