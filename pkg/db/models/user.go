package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/procurehub/portal/pkg/enums"
	"gorm.io/gorm"
)

// User is a portal account. Role-specific columns are nullable and populated
// according to Role.
type User struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Username      string     `gorm:"column:username;not null;uniqueIndex"`
	PasswordHash  string     `gorm:"column:password_hash;not null"`
	FullName      string     `gorm:"column:full_name;not null"`
	Email         string     `gorm:"column:email;not null;uniqueIndex"`
	ContactNumber string     `gorm:"column:contact_number;not null"`
	Address       string     `gorm:"column:address;not null"`
	Role          enums.Role `gorm:"column:role;type:text;not null"`
	CompanyName   *string    `gorm:"column:company_name"`
	VendorID      *string    `gorm:"column:vendor_id;uniqueIndex"`
	EmployeeID    *string    `gorm:"column:employee_id;uniqueIndex"`
	Department    *string    `gorm:"column:department"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
