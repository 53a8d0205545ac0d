package users

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/procurehub/portal/pkg/db/models"
	"github.com/procurehub/portal/pkg/enums"
)

// Profile is the role-specific part of a user. Exactly one variant applies per role.
type Profile interface {
	Role() enums.Role
	apply(u *models.User)
}

// VendorProfile carries the fields every VENDOR must have.
type VendorProfile struct {
	CompanyName string `json:"company_name"`
	VendorID    string `json:"vendor_id"`
}

func (VendorProfile) Role() enums.Role { return enums.RoleVendor }

func (p VendorProfile) apply(u *models.User) {
	u.CompanyName = strPtr(p.CompanyName)
	u.VendorID = strPtr(p.VendorID)
}

// AdminProfile carries the fields every ADMIN must have.
type AdminProfile struct {
	EmployeeID string `json:"employee_id"`
	Department string `json:"department"`
}

func (AdminProfile) Role() enums.Role { return enums.RoleAdmin }

func (p AdminProfile) apply(u *models.User) {
	u.EmployeeID = strPtr(p.EmployeeID)
	u.Department = strPtr(p.Department)
}

// SuperadminProfile has no role-specific fields.
type SuperadminProfile struct{}

func (SuperadminProfile) Role() enums.Role { return enums.RoleSuperadmin }

func (SuperadminProfile) apply(*models.User) {}

// NewProfile builds the profile variant for role, reporting missing fields.
func NewProfile(role enums.Role, companyName, vendorID, employeeID, department string) (Profile, []string) {
	var missing []string
	need := func(field, value string) string {
		value = strings.TrimSpace(value)
		if value == "" {
			missing = append(missing, field)
		}
		return value
	}

	switch role {
	case enums.RoleVendor:
		p := VendorProfile{CompanyName: need("company_name", companyName), VendorID: need("vendor_id", vendorID)}
		return p, missing
	case enums.RoleAdmin:
		p := AdminProfile{EmployeeID: need("employee_id", employeeID), Department: need("department", department)}
		return p, missing
	case enums.RoleSuperadmin:
		return SuperadminProfile{}, nil
	default:
		return nil, []string{"role"}
	}
}

// ProfileFor converts a stored user row into its profile variant.
func ProfileFor(u *models.User) (Profile, error) {
	p, missing := NewProfile(u.Role, deref(u.CompanyName), deref(u.VendorID), deref(u.EmployeeID), deref(u.Department))
	if len(missing) > 0 {
		return nil, fmt.Errorf("user %s with role %q is missing %s", u.ID, u.Role, strings.Join(missing, ", "))
	}
	return p, nil
}

// UserDTO is the transport shape that omits credentials.
type UserDTO struct {
	ID            uuid.UUID  `json:"id"`
	Username      string     `json:"username"`
	FullName      string     `json:"full_name"`
	Email         string     `json:"email"`
	ContactNumber string     `json:"contact_number"`
	Address       string     `json:"address"`
	Role          enums.Role `json:"role"`
	Profile       Profile    `json:"profile"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Identity is the minimal user shape embedded in order and quotation listings.
type Identity struct {
	ID          uuid.UUID `json:"id"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	VendorID    *string   `json:"vendor_id,omitempty"`
	CompanyName *string   `json:"company_name,omitempty"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Username      string
	PasswordHash  string
	FullName      string
	Email         string
	ContactNumber string
	Address       string
	Profile       Profile
}

// ProfileUpdate lists the self-editable fields; nil leaves a field unchanged.
type ProfileUpdate struct {
	FullName      *string
	ContactNumber *string
	Address       *string
}

// Columns returns the non-empty updates keyed by column name.
func (p ProfileUpdate) Columns() map[string]any {
	cols := map[string]any{}
	set := func(col string, v *string) {
		if v == nil {
			return
		}
		if trimmed := strings.TrimSpace(*v); trimmed != "" {
			cols[col] = trimmed
		}
	}
	set("full_name", p.FullName)
	set("contact_number", p.ContactNumber)
	set("address", p.Address)
	return cols
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	dto := &UserDTO{
		ID:            u.ID,
		Username:      u.Username,
		FullName:      u.FullName,
		Email:         u.Email,
		ContactNumber: u.ContactNumber,
		Address:       u.Address,
		Role:          u.Role,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
	if p, err := ProfileFor(u); err == nil {
		dto.Profile = p
	}
	return dto
}

// IdentityFromModel trims a user down to the listing identity.
func IdentityFromModel(u *models.User) *Identity {
	if u == nil {
		return nil
	}
	return &Identity{
		ID:          u.ID,
		FullName:    u.FullName,
		Email:       u.Email,
		VendorID:    u.VendorID,
		CompanyName: u.CompanyName,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	u := &models.User{
		Username:      c.Username,
		PasswordHash:  c.PasswordHash,
		FullName:      c.FullName,
		Email:         c.Email,
		ContactNumber: c.ContactNumber,
		Address:       c.Address,
	}
	if c.Profile != nil {
		u.Role = c.Profile.Role()
		c.Profile.apply(u)
	}
	return u
}

func strPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
