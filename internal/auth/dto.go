package auth

import (
	"github.com/procurehub/portal/internal/users"
	"github.com/procurehub/portal/pkg/enums"
)

// RegisterRequest is the public sign-up payload. Role-specific fields are
// checked by the service once the role is known.
type RegisterRequest struct {
	Username      string `json:"username" validate:"required"`
	Password      string `json:"password" validate:"required,min=8"`
	FullName      string `json:"full_name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	ContactNumber string `json:"contact_number" validate:"required"`
	Address       string `json:"address" validate:"required"`
	Role          string `json:"role" validate:"required,role"`
	CompanyName   string `json:"company_name,omitempty"`
	VendorID      string `json:"vendor_id,omitempty"`
	EmployeeID    string `json:"employee_id,omitempty"`
	Department    string `json:"department,omitempty"`
}

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the current (possibly expired) access token and its refresh token.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	Role         enums.Role `json:"role"`
}

// LoginResponse contains the tokens and the authenticated user.
type LoginResponse struct {
	TokenPair
	User *users.UserDTO `json:"user"`
}
