package enums

import (
	"fmt"
	"strings"
)

// Role is the portal-wide role carried by every user and access token.
type Role string

const (
	RoleVendor     Role = "VENDOR"
	RoleAdmin      Role = "ADMIN"
	RoleSuperadmin Role = "SUPERADMIN"
)

var validRoles = []Role{
	RoleVendor,
	RoleAdmin,
	RoleSuperadmin,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts raw input into a Role. Matching is case-insensitive.
func ParseRole(value string) (Role, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validRoles {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
