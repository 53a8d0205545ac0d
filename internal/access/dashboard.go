package access

import (
	"fmt"
	"strings"

	"github.com/procurehub/portal/pkg/enums"
)

// Area is a role-scoped section of the portal UI.
type Area string

const (
	AreaAny        Area = "any"
	AreaAdmin      Area = "admin"
	AreaSuperadmin Area = "superadmin"
	AreaVendor     Area = "vendor"
)

// Outcome is the route-level gate result. NotAuthorized is an outcome, not an error.
type Outcome string

const (
	OutcomeAllow         Outcome = "allow"
	OutcomeRedirectLogin Outcome = "redirect_login"
	OutcomeNotAuthorized Outcome = "not_authorized"
)

const (
	LoginPath         = "/login"
	NotAuthorizedPath = "/dashboard/not-authorized"
)

var areaRole = map[Area]enums.Role{
	AreaAdmin:      enums.RoleAdmin,
	AreaSuperadmin: enums.RoleSuperadmin,
	AreaVendor:     enums.RoleVendor,
}

// ParseArea converts a path segment into an Area.
func ParseArea(value string) (Area, error) {
	area := Area(strings.ToLower(strings.TrimSpace(value)))
	if area == AreaAny {
		return area, nil
	}
	if _, ok := areaRole[area]; ok {
		return area, nil
	}
	return "", fmt.Errorf("unknown dashboard area %q", value)
}

// Dashboard gates entry into a dashboard area. Unauthenticated callers are sent
// to the login page; authenticated callers outside the area's role are sent to
// the not-authorized page.
func Dashboard(actor Actor, area Area) Outcome {
	if actor.IsAnonymous() || !actor.Role.IsValid() {
		return OutcomeRedirectLogin
	}
	if area == AreaAny {
		return OutcomeAllow
	}
	role, ok := areaRole[area]
	if !ok || role != actor.Role {
		return OutcomeNotAuthorized
	}
	return OutcomeAllow
}

// RedirectFor returns the path a client should navigate to for the outcome.
func RedirectFor(outcome Outcome) string {
	switch outcome {
	case OutcomeRedirectLogin:
		return LoginPath
	case OutcomeNotAuthorized:
		return NotAuthorizedPath
	default:
		return ""
	}
}

// HomeArea returns the dashboard area a role lands on after login.
func HomeArea(role enums.Role) Area {
	for area, r := range areaRole {
		if r == role {
			return area
		}
	}
	return AreaAny
}
