// Package access holds the portal's authorization policy. Every check is a pure
// function of the caller's role (and, for ownership rules, the caller's id), so
// the same answers apply to the HTTP layer and to the domain services.
package access

import (
	"github.com/google/uuid"
	"github.com/procurehub/portal/pkg/enums"
	pkgerrors "github.com/procurehub/portal/pkg/errors"
)

// Actor is the authenticated caller passed explicitly to every operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.Role
}

// IsAnonymous reports whether the actor carries no identity.
func (a Actor) IsAnonymous() bool {
	return a.UserID == uuid.Nil || a.Role == ""
}

// Is reports whether the actor holds role.
func (a Actor) Is(role enums.Role) bool {
	return a.Role == role
}

// Action names a guarded operation.
type Action string

const (
	ActionOrderCreate          Action = "order:create"
	ActionOrderList            Action = "order:list"
	ActionOrderView            Action = "order:view"
	ActionOrderDecide          Action = "order:decide"
	ActionOrderPost            Action = "order:post"
	ActionOrderApproveVendor   Action = "order:approve_vendor"
	ActionQuotationBid         Action = "quotation:bid"
	ActionQuotationSubmit      Action = "quotation:submit"
	ActionQuotationList        Action = "quotation:list"
	ActionQuotationDelete      Action = "quotation:delete"
	ActionQuotationListByAdmin Action = "quotation:list_for_admin"
	ActionVendorList           Action = "vendor:list"
	ActionProfileUpdate        Action = "profile:update"
	ActionPasswordChange       Action = "password:change"
)

// Decision is the outcome of Authorize.
type Decision bool

const (
	Allow Decision = true
	Deny  Decision = false
)

var everyRole = []enums.Role{enums.RoleVendor, enums.RoleAdmin, enums.RoleSuperadmin}

var policy = map[Action][]enums.Role{
	ActionOrderCreate:          {enums.RoleAdmin},
	ActionOrderList:            everyRole,
	ActionOrderView:            everyRole,
	ActionOrderDecide:          {enums.RoleSuperadmin},
	ActionOrderPost:            {enums.RoleSuperadmin},
	ActionOrderApproveVendor:   {enums.RoleAdmin},
	ActionQuotationBid:         {enums.RoleVendor},
	ActionQuotationSubmit:      everyRole,
	ActionQuotationList:        everyRole,
	ActionQuotationDelete:      {enums.RoleVendor},
	ActionQuotationListByAdmin: {enums.RoleAdmin},
	ActionVendorList:           {enums.RoleSuperadmin},
	ActionProfileUpdate:        everyRole,
	ActionPasswordChange:       everyRole,
}

// Authorize decides whether role may perform action. Unknown roles and
// unknown actions are denied.
func Authorize(role enums.Role, action Action) Decision {
	if !role.IsValid() {
		return Deny
	}
	for _, allowed := range policy[action] {
		if allowed == role {
			return Allow
		}
	}
	return Deny
}

// RolesFor lists the roles allowed to perform action.
func RolesFor(action Action) []enums.Role {
	out := make([]enums.Role, len(policy[action]))
	copy(out, policy[action])
	return out
}

// Require returns an authentication error for anonymous actors and an
// authorization error when the role may not perform action.
func Require(actor Actor, action Action) error {
	if actor.IsAnonymous() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if Authorize(actor.Role, action) == Deny {
		return pkgerrors.Newf(pkgerrors.CodeForbidden, "role %s may not perform %s", actor.Role, action)
	}
	return nil
}

// RequireOwner denies access unless the actor is the owner of the resource.
func RequireOwner(actor Actor, ownerID uuid.UUID, resource string) error {
	if actor.IsAnonymous() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if actor.UserID != ownerID {
		return pkgerrors.Newf(pkgerrors.CodeForbidden, "%s belongs to another user", resource)
	}
	return nil
}

// RequireSelfOrSuperadmin allows the user themself or any superadmin.
func RequireSelfOrSuperadmin(actor Actor, userID uuid.UUID) error {
	if actor.IsAnonymous() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if actor.UserID == userID || actor.Is(enums.RoleSuperadmin) {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "access limited to the account owner")
}
