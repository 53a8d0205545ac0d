package access

import (
	"testing"

	"github.com/google/uuid"
	"github.com/procurehub/portal/pkg/enums"
	pkgerrors "github.com/procurehub/portal/pkg/errors"
)

func TestAuthorizeMatrix(t *testing.T) {
	v, a, s := enums.RoleVendor, enums.RoleAdmin, enums.RoleSuperadmin
	cases := []struct {
		action Action
		allow  []enums.Role
	}{
		{ActionOrderCreate, []enums.Role{a}},
		{ActionOrderDecide, []enums.Role{s}},
		{ActionOrderPost, []enums.Role{s}},
		{ActionOrderApproveVendor, []enums.Role{a}},
		{ActionQuotationBid, []enums.Role{v}},
		{ActionQuotationSubmit, []enums.Role{v, a, s}},
		{ActionQuotationList, []enums.Role{v, a, s}},
		{ActionQuotationDelete, []enums.Role{v}},
		{ActionQuotationListByAdmin, []enums.Role{a}},
		{ActionVendorList, []enums.Role{s}},
		{ActionOrderList, []enums.Role{v, a, s}},
		{ActionProfileUpdate, []enums.Role{v, a, s}},
	}

	for _, tc := range cases {
		for _, role := range []enums.Role{v, a, s} {
			want := Deny
			for _, allowed := range tc.allow {
				if allowed == role {
					want = Allow
				}
			}
			if got := Authorize(role, tc.action); got != want {
				t.Fatalf("Authorize(%s, %s) = %v, want %v", role, tc.action, got, want)
			}
		}
	}
}

func TestAuthorizeDeniesUnknowns(t *testing.T) {
	if Authorize("OWNER", ActionOrderList) != Deny {
		t.Fatal("unknown role must be denied")
	}
	if Authorize(enums.RoleSuperadmin, Action("order:delete")) != Deny {
		t.Fatal("unknown action must be denied")
	}
	if Authorize("", ActionQuotationSubmit) != Deny {
		t.Fatal("empty role must be denied")
	}
}

func TestRequire(t *testing.T) {
	err := Require(Actor{}, ActionOrderList)
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("anonymous actor should be unauthenticated, got %v", err)
	}

	vendor := Actor{UserID: uuid.New(), Role: enums.RoleVendor}
	err = Require(vendor, ActionOrderDecide)
	if !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("vendor deciding should be forbidden, got %v", err)
	}
	if err := Require(vendor, ActionQuotationBid); err != nil {
		t.Fatalf("vendor bidding should be allowed, got %v", err)
	}
}

func TestRequireOwnerAndSelf(t *testing.T) {
	owner := uuid.New()
	admin := Actor{UserID: owner, Role: enums.RoleAdmin}
	other := Actor{UserID: uuid.New(), Role: enums.RoleAdmin}
	super := Actor{UserID: uuid.New(), Role: enums.RoleSuperadmin}

	if err := RequireOwner(admin, owner, "order"); err != nil {
		t.Fatalf("owner should pass: %v", err)
	}
	if err := RequireOwner(other, owner, "order"); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("non-owner should be forbidden, got %v", err)
	}
	if err := RequireSelfOrSuperadmin(super, owner); err != nil {
		t.Fatalf("superadmin should pass: %v", err)
	}
	if err := RequireSelfOrSuperadmin(other, owner); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("other admin should be forbidden, got %v", err)
	}
}

func TestRolesForReturnsCopy(t *testing.T) {
	roles := RolesFor(ActionOrderCreate)
	roles[0] = enums.RoleVendor
	if Authorize(enums.RoleVendor, ActionOrderCreate) == Allow {
		t.Fatal("mutating RolesFor result must not change policy")
	}
}
