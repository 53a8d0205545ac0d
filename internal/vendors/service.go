// Package vendors serves the superadmin vendor directory.
package vendors

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/procurehub/portal/internal/access"
	"github.com/procurehub/portal/internal/quotations"
	"github.com/procurehub/portal/internal/users"
	"github.com/procurehub/portal/pkg/db/models"
	"github.com/procurehub/portal/pkg/enums"
	pkgerrors "github.com/procurehub/portal/pkg/errors"
)

// VendorDTO is one directory entry: the vendor account and everything it has quoted.
type VendorDTO struct {
	User       *users.UserDTO            `json:"user"`
	Quotations []quotations.QuotationDTO `json:"quotations"`
}

type userLister interface {
	ListByRole(ctx context.Context, role enums.Role) ([]models.User, error)
}

type quotationLister interface {
	ListByUsers(ctx context.Context, userIDs []uuid.UUID) ([]models.Quotation, error)
}

// Service lists vendors for superadmins.
type Service interface {
	List(ctx context.Context, actor access.Actor) ([]VendorDTO, error)
}

type service struct {
	users      userLister
	quotations quotationLister
}

// NewService builds the vendor directory.
func NewService(users userLister, quotations quotationLister) (Service, error) {
	if users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if quotations == nil {
		return nil, fmt.Errorf("quotations repository required")
	}
	return &service{users: users, quotations: quotations}, nil
}

func (s *service) List(ctx context.Context, actor access.Actor) ([]VendorDTO, error) {
	if err := access.Require(actor, access.ActionVendorList); err != nil {
		return nil, err
	}

	vendors, err := s.users.ListByRole(ctx, enums.RoleVendor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list vendors")
	}
	ids := make([]uuid.UUID, 0, len(vendors))
	for _, v := range vendors {
		ids = append(ids, v.ID)
	}
	rows, err := s.quotations.ListByUsers(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list vendor quotations")
	}

	byUser := make(map[uuid.UUID][]quotations.QuotationDTO, len(vendors))
	for i := range rows {
		byUser[rows[i].UserID] = append(byUser[rows[i].UserID], *quotations.FromModel(&rows[i]))
	}

	out := make([]VendorDTO, 0, len(vendors))
	for i := range vendors {
		qs := byUser[vendors[i].ID]
		if qs == nil {
			qs = []quotations.QuotationDTO{}
		}
		out = append(out, VendorDTO{User: users.FromModel(&vendors[i]), Quotations: qs})
	}
	return out, nil
}
