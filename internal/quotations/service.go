package quotations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/procurehub/portal/internal/access"
	"github.com/procurehub/portal/internal/orders"
	"github.com/procurehub/portal/pkg/db"
	"github.com/procurehub/portal/pkg/db/models"
	"github.com/procurehub/portal/pkg/enums"
	pkgerrors "github.com/procurehub/portal/pkg/errors"
	"github.com/procurehub/portal/pkg/metrics"
	"gorm.io/gorm"
)

const duplicateBidMessage = "quotation already submitted for this order"

// Service exposes quotation submission and the role-partitioned listings.
type Service interface {
	Submit(ctx context.Context, actor access.Actor, input SubmitInput) (*QuotationDTO, error)
	ListForOrder(ctx context.Context, actor access.Actor, orderID uuid.UUID) ([]QuotationDTO, error)
	ListForUser(ctx context.Context, actor access.Actor, userID uuid.UUID) ([]QuotationDTO, error)
	ListForAdmin(ctx context.Context, actor access.Actor) ([]QuotationDTO, error)
	Delete(ctx context.Context, actor access.Actor, quotationID uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams bundles the quotation service dependencies. Metrics is optional.
type ServiceParams struct {
	Repo    Repository
	Orders  orders.Repository
	Tx      txRunner
	Metrics *metrics.WorkflowMetrics
}

type service struct {
	repo    Repository
	orders  orders.Repository
	tx      txRunner
	metrics *metrics.WorkflowMetrics
}

// NewService builds the quotation service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("quotations repository required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: params.Repo, orders: params.Orders, tx: params.Tx, metrics: params.Metrics}, nil
}

func (s *service) Submit(ctx context.Context, actor access.Actor, input SubmitInput) (*QuotationDTO, error) {
	bid := input.OrderID != nil && *input.OrderID != uuid.Nil
	action := access.ActionQuotationSubmit
	if bid {
		action = access.ActionQuotationBid
	}
	if err := access.Require(actor, action); err != nil {
		return nil, err
	}

	productService := strings.TrimSpace(input.ProductService)
	description := strings.TrimSpace(input.Description)
	var missing []string
	if productService == "" {
		missing = append(missing, "product_service")
	}
	if description == "" {
		missing = append(missing, "description")
	}
	if len(input.Categories) == 0 {
		missing = append(missing, "categories")
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing required fields").
			WithDetails(map[string]any{"missing": missing})
	}
	categories, err := NormalizeCategories(input.Categories)
	if err != nil {
		return nil, err
	}

	quotation := &models.Quotation{
		UserID:         actor.UserID,
		ProductService: productService,
		Description:    description,
		Categories:     categories,
		Status:         enums.QuotationStatusPending,
	}
	if !bid {
		created, err := s.repo.Create(ctx, quotation)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create quotation")
		}
		s.metrics.IncQuotation("standalone")
		return FromModel(created), nil
	}

	orderID := *input.OrderID
	quotation.OrderID = &orderID
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.orders.WithTx(tx).FindForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
		}
		if !orders.OpenForBids(orders.StateOf(order)) {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "order is not open for quotations").
				WithDetails(map[string]any{"status": order.Status, "visible_to_vendors": order.VisibleToVendors})
		}

		repo := s.repo.WithTx(tx)
		if _, err := repo.FindBid(ctx, orderID, actor.UserID); err == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, duplicateBidMessage)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check existing quotation")
		}

		if _, err := repo.Create(ctx, quotation); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeValidation, err, duplicateBidMessage)
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create quotation")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncQuotation("bid")
	return FromModel(quotation), nil
}

func (s *service) ListForOrder(ctx context.Context, actor access.Actor, orderID uuid.UUID) ([]QuotationDTO, error) {
	if err := access.Require(actor, access.ActionQuotationList); err != nil {
		return nil, err
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}

	var onlyUser *uuid.UUID
	switch actor.Role {
	case enums.RoleSuperadmin:
	case enums.RoleAdmin:
		if err := access.RequireOwner(actor, order.CreatedByID, "order"); err != nil {
			return nil, err
		}
	case enums.RoleVendor:
		id := actor.UserID
		onlyUser = &id
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "unknown role")
	}

	rows, err := s.repo.ListByOrder(ctx, order.ID, onlyUser)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list quotations")
	}
	return fromModels(rows), nil
}

func (s *service) ListForUser(ctx context.Context, actor access.Actor, userID uuid.UUID) ([]QuotationDTO, error) {
	if err := access.Require(actor, access.ActionQuotationList); err != nil {
		return nil, err
	}
	if err := access.RequireSelfOrSuperadmin(actor, userID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list quotations")
	}
	return fromModels(rows), nil
}

func (s *service) ListForAdmin(ctx context.Context, actor access.Actor) ([]QuotationDTO, error) {
	if err := access.Require(actor, access.ActionQuotationListByAdmin); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListForOrderCreator(ctx, actor.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list quotations")
	}
	return fromModels(rows), nil
}

func (s *service) Delete(ctx context.Context, actor access.Actor, quotationID uuid.UUID) error {
	if err := access.Require(actor, access.ActionQuotationDelete); err != nil {
		return err
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		q, err := repo.FindByID(ctx, quotationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "quotation not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load quotation")
		}
		if err := access.RequireOwner(actor, q.UserID, "quotation"); err != nil {
			return err
		}
		if q.Status != enums.QuotationStatusPending {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "only pending quotations can be deleted").
				WithDetails(map[string]any{"status": q.Status})
		}
		deleted, err := repo.DeletePending(ctx, q.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete quotation")
		}
		if deleted == 0 {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "only pending quotations can be deleted")
		}
		return nil
	})
}

// NormalizeCategories trims and de-duplicates categories, rejecting unknown values.
func NormalizeCategories(raw []string) ([]string, error) {
	seen := make(map[enums.QuotationCategory]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	var invalid []string
	for _, value := range raw {
		category, err := enums.ParseQuotationCategory(strings.TrimSpace(value))
		if err != nil {
			invalid = append(invalid, value)
			continue
		}
		if _, dup := seen[category]; dup {
			continue
		}
		seen[category] = struct{}{}
		out = append(out, category.String())
	}
	if len(invalid) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown quotation category").
			WithDetails(map[string]any{"invalid": invalid})
	}
	return out, nil
}
