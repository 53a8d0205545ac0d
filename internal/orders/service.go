package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/procurehub/portal/internal/access"
	"github.com/procurehub/portal/pkg/db/models"
	"github.com/procurehub/portal/pkg/enums"
	pkgerrors "github.com/procurehub/portal/pkg/errors"
	"github.com/procurehub/portal/pkg/logger"
	"github.com/procurehub/portal/pkg/metrics"
	"github.com/procurehub/portal/pkg/pagination"
	"gorm.io/gorm"
)

// Service exposes the order lifecycle to controllers.
type Service interface {
	Create(ctx context.Context, actor access.Actor, input CreateInput) (*OrderDTO, error)
	Decide(ctx context.Context, actor access.Actor, orderID uuid.UUID, input DecideInput) (*OrderDTO, error)
	Post(ctx context.Context, actor access.Actor, orderID uuid.UUID) (*OrderDTO, error)
	ApproveVendor(ctx context.Context, actor access.Actor, orderID uuid.UUID, input ApproveVendorInput) (*OrderDTO, error)
	List(ctx context.Context, actor access.Actor, params ListParams) (*pagination.Page[OrderDTO], error)
	Get(ctx context.Context, actor access.Actor, orderID uuid.UUID) (*OrderDTO, error)
}

// ServiceParams bundles the order service dependencies. Metrics and Logger are optional.
type ServiceParams struct {
	Repo    Repository
	Tx      txRunner
	Bids    BidApprover
	Users   userLookup
	Metrics *metrics.WorkflowMetrics
	Logger  *logger.Logger
}

type service struct {
	repo    Repository
	tx      txRunner
	bids    BidApprover
	users   userLookup
	metrics *metrics.WorkflowMetrics
	logg    *logger.Logger
}

// NewService builds the order lifecycle service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Bids == nil {
		return nil, fmt.Errorf("bid approver required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user lookup required")
	}
	return &service{
		repo:    params.Repo,
		tx:      params.Tx,
		bids:    params.Bids,
		users:   params.Users,
		metrics: params.Metrics,
		logg:    params.Logger,
	}, nil
}

func (s *service) Create(ctx context.Context, actor access.Actor, input CreateInput) (*OrderDTO, error) {
	if err := access.Require(actor, access.ActionOrderCreate); err != nil {
		return nil, err
	}

	creatorID := actor.UserID
	if input.CreatedByID != nil && *input.CreatedByID != uuid.Nil {
		if *input.CreatedByID != actor.UserID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "orders can only be created on your own behalf")
		}
		creatorID = *input.CreatedByID
	}

	productName := strings.TrimSpace(input.ProductName)
	description := strings.TrimSpace(input.Description)
	var missing []string
	if productName == "" {
		missing = append(missing, "product_name")
	}
	if description == "" {
		missing = append(missing, "description")
	}
	if input.Quantity <= 0 {
		missing = append(missing, "quantity")
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name, description, and a positive quantity are required").
			WithDetails(map[string]any{"invalid": missing})
	}

	creator, err := s.users.FindByID(ctx, creatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "creator not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load creator")
	}
	if creator.Role != enums.RoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orders must be created by an admin")
	}

	order, err := s.repo.Create(ctx, &models.Order{
		ProductName:    productName,
		Description:    description,
		Quantity:       input.Quantity,
		Specifications: trimmedOrNil(input.Specifications),
		Status:         enums.OrderStatusPending,
		CreatedByID:    creatorID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
	}
	order.CreatedBy = creator

	s.observe(ctx, order.ID, "create", "", enums.OrderStatusPending)
	return FromModel(order), nil
}

func (s *service) Decide(ctx context.Context, actor access.Actor, orderID uuid.UUID, input DecideInput) (*OrderDTO, error) {
	if err := access.Require(actor, access.ActionOrderDecide); err != nil {
		return nil, err
	}
	decision, err := enums.ParseOrderDecision(input.Action)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "action must be approve or reject")
	}
	reason, err := requireReason(input.Reason)
	if err != nil {
		return nil, err
	}

	action := ActionReject
	if decision == enums.OrderDecisionApprove {
		action = ActionApprove
	}
	return s.transition(ctx, orderID, action, nil, func(tx *gorm.DB, order *models.Order, next State) (map[string]any, error) {
		return map[string]any{
			"status":          next.Status,
			"decision_reason": reason,
		}, nil
	})
}

func (s *service) Post(ctx context.Context, actor access.Actor, orderID uuid.UUID) (*OrderDTO, error) {
	if err := access.Require(actor, access.ActionOrderPost); err != nil {
		return nil, err
	}
	return s.transition(ctx, orderID, ActionPost, nil, func(tx *gorm.DB, order *models.Order, next State) (map[string]any, error) {
		return map[string]any{"visible_to_vendors": next.Visible}, nil
	})
}

func (s *service) ApproveVendor(ctx context.Context, actor access.Actor, orderID uuid.UUID, input ApproveVendorInput) (*OrderDTO, error) {
	if err := access.Require(actor, access.ActionOrderApproveVendor); err != nil {
		return nil, err
	}
	if input.VendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	reason, err := requireReason(input.Reason)
	if err != nil {
		return nil, err
	}

	owner := func(order *models.Order) error {
		return access.RequireOwner(actor, order.CreatedByID, "order")
	}
	return s.transition(ctx, orderID, ActionApproveVendor, owner, func(tx *gorm.DB, order *models.Order, next State) (map[string]any, error) {
		if _, err := s.bids.FindBid(ctx, tx, order.ID, input.VendorID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor has no quotation on this order")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load vendor quotation")
		}
		if err := s.bids.ApproveBid(ctx, tx, order.ID, input.VendorID, reason); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "approve vendor quotation")
		}
		return map[string]any{
			"status":             next.Status,
			"approved_vendor_id": input.VendorID,
			"approval_reason":    reason,
		}, nil
	})
}

func (s *service) List(ctx context.Context, actor access.Actor, params ListParams) (*pagination.Page[OrderDTO], error) {
	if err := access.Require(actor, access.ActionOrderList); err != nil {
		return nil, err
	}

	filter, err := partition(actor, params.History)
	if err != nil {
		return nil, err
	}
	paged := params.Page.Limit > 0 || params.Page.Cursor != ""
	if paged {
		cursor, err := pagination.ParseCursor(params.Page.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		filter.Cursor = cursor
		filter.Limit = pagination.LimitWithBuffer(params.Page.Limit)
	}

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}

	items := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	if !paged {
		return &pagination.Page[OrderDTO]{Items: items}, nil
	}
	page := pagination.Build(items, params.Page.Limit, func(o OrderDTO) pagination.Cursor {
		return pagination.Cursor{At: o.CreatedAt, ID: o.ID}
	})
	return &page, nil
}

func (s *service) Get(ctx context.Context, actor access.Actor, orderID uuid.UUID) (*OrderDTO, error) {
	if err := access.Require(actor, access.ActionOrderView); err != nil {
		return nil, err
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err, "load order")
	}
	if err := CanView(actor, order); err != nil {
		return nil, err
	}
	return FromModel(order), nil
}

// CanView applies the listing partition to a single order.
func CanView(actor access.Actor, order *models.Order) error {
	switch actor.Role {
	case enums.RoleSuperadmin:
		return nil
	case enums.RoleAdmin:
		return access.RequireOwner(actor, order.CreatedByID, "order")
	case enums.RoleVendor:
		if order.VisibleToVendors {
			return nil
		}
		return pkgerrors.New(pkgerrors.CodeForbidden, "order is not open to vendors")
	default:
		return pkgerrors.New(pkgerrors.CodeForbidden, "unknown role")
	}
}

type mutation func(tx *gorm.DB, order *models.Order, next State) (map[string]any, error)

// transition runs one read-modify-write of the lifecycle in a transaction. guard
// runs against the locked row before the transition table is consulted.
func (s *service) transition(ctx context.Context, orderID uuid.UUID, action Action, guard func(*models.Order) error, mutate mutation) (*OrderDTO, error) {
	var (
		from enums.OrderStatus
		to   State
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindForUpdate(ctx, orderID)
		if err != nil {
			return notFoundOr(err, "load order")
		}
		from = order.Status
		if guard != nil {
			if err := guard(order); err != nil {
				return err
			}
		}

		next, err := Apply(StateOf(order), action)
		if err != nil {
			return err
		}
		updates, err := mutate(tx, order, next)
		if err != nil {
			return err
		}
		changed, err := repo.UpdateFrom(ctx, order.ID, order.Status, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order")
		}
		if !changed {
			return invalidTransition(StateOf(order), action)
		}
		to = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.observe(ctx, orderID, string(action), from, to.Status)

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err, "reload order")
	}
	return FromModel(order), nil
}

func (s *service) observe(ctx context.Context, orderID uuid.UUID, action string, from, to enums.OrderStatus) {
	s.metrics.IncTransition(action, string(to))
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithOrderID(ctx, orderID.String())
	ctx = s.logg.WithFields(ctx, map[string]any{
		"action": action,
		"from":   string(from),
		"to":     string(to),
	})
	s.logg.Info(ctx, "order.transition")
}

func partition(actor access.Actor, history bool) (ListFilter, error) {
	completed := enums.OrderStatusCompleted
	approved := enums.OrderStatusApproved

	filter := ListFilter{}
	switch actor.Role {
	case enums.RoleAdmin:
		id := actor.UserID
		filter.CreatedByID = &id
		fallthrough
	case enums.RoleSuperadmin:
		if history {
			filter.Status = &completed
		} else {
			filter.ExcludeStatus = &completed
		}
	case enums.RoleVendor:
		filter.VisibleOnly = true
		if history {
			filter.Status = &completed
		} else {
			filter.Status = &approved
		}
	default:
		return ListFilter{}, pkgerrors.New(pkgerrors.CodeForbidden, "unknown role")
	}
	return filter, nil
}

func requireReason(reason string) (string, error) {
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "reason is required")
	}
	return trimmed, nil
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}
