package orders

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/procurehub/portal/api/middleware"
	"github.com/procurehub/portal/api/responses"
	"github.com/procurehub/portal/api/validators"
	internalorders "github.com/procurehub/portal/internal/orders"
	pkgerrors "github.com/procurehub/portal/pkg/errors"
	"github.com/procurehub/portal/pkg/logger"
	"github.com/procurehub/portal/pkg/pagination"
)

// Create opens a new pending order for the calling admin.
func Create(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var body internalorders.CreateInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), middleware.ActorFromContext(r.Context()), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// List returns the caller's partition of orders. history=true selects completed
// orders; limit or cursor switch the response to a single page.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		history, err := validators.ParseQueryBool(r, "history")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := internalorders.ListParams{
			History: history,
			Page: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		}

		page, err := svc.List(r.Context(), middleware.ActorFromContext(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// Detail returns one order when it falls inside the caller's partition.
func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, ctx, ok := orderIDParam(w, r, logg)
		if !ok {
			return
		}

		order, err := svc.Get(ctx, middleware.ActorFromContext(ctx), orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// Decide approves or rejects a pending order.
func Decide(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, ctx, ok := orderIDParam(w, r, logg)
		if !ok {
			return
		}

		var body internalorders.DecideInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.Decide(ctx, middleware.ActorFromContext(ctx), orderID, body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// Post publishes an approved order to vendors.
func Post(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, ctx, ok := orderIDParam(w, r, logg)
		if !ok {
			return
		}

		order, err := svc.Post(ctx, middleware.ActorFromContext(ctx), orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// ApproveVendor awards a posted order to one of its bidders and completes it.
func ApproveVendor(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, ctx, ok := orderIDParam(w, r, logg)
		if !ok {
			return
		}

		var body internalorders.ApproveVendorInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.ApproveVendor(ctx, middleware.ActorFromContext(ctx), orderID, body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func orderIDParam(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (uuid.UUID, context.Context, bool) {
	orderID, err := validators.ParseUUIDParam(r, "orderId")
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return uuid.Nil, nil, false
	}
	ctx := r.Context()
	if logg != nil {
		ctx = logg.WithOrderID(ctx, orderID.String())
	}
	return orderID, ctx, true
}
