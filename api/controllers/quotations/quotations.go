package quotations

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/procurehub/portal/api/middleware"
	"github.com/procurehub/portal/api/responses"
	"github.com/procurehub/portal/api/validators"
	internalquotations "github.com/procurehub/portal/internal/quotations"
	pkgerrors "github.com/procurehub/portal/pkg/errors"
	"github.com/procurehub/portal/pkg/logger"
)

type bidRequest struct {
	ProductService string   `json:"product_service" validate:"required"`
	Description    string   `json:"description" validate:"required"`
	Categories     []string `json:"categories" validate:"required,min=1,dive,category"`
}

// Submit stores a quotation. A body order_id turns it into a bid on that order.
func Submit(svc internalquotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotations service unavailable"))
			return
		}

		var body internalquotations.SubmitInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		q, err := svc.Submit(r.Context(), middleware.ActorFromContext(r.Context()), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, q)
	}
}

// SubmitForOrder places the caller's bid on the order named in the path.
func SubmitForOrder(svc internalquotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotations service unavailable"))
			return
		}

		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body bidRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		q, err := svc.Submit(r.Context(), middleware.ActorFromContext(r.Context()), internalquotations.SubmitInput{
			OrderID:        &orderID,
			ProductService: body.ProductService,
			Description:    body.Description,
			Categories:     body.Categories,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, q)
	}
}

// List filters by orderId when given, otherwise by userId (default: the caller).
func List(svc internalquotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotations service unavailable"))
			return
		}

		orderID, err := validators.ParseQueryUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, err := validators.ParseQueryUUID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		var list []internalquotations.QuotationDTO
		if orderID != nil {
			list, err = svc.ListForOrder(r.Context(), actor, *orderID)
			if err == nil && userID != nil {
				list = onlyUser(list, *userID)
			}
		} else {
			target := actor.UserID
			if userID != nil {
				target = *userID
			}
			list, err = svc.ListForUser(r.Context(), actor, target)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ListForOrder returns the quotations on the order in the path.
func ListForOrder(svc internalquotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotations service unavailable"))
			return
		}

		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListForOrder(r.Context(), middleware.ActorFromContext(r.Context()), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ListForAdmin returns every quotation placed on the calling admin's orders.
func ListForAdmin(svc internalquotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotations service unavailable"))
			return
		}

		list, err := svc.ListForAdmin(r.Context(), middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// Delete withdraws the caller's pending quotation.
func Delete(svc internalquotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotations service unavailable"))
			return
		}

		quotationID, err := validators.ParseUUIDParam(r, "quotationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithQuotationID(ctx, quotationID.String())
		}

		if err := svc.Delete(ctx, middleware.ActorFromContext(ctx), quotationID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func onlyUser(list []internalquotations.QuotationDTO, userID uuid.UUID) []internalquotations.QuotationDTO {
	out := make([]internalquotations.QuotationDTO, 0, len(list))
	for _, q := range list {
		if q.UserID == userID {
			out = append(out, q)
		}
	}
	return out
}
