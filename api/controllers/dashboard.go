package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/procurehub/portal/api/middleware"
	"github.com/procurehub/portal/api/responses"
	"github.com/procurehub/portal/internal/access"
	pkgerrors "github.com/procurehub/portal/pkg/errors"
	"github.com/procurehub/portal/pkg/logger"
)

type dashboardResponse struct {
	Area     access.Area    `json:"area"`
	Outcome  access.Outcome `json:"outcome"`
	Redirect string         `json:"redirect,omitempty"`
	Home     access.Area    `json:"home,omitempty"`
}

// DashboardGate reports whether the caller may enter a dashboard area. A
// denied caller still gets 200; the outcome tells the client where to go.
func DashboardGate(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		area, err := access.ParseArea(chi.URLParam(r, "area"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "unknown dashboard area"))
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		outcome := access.Dashboard(actor, area)
		resp := dashboardResponse{
			Area:     area,
			Outcome:  outcome,
			Redirect: access.RedirectFor(outcome),
		}
		if !actor.IsAnonymous() {
			resp.Home = access.HomeArea(actor.Role)
		}
		responses.WriteSuccess(w, resp)
	}
}
