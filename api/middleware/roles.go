package middleware

import (
	"net/http"

	"github.com/procurehub/portal/api/responses"
	"github.com/procurehub/portal/internal/access"
	pkgerrors "github.com/procurehub/portal/pkg/errors"
	"github.com/procurehub/portal/pkg/logger"
)

// RequireAction rejects callers whose role is not granted action. Ownership
// rules stay in the services since they need the loaded resource.
func RequireAction(action access.Action, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := access.Require(ActorFromContext(r.Context()), action); err != nil {
				if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeForbidden {
					err = typed.WithDetails(map[string]any{
						"action":       action,
						"allowedRoles": access.RolesFor(action),
					})
				}
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
