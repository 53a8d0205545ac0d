package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/procurehub/portal/api/responses"
	pkgerrors "github.com/procurehub/portal/pkg/errors"
	"github.com/procurehub/portal/pkg/logger"
)

// Recoverer turns handler panics into an INTERNAL_ERROR envelope.
// http.ErrAbortHandler is re-raised so net/http can abort the connection.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				err := fmt.Errorf("panic: %v", rec)
				ctx := r.Context()
				if logg != nil {
					ctx = logg.WithFields(ctx, map[string]any{
						"panic":       fmt.Sprint(rec),
						"panic_stack": string(debug.Stack()),
						"method":      r.Method,
						"path":        r.URL.Path,
					})
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "panic recovered"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
