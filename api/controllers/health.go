package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/procurehub/portal/api/responses"
	pkgerrors "github.com/procurehub/portal/pkg/errors"
	"github.com/procurehub/portal/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger is a dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every named dependency and reports the first failure.
func HealthReady(deps map[string]Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		status := map[string]string{}
		var failed error
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				status[name] = "down"
				if failed == nil {
					failed = pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable").WithDetails(status)
				}
				continue
			}
			status[name] = "up"
		}
		if failed != nil {
			responses.WriteError(r.Context(), logg, w, failed)
			return
		}
		status["status"] = "ready"
		responses.WriteSuccess(w, status)
	}
}
