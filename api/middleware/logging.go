package middleware

import (
	"net/http"
	"time"

	"github.com/procurehub/portal/pkg/logger"
)

// statusRecorder captures the status and size of a response. It is shared by
// Logging and Metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (r *statusRecorder) statusOrOK() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// Logging emits one request.complete entry per request. Server errors are
// logged at warn; their cause is already logged by responses.WriteError.
func Logging(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if logg == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := logg.WithFields(r.Context(), map[string]any{
				"method":    r.Method,
				"path":      r.URL.Path,
				"remote_ip": clientIP(r),
			})
			logg.Debug(ctx, "request.start")

			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(rec, r.WithContext(ctx))

			status := rec.statusOrOK()
			ctx = logg.WithFields(ctx, map[string]any{
				"route":       routePattern(r),
				"status":      status,
				"bytes":       rec.bytes,
				"duration_ms": time.Since(start).Milliseconds(),
			})
			if status >= http.StatusInternalServerError {
				logg.Warn(ctx, "request.complete")
				return
			}
			logg.Info(ctx, "request.complete")
		})
	}
}
