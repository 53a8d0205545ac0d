package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/procurehub/portal/api/responses"
	"github.com/procurehub/portal/pkg/logger"
)

const (
	requestIDHeader = "X-Request-Id"
	maxRequestIDLen = 128
)

// RequestID propagates a caller-supplied id or mints one. The id is echoed in
// the response header, the log context, and error envelopes.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := sanitizeRequestID(r.Header.Get(requestIDHeader))
			if reqID == "" {
				reqID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, reqID)

			ctx := responses.WithRequestID(r.Context(), reqID)
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sanitizeRequestID drops inbound ids that are oversized or carry characters
// outside [A-Za-z0-9._-].
func sanitizeRequestID(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxRequestIDLen {
		return ""
	}
	for _, c := range raw {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.':
		default:
			return ""
		}
	}
	return raw
}
