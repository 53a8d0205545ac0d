package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/procurehub/portal/api/responses"
	pkgerrors "github.com/procurehub/portal/pkg/errors"
	"github.com/procurehub/portal/pkg/logger"
	pkgredis "github.com/procurehub/portal/pkg/redis"
)

// RateLimitStore counts hits in a fixed window.
type RateLimitStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (pkgredis.WindowResult, error)
}

// AuthRateLimitPolicy defines the throttling parameters for a traffic surface.
type AuthRateLimitPolicy struct {
	name          string
	window        time.Duration
	ipLimit       int
	usernameLimit int
}

// NewAuthRateLimitPolicy builds a policy with the supplied window and limits.
func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, usernameLimit int) AuthRateLimitPolicy {
	return AuthRateLimitPolicy{
		name:          strings.ToLower(strings.TrimSpace(name)),
		window:        window,
		ipLimit:       ipLimit,
		usernameLimit: usernameLimit,
	}
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.usernameLimit > 0)
}

func (p AuthRateLimitPolicy) normalizedName() string {
	if p.name == "" {
		return "auth"
	}
	return p.name
}

func (p AuthRateLimitPolicy) ipScope(ip string) string {
	return fmt.Sprintf("ip:%s:%s", p.normalizedName(), ip)
}

func (p AuthRateLimitPolicy) usernameScope(hash string) string {
	return fmt.Sprintf("username:%s:%s", p.normalizedName(), hash)
}

// AuthRateLimit enforces per-IP and per-username counters for auth endpoints.
func AuthRateLimit(policy AuthRateLimitPolicy, store RateLimitStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if ip := clientIP(r); policy.ipLimit > 0 && ip != "" {
				result, err := store.FixedWindowAllow(ctx, policy.ipScope(ip), int64(policy.ipLimit), policy.window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if !result.Allowed {
					respondRateLimited(ctx, logg, w, policy, map[string]any{"scope": "ip", "ip": ip}, result)
					return
				}
			}

			if policy.usernameLimit > 0 {
				body, err := io.ReadAll(r.Body)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))

				if username := normalizeUsername(extractUsername(body)); username != "" {
					hash := hashValue(username)
					result, err := store.FixedWindowAllow(ctx, policy.usernameScope(hash), int64(policy.usernameLimit), policy.window)
					if err != nil {
						responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
						return
					}
					if !result.Allowed {
						respondRateLimited(ctx, logg, w, policy, map[string]any{"scope": "username", "username_hash": hash}, result)
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func respondRateLimited(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy AuthRateLimitPolicy, fields map[string]any, result pkgredis.WindowResult) {
	retryAfter := result.ResetIn
	if retryAfter <= 0 {
		retryAfter = policy.window
	}
	if logg != nil {
		fields["policy"] = policy.normalizedName()
		fields["attempts"] = result.Count
		fields["limit"] = result.Limit
		fields["window_seconds"] = int(policy.window.Seconds())
		logg.Warn(logg.WithFields(ctx, fields), "auth.rate_limit.blocked")
	}
	w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
}

func clientIP(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func extractUsername(payload []byte) string {
	var body struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return body.Username
}

func normalizeUsername(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
