package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/procurehub/portal/api/responses"
	pkgerrors "github.com/procurehub/portal/pkg/errors"
	"github.com/procurehub/portal/pkg/logger"
	pkgredis "github.com/procurehub/portal/pkg/redis"
)

const idempotencyHeader = "Idempotency-Key"

type routeMatcher func(string) bool

type idempotencyRule struct {
	method  string
	matcher routeMatcher
}

// Mutating workflow endpoints honour an optional Idempotency-Key header.
var idempotencyRules = []idempotencyRule{
	{method: http.MethodPost, matcher: matchExact("/api/v1/auth/register")},
	{method: http.MethodPost, matcher: matchExact("/api/v1/orders")},
	{method: http.MethodPost, matcher: matchExact("/api/v1/orders/{orderId}/decision")},
	{method: http.MethodPost, matcher: matchExact("/api/v1/orders/{orderId}/post")},
	{method: http.MethodPost, matcher: matchExact("/api/v1/orders/{orderId}/approve-vendor")},
	{method: http.MethodPost, matcher: matchExact("/api/v1/orders/{orderId}/quotations")},
	{method: http.MethodPost, matcher: matchExact("/api/v1/quotations")},
}

type idempotencyRecord struct {
	Status      int               `json:"status"`
	Body        string            `json:"body"`
	Headers     map[string]string `json:"headers,omitempty"`
	RequestHash string            `json:"request_hash"`
	Pending     bool              `json:"pending,omitempty"`
}

// Idempotency replays the stored response when a request repeats its key. The
// key is reserved before the handler runs so concurrent duplicates are
// rejected; server errors release it so the client may retry. Mount it on the
// endpoint itself: rules match the fully resolved route pattern, which a
// group-level middleware above a subrouter never sees.
func Idempotency(store pkgredis.IdempotencyStore, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			idempotencyKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if store == nil || ttl <= 0 || idempotencyKey == "" || !routeMatches(r.Method, routePattern(r)) {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			requestHash := hashBody(body)
			key := store.IdempotencyKey(buildScope(r), idempotencyKey)

			pending, err := json.Marshal(idempotencyRecord{RequestHash: requestHash, Pending: true})
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode idempotency record"))
				return
			}
			reserved, err := store.SetNX(ctx, key, string(pending), ttl)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve idempotency key"))
				return
			}
			if !reserved {
				replay(ctx, store, key, requestHash, logg, w)
				return
			}

			rec := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			status := defaultStatus(rec.status)
			if status >= http.StatusInternalServerError {
				if delErr := store.Del(context.WithoutCancel(ctx), key); delErr != nil {
					logError(ctx, logg, "release idempotency key", delErr)
				}
				return
			}

			record := idempotencyRecord{
				Status:      status,
				Body:        base64.StdEncoding.EncodeToString(rec.body.Bytes()),
				RequestHash: requestHash,
			}
			if ct := rec.Header().Get("Content-Type"); ct != "" {
				record.Headers = map[string]string{"Content-Type": ct}
			}
			payload, marshalErr := json.Marshal(record)
			if marshalErr != nil {
				logError(ctx, logg, "marshal idempotency record", marshalErr)
				return
			}
			if setErr := store.Set(context.WithoutCancel(ctx), key, string(payload), ttl); setErr != nil {
				logError(ctx, logg, "persist idempotency record", setErr)
			}
		})
	}
}

func replay(ctx context.Context, store pkgredis.IdempotencyStore, key, requestHash string, logg *logger.Logger, w http.ResponseWriter) {
	stored, err := store.Get(ctx, key)
	if err != nil && !pkgredis.IsMiss(err) {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
		return
	}
	if stored == "" {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key expired mid-request, retry"))
		return
	}
	record, err := decodeRecord(stored)
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return
	}
	if record.RequestHash != requestHash {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
		return
	}
	if record.Pending {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "request with this idempotency key is still in progress"))
		return
	}
	writeStoredResponse(w, record)
}

func buildScope(r *http.Request) string {
	parts := []string{
		UserIDFromContext(r.Context()),
		r.Method,
		r.URL.Path,
	}
	return strings.Join(parts, "|")
}

func decodeRecord(payload string) (*idempotencyRecord, error) {
	var record idempotencyRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func writeStoredResponse(w http.ResponseWriter, record *idempotencyRecord) {
	if ct, ok := record.Headers["Content-Type"]; ok && ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(record.Status)
	if decoded, err := base64.StdEncoding.DecodeString(record.Body); err == nil {
		_, _ = w.Write(decoded)
	}
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func defaultStatus(value int) int {
	if value == 0 {
		return http.StatusOK
	}
	return value
}

func routeMatches(method, pattern string) bool {
	if pattern == "" {
		return false
	}
	for _, rule := range idempotencyRules {
		if rule.method == method && rule.matcher(pattern) {
			return true
		}
	}
	return false
}

func matchExact(path string) routeMatcher {
	return func(pattern string) bool {
		return pattern == path
	}
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func logError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil || err == nil {
		return
	}
	logg.Error(ctx, msg, err)
}
