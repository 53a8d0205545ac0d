package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	pkgredis "github.com/procurehub/portal/pkg/redis"
)

type fakeRateStore struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newFakeRateStore() *fakeRateStore {
	return &fakeRateStore{counts: map[string]int64{}}
}

func (f *fakeRateStore) FixedWindowAllow(_ context.Context, scope string, limit int64, window time.Duration) (pkgredis.WindowResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[scope]++
	count := f.counts[scope]
	result := pkgredis.WindowResult{Allowed: count <= limit, Count: count, Limit: limit}
	if !result.Allowed {
		result.ResetIn = 42 * time.Second
	}
	return result, nil
}

func TestAuthRateLimitAllowsUnderLimit(t *testing.T) {
	store := newFakeRateStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 2, 2)
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		if !strings.Contains(string(body), `"username":"buyer1"`) {
			t.Fatalf("unexpected body: %s", string(body))
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"buyer1","password":"secret"}`))
	req.RemoteAddr = "1.2.3.4:5678"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthRateLimitUsernameLimitTriggers(t *testing.T) {
	store := newFakeRateStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 0, 2)
	handler := AuthRateLimit(policy, store, nil)(okHandler())

	for i := 0; i < 3; i++ {
		// Usernames are matched case-insensitively.
		body := `{"username":"Blocked","password":"secret"}`
		if i%2 == 1 {
			body = `{"username":" blocked ","password":"secret"}`
		}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
		req.RemoteAddr = "1.2.3.4:5678"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if i < 2 && rec.Code != http.StatusOK {
			t.Fatalf("expected success before limit, got %d", rec.Code)
		}
		if i == 2 {
			if rec.Code != http.StatusTooManyRequests {
				t.Fatalf("expected 429 got %d", rec.Code)
			}
			if got := rec.Header().Get("Retry-After"); got != "42" {
				t.Fatalf("expected Retry-After 42 got %q", got)
			}
		}
	}
}

func TestAuthRateLimitIPLimitUsesForwardedFor(t *testing.T) {
	store := newFakeRateStore()
	policy := NewAuthRateLimitPolicy("register", time.Minute, 1, 0)
	handler := AuthRateLimit(policy, store, nil)(okHandler())

	codes := []int{}
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(`{}`))
		req.RemoteAddr = "10.0.0.1:1234"
		req.Header.Set("X-Forwarded-For", "9.9.9.9, 10.0.0.1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes %v", codes)
	}
	if _, ok := store.counts["ip:register:9.9.9.9"]; !ok {
		t.Fatalf("expected forwarded ip scope, got %v", store.counts)
	}
}

func TestAuthRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	store := newFakeRateStore()
	handler := AuthRateLimit(NewAuthRateLimitPolicy("login", 0, 1, 1), store, nil)(okHandler())
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"a"}`)))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", rec.Code)
		}
	}
	if len(store.counts) != 0 {
		t.Fatalf("expected no counters, got %v", store.counts)
	}
}
