package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/procurehub/portal/pkg/errors"
)

type fakeStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	str, _ := value.(string)
	f.data[key] = str
	return nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	str, _ := value.(string)
	f.data[key] = str
	return true, nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func requestWithPattern(method, url, pattern string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, url, body)
	rc := chi.NewRouteContext()
	rc.RoutePatterns = []string{pattern}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestRouteMatches(t *testing.T) {
	tests := []struct {
		method  string
		pattern string
		want    bool
	}{
		{http.MethodPost, "/api/v1/orders", true},
		{http.MethodPost, "/api/v1/orders/{orderId}/decision", true},
		{http.MethodPost, "/api/v1/orders/{orderId}/approve-vendor", true},
		{http.MethodPost, "/api/v1/quotations", true},
		{http.MethodGet, "/api/v1/orders", false},
		{http.MethodPost, "/api/v1/auth/login", false},
		{http.MethodDelete, "/api/v1/quotations/{id}", false},
	}
	for _, tc := range tests {
		if got := routeMatches(tc.method, tc.pattern); got != tc.want {
			t.Fatalf("%s %s: expected %v got %v", tc.method, tc.pattern, tc.want, got)
		}
	}
}

func TestIdempotencyWithoutKeyPassesThrough(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	for i := 0; i < 2; i++ {
		req := requestWithPattern(http.MethodPost, "/api/v1/orders", "/api/v1/orders", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 got %d", rec.Code)
		}
	}
	if calls != 2 {
		t.Fatalf("expected handler to run twice, ran %d", calls)
	}
	if len(store.data) != 0 {
		t.Fatalf("expected nothing stored, got %d entries", len(store.data))
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"order-1"}}`))
	}))

	var bodies []string
	for i := 0; i < 2; i++ {
		req := requestWithPattern(http.MethodPost, "/api/v1/orders", "/api/v1/orders", strings.NewReader(`{"title":"Lab gloves"}`))
		req.Header.Set("Idempotency-Key", "abc")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("attempt %d: expected 201 got %d", i, rec.Code)
		}
		bodies = append(bodies, rec.Body.String())
		if i == 1 && rec.Header().Get("Idempotent-Replayed") != "true" {
			t.Fatal("expected replay header on second attempt")
		}
	}
	if calls != 1 {
		t.Fatalf("expected handler once, ran %d", calls)
	}
	if bodies[0] != bodies[1] {
		t.Fatalf("expected identical bodies, got %q and %q", bodies[0], bodies[1])
	}
}

func TestIdempotencyRejectsDifferentBody(t *testing.T) {
	store := newFakeStore()
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	first := requestWithPattern(http.MethodPost, "/api/v1/quotations", "/api/v1/quotations", strings.NewReader(`{"price":1}`))
	first.Header.Set("Idempotency-Key", "dup")
	handler.ServeHTTP(httptest.NewRecorder(), first)

	second := requestWithPattern(http.MethodPost, "/api/v1/quotations", "/api/v1/quotations", strings.NewReader(`{"price":2}`))
	second.Header.Set("Idempotency-Key", "dup")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, second)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeIdempotency) {
		t.Fatalf("unexpected code %s", payload.Error.Code)
	}
}

func TestIdempotencyReleasesKeyOnServerError(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := requestWithPattern(http.MethodPost, "/api/v1/orders/1/post", "/api/v1/orders/{orderId}/post", strings.NewReader(``))
		req.Header.Set("Idempotency-Key", "retry-me")
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
	if calls != 2 {
		t.Fatalf("expected retry after 5xx to reach handler, ran %d", calls)
	}
}

func TestIdempotencyRejectsInFlightDuplicate(t *testing.T) {
	store := newFakeStore()
	handler := Idempotency(store, time.Hour, nil)(okHandler())

	pending, _ := json.Marshal(idempotencyRecord{RequestHash: hashBody([]byte(`{}`)), Pending: true})
	req := requestWithPattern(http.MethodPost, "/api/v1/orders", "/api/v1/orders", strings.NewReader(`{}`))
	req.Header.Set("Idempotency-Key", "busy")
	store.data[store.IdempotencyKey(buildScope(req), "busy")] = string(pending)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}
