package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mmattyV/scentra-backend/pkg/enums"
)

type stubLimiterStore struct {
	counts map[string]int64
}

func newStubLimiterStore() *stubLimiterStore {
	return &stubLimiterStore{counts: map[string]int64{}}
}

func (s *stubLimiterStore) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	s.counts[key]++
	return s.counts[key], nil
}

func serveRateLimited(t *testing.T, policy RateLimitPolicy, store *stubLimiterStore, withUser uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()
	handler := RateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	if withUser != uuid.Nil {
		req = req.WithContext(WithActor(req.Context(), withUser, enums.UserRoleBuyer))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitPerIP(t *testing.T) {
	store := newStubLimiterStore()
	policy := NewRateLimitPolicy("checkout", time.Minute, 2, 0)

	for i := 0; i < 2; i++ {
		if rec := serveRateLimited(t, policy, store, uuid.Nil); rec.Code != http.StatusNoContent {
			t.Fatalf("request %d should pass, got %d", i+1, rec.Code)
		}
	}

	rec := serveRateLimited(t, policy, store, uuid.Nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Error.Code != "RATE_LIMITED" {
		t.Fatalf("expected RATE_LIMITED, got %q", envelope.Error.Code)
	}
}

func TestRateLimitPerUser(t *testing.T) {
	store := newStubLimiterStore()
	policy := NewRateLimitPolicy("checkout", time.Minute, 100, 1)
	userID := uuid.New()

	if rec := serveRateLimited(t, policy, store, userID); rec.Code != http.StatusNoContent {
		t.Fatalf("first request should pass, got %d", rec.Code)
	}
	if rec := serveRateLimited(t, policy, store, userID); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on second request, got %d", rec.Code)
	}

	// Anonymous traffic never touches the per-user counter.
	if rec := serveRateLimited(t, policy, store, uuid.Nil); rec.Code != http.StatusNoContent {
		t.Fatalf("anonymous request should pass, got %d", rec.Code)
	}
	if _, ok := store.counts[policy.userKey(uuid.Nil.String())]; ok {
		t.Fatal("anonymous request must not create a user counter")
	}
}

func TestRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	store := newStubLimiterStore()
	policy := NewRateLimitPolicy("checkout", 0, 1, 1)

	for i := 0; i < 5; i++ {
		if rec := serveRateLimited(t, policy, store, uuid.Nil); rec.Code != http.StatusNoContent {
			t.Fatalf("request %d should pass, got %d", i+1, rec.Code)
		}
	}
	if len(store.counts) != 0 {
		t.Fatalf("disabled policy must not count, got %v", store.counts)
	}
}
