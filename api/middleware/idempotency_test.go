package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mmattyV/scentra-backend/pkg/enums"
)

type stubIdempotencyStore struct {
	records map[string]string
	setNX   int
}

func newStubIdempotencyStore() *stubIdempotencyStore {
	return &stubIdempotencyStore{records: map[string]string{}}
}

func (s *stubIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	value, ok := s.records[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (s *stubIdempotencyStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	s.setNX++
	if _, ok := s.records[key]; ok {
		return false, nil
	}
	s.records[key] = value.(string)
	return true, nil
}

func (s *stubIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "idem:" + scope + ":" + id
}

func (s *stubIdempotencyStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.records, key)
	}
	return nil
}

func idempotencyTestRouter(store *stubIdempotencyStore, calls *int) http.Handler {
	r := chi.NewRouter()
	r.Use(Idempotency(store, nil))
	r.Post("/api/v1/checkout", func(w http.ResponseWriter, req *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"order_id":"abc"}}`))
	})
	r.Get("/api/v1/listings", func(w http.ResponseWriter, req *http.Request) {
		*calls++
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func checkoutRequest(key, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	req = req.WithContext(WithActor(req.Context(), uuid.MustParse("6f1a2d95-1f94-4a39-b6a9-3a2d9f78c101"), enums.UserRoleBuyer))
	return req
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newStubIdempotencyStore()
	calls := 0
	router := idempotencyTestRouter(store, &calls)

	body := `{"payment_method":"venmo"}`

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, checkoutRequest("key-1", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first request: expected 201, got %d", rec.Code)
	}
	if calls != 1 {
		t.Fatalf("handler should run once, ran %d times", calls)
	}
	if store.setNX != 1 {
		t.Fatalf("expected one SetNX, got %d", store.setNX)
	}

	replay := httptest.NewRecorder()
	router.ServeHTTP(replay, checkoutRequest("key-1", body))
	if calls != 1 {
		t.Fatalf("replay must not re-run the handler, ran %d times", calls)
	}
	if replay.Code != http.StatusCreated {
		t.Fatalf("replay: expected 201, got %d", replay.Code)
	}
	if replay.Body.String() != rec.Body.String() {
		t.Fatalf("replay body mismatch: %q vs %q", replay.Body.String(), rec.Body.String())
	}
	if ct := replay.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("replay content type: %q", ct)
	}
}

func TestIdempotencyRejectsReusedKeyWithDifferentBody(t *testing.T) {
	store := newStubIdempotencyStore()
	calls := 0
	router := idempotencyTestRouter(store, &calls)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, checkoutRequest("key-1", `{"payment_method":"venmo"}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first request: expected 201, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, checkoutRequest("key-1", `{"payment_method":"zelle"}`))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Error.Code != "IDEMPOTENCY_KEY_REUSED" {
		t.Fatalf("expected IDEMPOTENCY_KEY_REUSED, got %q", envelope.Error.Code)
	}
	if calls != 1 {
		t.Fatalf("handler should only have run once, ran %d times", calls)
	}
}

func TestIdempotencyRequiresKeyOnMatchedRoutes(t *testing.T) {
	store := newStubIdempotencyStore()
	calls := 0
	router := idempotencyTestRouter(store, &calls)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, checkoutRequest("", `{}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if calls != 0 {
		t.Fatal("handler must not run without an idempotency key")
	}
}

func TestIdempotencyIgnoresUnmatchedRoutes(t *testing.T) {
	store := newStubIdempotencyStore()
	calls := 0
	router := idempotencyTestRouter(store, &calls)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/listings", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if calls != 1 {
		t.Fatal("handler should run for unmatched routes")
	}
	if len(store.records) != 0 {
		t.Fatal("no record should be stored for unmatched routes")
	}
}

func TestIdempotencyScopesKeysPerUser(t *testing.T) {
	store := newStubIdempotencyStore()
	calls := 0
	router := idempotencyTestRouter(store, &calls)

	body := `{"payment_method":"venmo"}`

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, checkoutRequest("key-1", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first user: expected 201, got %d", rec.Code)
	}

	other := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	other.Header.Set("Idempotency-Key", "key-1")
	other = other.WithContext(WithActor(other.Context(), uuid.New(), enums.UserRoleBuyer))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, other)
	if calls != 2 {
		t.Fatalf("different user with the same key must run the handler, ran %d times", calls)
	}
}
