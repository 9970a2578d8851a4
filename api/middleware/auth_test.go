package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgauth "github.com/mmattyV/scentra-backend/pkg/auth"
	"github.com/mmattyV/scentra-backend/pkg/config"
	"github.com/mmattyV/scentra-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "scentra-test",
		ExpirationMinutes: 15,
	}
}

func TestAuthSeedsActorContext(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()
	token, err := pkgauth.MintAccessToken(cfg, time.Now(), pkgauth.AccessTokenPayload{
		UserID: userID,
		Role:   enums.UserRoleSeller,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	var gotUser uuid.UUID
	var gotRole enums.UserRole
	handler := Auth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/listings", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if gotUser != userID {
		t.Fatalf("user id not seeded, got %s", gotUser)
	}
	if gotRole != enums.UserRoleSeller {
		t.Fatalf("role not seeded, got %s", gotRole)
	}
}

func TestAuthRejectsBadCredentials(t *testing.T) {
	cfg := testJWTConfig()
	handler := Auth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	cases := []struct {
		name  string
		setup func(*http.Request)
	}{
		{"missing header", func(r *http.Request) {}},
		{"empty bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer ") }},
		{"garbage token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer not.a.jwt") }},
		{"wrong secret", func(r *http.Request) {
			other := cfg
			other.Secret = "different-secret"
			token, err := pkgauth.MintAccessToken(other, time.Now(), pkgauth.AccessTokenPayload{
				UserID: uuid.New(),
				Role:   enums.UserRoleBuyer,
			})
			if err != nil {
				t.Fatalf("mint token: %v", err)
			}
			r.Header.Set("Authorization", "Bearer "+token)
		}},
		{"expired token", func(r *http.Request) {
			token, err := pkgauth.MintAccessToken(cfg, time.Now().Add(-2*time.Hour), pkgauth.AccessTokenPayload{
				UserID: uuid.New(),
				Role:   enums.UserRoleBuyer,
			})
			if err != nil {
				t.Fatalf("mint token: %v", err)
			}
			r.Header.Set("Authorization", "Bearer "+token)
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/listings", nil)
			tc.setup(req)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(enums.UserRoleAdmin, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
	req = req.WithContext(WithActor(req.Context(), uuid.New(), enums.UserRoleAdmin))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("admin should pass, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
	req = req.WithContext(WithActor(req.Context(), uuid.New(), enums.UserRoleBuyer))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("buyer should be rejected, got %d", rec.Code)
	}
}
