package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arunderam/dreambig-real-estate-platform-sub000/internal/auth"
)

type staticVerifier struct {
	token    string
	identity *auth.Identity
}

func (v *staticVerifier) Verify(_ context.Context, token string) (*auth.Identity, error) {
	if token != v.token {
		return nil, auth.ErrInvalidToken
	}
	return v.identity, nil
}

func newAuthTestHandler(t *testing.T) http.Handler {
	t.Helper()
	identity := &auth.Identity{UserID: 1, Name: "Alice", Role: "buyer"}
	mw := NewAuthMiddleware(&staticVerifier{token: "good-token", identity: identity})

	return mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := IdentityFromContext(r.Context())
		if got == nil {
			t.Error("expected an identity in the request context")
		} else if got.UserID != identity.UserID {
			t.Errorf("expected user %d, got %d", identity.UserID, got.UserID)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
}

func TestRequireAuthValidToken(t *testing.T) {
	handler := newAuthTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chat/rooms", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestRequireAuthMissingHeader(t *testing.T) {
	handler := newAuthTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chat/rooms", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuthMalformedHeader(t *testing.T) {
	handler := newAuthTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chat/rooms", nil)
	req.Header.Set("Authorization", "good-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	handler := newAuthTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chat/rooms", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestIdentityFromContextEmpty(t *testing.T) {
	if IdentityFromContext(context.Background()) != nil {
		t.Fatal("expected nil identity outside an authenticated request")
	}
}
