package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/hangout-backend/pkg/auth"
	"github.com/angelmondragon/hangout-backend/pkg/config"
	"github.com/angelmondragon/hangout-backend/pkg/enums"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "hangout", ExpirationMinutes: 60}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthRejectsMissingToken(t *testing.T) {
	handler := Auth(testJWT, stubRevocations{}, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	handler := Auth(testJWT, stubRevocations{}, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsForeignIssuer(t *testing.T) {
	other := testJWT
	other.Issuer = "someone-else"
	token := mintTestToken(t, other, uuid.New(), enums.AccountRoleUser)
	handler := Auth(testJWT, stubRevocations{}, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthAllowsValidToken(t *testing.T) {
	accountID := uuid.New()
	token := mintTestToken(t, testJWT, accountID, enums.AccountRoleBusinessOwner)

	var captured struct {
		account string
		role    string
		claims  *auth.AccessTokenClaims
	}
	handler := Auth(testJWT, stubRevocations{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.account = AccountIDFromContext(r.Context())
		captured.role = RoleFromContext(r.Context())
		captured.claims = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.account != accountID.String() {
		t.Fatalf("expected account %s got %s", accountID, captured.account)
	}
	if captured.role != string(enums.AccountRoleBusinessOwner) {
		t.Fatalf("expected business_owner got %s", captured.role)
	}
	if captured.claims == nil || captured.claims.ID == "" {
		t.Fatal("expected claims with token id in context")
	}
}

func TestAuthRejectsRevokedToken(t *testing.T) {
	token := mintTestToken(t, testJWT, uuid.New(), enums.AccountRoleUser)
	handler := Auth(testJWT, stubRevocations{revoked: true}, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRevocationStoreFailure(t *testing.T) {
	token := mintTestToken(t, testJWT, uuid.New(), enums.AccountRoleUser)
	handler := Auth(testJWT, stubRevocations{err: errors.New("redis down")}, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(nil, string(enums.AccountRoleBusinessOwner), string(enums.AccountRoleAdmin))(okHandler())

	cases := map[string]int{
		string(enums.AccountRoleBusinessOwner): http.StatusOK,
		string(enums.AccountRoleAdmin):         http.StatusOK,
		string(enums.AccountRoleUser):          http.StatusForbidden,
		"":                                     http.StatusForbidden,
	}
	for role, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithRole(req.Context(), role))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != want {
			t.Fatalf("role %q: expected %d got %d", role, want, resp.Code)
		}
	}
}

func TestAccountUUID(t *testing.T) {
	if _, ok := AccountUUID(context.Background()); ok {
		t.Fatal("expected no account on empty context")
	}
	id := uuid.New()
	got, ok := AccountUUID(WithAccountID(context.Background(), id.String()))
	if !ok || got != id {
		t.Fatalf("expected %s got %s (ok=%v)", id, got, ok)
	}
}

func mintTestToken(t *testing.T, cfg config.JWTConfig, accountID uuid.UUID, role enums.AccountRole) string {
	t.Helper()
	token, err := auth.MintAccessToken(cfg, time.Now(), auth.AccessTokenPayload{
		AccountID: accountID,
		Role:      role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

type stubRevocations struct {
	revoked bool
	err     error
}

func (s stubRevocations) IsRevoked(context.Context, string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.revoked, nil
}
