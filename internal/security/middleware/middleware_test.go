package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/condo-care/backend/internal/domain"
	"github.com/condo-care/backend/internal/security/auth"
)

func newTestAuthenticator(t *testing.T) (*Authenticator, *auth.TokenManager) {
	t.Helper()
	tokens := auth.NewTokenManager("test-secret", "condocare-test", 0)
	return NewAuthenticator(tokens, nil), tokens
}

func TestRequireAuthMissingToken(t *testing.T) {
	authn, _ := newTestAuthenticator(t)

	handler := authn.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/reports", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "no token provided")
}

func TestRequireAuthInvalidToken(t *testing.T) {
	authn, _ := newTestAuthenticator(t)

	handler := authn.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/reports", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthStoresClaims(t *testing.T) {
	authn, tokens := newTestAuthenticator(t)

	token, err := tokens.GenerateToken(7, "resident", domain.RoleUser)
	require.NoError(t, err)

	var got *auth.Claims
	handler := authn.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		got = GetClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/reports", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, int64(7), got.UserID)
	assert.Equal(t, "resident", got.Username)
	assert.Equal(t, domain.RoleUser, got.Role)
}

func TestRequireRoles(t *testing.T) {
	authn, tokens := newTestAuthenticator(t)

	handler := authn.RequireRoles(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, domain.RoleAdmin, domain.RoleTech)

	cases := []struct {
		role string
		want int
	}{
		{domain.RoleAdmin, http.StatusOK},
		{domain.RoleTech, http.StatusOK},
		{domain.RoleUser, http.StatusForbidden},
	}
	for _, tc := range cases {
		token, err := tokens.GenerateToken(1, "someone", tc.role)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPatch, "/api/reports/1001/status", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler(rec, req)

		assert.Equal(t, tc.want, rec.Code, "role %s", tc.role)
	}
}

func TestGetClaimsFromContextEmpty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, GetClaimsFromContext(req.Context()))
}
