package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewise/billing/internal/identity"
)

func testProvider() identity.Provider {
	return &identity.MockProvider{
		Users: map[string]identity.User{
			"valid-token": {ID: "user_1", Email: "a@example.com"},
		},
	}
}

func TestWithUser_ValidToken(t *testing.T) {
	var got *identity.User
	handler := WithUser(testProvider())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetUserFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/subscription/status", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.Equal(t, "user_1", got.ID)
	assert.Equal(t, "a@example.com", got.Email)
}

func TestWithUser_InvalidTokenContinuesAnonymous(t *testing.T) {
	var called bool
	handler := WithUser(testProvider())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Nil(t, GetUserFromContext(r.Context()))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/subscription/status", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, called)
}

func TestWithUser_NoHeader(t *testing.T) {
	handler := WithUser(testProvider())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Nil(t, GetUserFromContext(r.Context()))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/subscription/status", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)
}

func TestRequireAuth_Rejects(t *testing.T) {
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a user")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/subscription/status", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "unauthorized")
}

func TestRequireAuth_PassesWithUser(t *testing.T) {
	var called bool
	chain := WithUser(testProvider())(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/subscription/status", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	chain.ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, called)
}
