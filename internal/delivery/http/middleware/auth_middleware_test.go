package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"daysoff/internal/domain/entity"
	"daysoff/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func performAuthenticated(m *AuthMiddleware, req *http.Request) (*httptest.ResponseRecorder, usecase.SignedInUser, bool) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var resolved usecase.SignedInUser
	var ok bool
	handler := m.Authenticate(func(c echo.Context) error {
		resolved, ok = CurrentUser(c)

		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}

	return rec, resolved, ok
}

func TestAuthMiddleware_AcceptsBearerToken(t *testing.T) {
	userID := uuid.New()
	stub := &gateAuthStub{validTokens: map[string]*entity.User{
		"valid-token": {ID: userID, Email: "ada@example.com"},
	}}
	m := NewAuthMiddleware(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/vacations", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec, user, ok := performAuthenticated(m, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, ok)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, "ada@example.com", user.Email)
}

func TestAuthMiddleware_AcceptsSessionCookie(t *testing.T) {
	stub := &gateAuthStub{validTokens: map[string]*entity.User{
		"valid-token": {ID: uuid.New(), Email: "ada@example.com"},
	}}
	m := NewAuthMiddleware(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/vacations", nil)
	req.AddCookie(&http.Cookie{Name: CookieSession, Value: "valid-token"})
	rec, _, ok := performAuthenticated(m, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, ok)
}

func TestAuthMiddleware_RejectsMissingAndInvalidTokens(t *testing.T) {
	stub := &gateAuthStub{validTokens: map[string]*entity.User{}}
	m := NewAuthMiddleware(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/vacations", nil)
	rec, _, ok := performAuthenticated(m, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, ok)

	req = httptest.NewRequest(http.MethodGet, "/api/vacations", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec, _, ok = performAuthenticated(m, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, ok)
}
