package middleware

import (
	"net/http"
	"strings"

	"daysoff/internal/usecase"

	"github.com/labstack/echo/v4"
)

const contextKeySignedInUser = "signedInUser"

// AuthMiddleware authenticates API requests. It accepts a bearer access
// token or the browser session cookie and resolves the caller through the
// full verified-user check, so a valid token for a deleted user is still
// rejected.
type AuthMiddleware struct {
	auth usecase.AuthUsecase
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(auth usecase.AuthUsecase) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// Authenticate validates the caller's access token and stores the resolved
// identity on the request context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		accessToken := bearerToken(c)
		if accessToken == "" {
			if cookie, err := c.Cookie(CookieSession); err == nil {
				accessToken = cookie.Value
			}
		}
		if accessToken == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Authentication required"})
		}

		user, err := m.auth.VerifyUser(c.Request().Context(), accessToken)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or expired session"})
		}

		c.Set(contextKeySignedInUser, usecase.SignedInUser{ID: user.ID, Email: user.Email})

		return next(c)
	}
}

// CurrentUser returns the identity resolved by Authenticate.
func CurrentUser(c echo.Context) (usecase.SignedInUser, bool) {
	user, ok := c.Get(contextKeySignedInUser).(usecase.SignedInUser)

	return user, ok
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return ""
	}

	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		return ""
	}

	return token
}
