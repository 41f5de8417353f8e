// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"daysoff/config"
	"daysoff/internal/delivery/http/middleware"
	"daysoff/internal/delivery/http/response"
	"daysoff/internal/domain/entity"
	domainerrors "daysoff/internal/domain/errors"
	"daysoff/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const returnCookieMaxAge = 10 * time.Minute

// AuthHandler serves the sign-in flow: provider redirect, callback, session
// refresh and sign-out.
type AuthHandler struct {
	auth      usecase.AuthUsecase
	authState usecase.AuthStateUsecase
	cfg       *config.Config
	logger    *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(auth usecase.AuthUsecase, authState usecase.AuthStateUsecase, cfg *config.Config, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:      auth,
		authState: authState,
		cfg:       cfg,
		logger:    logger,
	}
}

// SignInPage serves the sign-in entry point. The gate redirects here with
// the original path preserved in callbackUrl.
func (h *AuthHandler) SignInPage(c echo.Context) error {
	output, err := h.auth.BuildSignInURL(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	data := map[string]string{
		"provider_url": output.URL,
		"sign_in_url":  "/auth/google?redirect=true",
	}
	if callbackURL := c.QueryParam("callbackUrl"); callbackURL != "" {
		data["callback_url"] = callbackURL
	}
	if reason := c.QueryParam("error"); reason != "" {
		data["error"] = reason
	}

	return response.Success(c, http.StatusOK, data, "Sign in with your identity provider")
}

// GoogleSignIn initiates the provider round trip. The post-sign-in return
// target travels in a short-lived cookie so the callback can restore it.
func (h *AuthHandler) GoogleSignIn(c echo.Context) error {
	output, err := h.auth.BuildSignInURL(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	if target := sanitizeReturnTarget(c.QueryParam("callbackUrl")); target != "" {
		c.SetCookie(&http.Cookie{
			Name:     middleware.CookieSignInReturn,
			Value:    target,
			Path:     "/auth",
			MaxAge:   int(returnCookieMaxAge.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	if c.QueryParam("redirect") == "true" {
		return c.Redirect(http.StatusTemporaryRedirect, output.URL)
	}

	return response.Success(c, http.StatusOK, map[string]string{
		"oauth_url": output.URL,
		"state":     output.State,
	}, "Authorization URL generated")
}

// Callback completes the code exchange. On success the session cookies are
// installed and the browser is sent to the stored return target with the
// one-time marker appended; every failure redirects back to sign-in with a
// reason code instead.
func (h *AuthHandler) Callback(c echo.Context) error {
	input := usecase.HandleCallbackInput{
		Code:  c.QueryParam("code"),
		State: c.QueryParam("state"),
	}

	output, err := h.auth.HandleCallback(c.Request().Context(), input)
	if err != nil {
		h.logger.Warn("Sign-in callback failed", slog.Any("error", err))

		return c.Redirect(http.StatusTemporaryRedirect, h.signInErrorURL(err))
	}

	h.setSessionCookies(c, output.Session)

	// Hand the fresh session to the in-process tracker.
	h.authState.SetSession(c.Request().Context(), output.Session)

	target := h.consumeReturnTarget(c)

	return c.Redirect(http.StatusTemporaryRedirect, appendAuthSuccessMarker(target))
}

// Refresh rotates the refresh token. Accepts the refresh cookie or a JSON
// body for non-browser clients.
func (h *AuthHandler) Refresh(c echo.Context) error {
	refreshToken := h.refreshTokenFromRequest(c)
	if refreshToken == "" {
		return response.Unauthorized(c, "REFRESH_TOKEN_MISSING", "No refresh token provided")
	}

	output, err := h.auth.RefreshSession(c.Request().Context(), refreshToken)
	if err != nil {
		return errors.WithStack(err)
	}

	h.setSessionCookies(c, output.Session)
	h.authState.SetSession(c.Request().Context(), output.Session)

	return response.Success(c, http.StatusOK, sessionResponse(output), "Session refreshed")
}

// Logout invalidates the session and clears the cookies. Signing out an
// already-invalid session still succeeds.
func (h *AuthHandler) Logout(c echo.Context) error {
	if refreshToken := h.refreshTokenFromRequest(c); refreshToken != "" {
		if err := h.auth.SignOut(c.Request().Context(), refreshToken); err != nil {
			return errors.WithStack(err)
		}
	}

	h.clearSessionCookies(c)

	return response.Success(c, http.StatusOK, map[string]string{"message": "Signed out"}, "Signed out")
}

func (h *AuthHandler) refreshTokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(middleware.CookieRefresh); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.Bind(&body); err == nil {
		return body.RefreshToken
	}

	return ""
}

func (h *AuthHandler) setSessionCookies(c echo.Context, session *entity.Session) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.CookieSession,
		Value:    session.AccessToken,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	c.SetCookie(&http.Cookie{
		Name:     middleware.CookieRefresh,
		Value:    session.RefreshToken,
		Path:     "/auth",
		MaxAge:   int((30 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookies(c echo.Context) {
	for _, cookie := range []struct {
		name string
		path string
	}{
		{middleware.CookieSession, "/"},
		{middleware.CookieRefresh, "/auth"},
	} {
		c.SetCookie(&http.Cookie{
			Name:     cookie.name,
			Value:    "",
			Path:     cookie.path,
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// consumeReturnTarget reads and clears the return-target cookie, falling
// back to the dashboard.
func (h *AuthHandler) consumeReturnTarget(c echo.Context) string {
	target := h.cfg.AuthGate.DashboardPath

	if cookie, err := c.Cookie(middleware.CookieSignInReturn); err == nil {
		if sanitized := sanitizeReturnTarget(cookie.Value); sanitized != "" {
			target = sanitized
		}
		c.SetCookie(&http.Cookie{
			Name:     middleware.CookieSignInReturn,
			Value:    "",
			Path:     "/auth",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	return target
}

func (h *AuthHandler) signInErrorURL(err error) string {
	reason := "oauth_failed"
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		reason = strings.ToLower(appErr.ErrorCode())
	}

	query := url.Values{}
	query.Set("error", reason)

	return h.cfg.AuthGate.SignInPath + "?" + query.Encode()
}

// sanitizeReturnTarget keeps redirect targets on this site. Anything not a
// plain absolute path is dropped.
func sanitizeReturnTarget(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return ""
	}

	return target
}

func appendAuthSuccessMarker(target string) string {
	separator := "?"
	if strings.Contains(target, "?") {
		separator = "&"
	}

	return target + separator + middleware.AuthSuccessParam + "=true"
}

func sessionResponse(output *usecase.SessionOutput) map[string]any {
	return map[string]any{
		"access_token":  output.Session.AccessToken,
		"refresh_token": output.Session.RefreshToken,
		"expires_at":    output.Session.ExpiresAt,
		"user": map[string]string{
			"id":    output.User.ID.String(),
			"email": output.User.Email,
			"name":  output.User.Name,
		},
	}
}
