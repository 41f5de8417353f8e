package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"daysoff/internal/delivery/http/middleware"
	"daysoff/internal/delivery/http/response"
	domainerrors "daysoff/internal/domain/errors"
	"daysoff/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const calendarSettingsPath = "/settings"

// CalendarHandler serves the external calendar connection and sync routes.
type CalendarHandler struct {
	uc     usecase.CalendarUsecase
	logger *slog.Logger
}

// NewCalendarHandler is the constructor for CalendarHandler, injected by Fx.
func NewCalendarHandler(uc usecase.CalendarUsecase, logger *slog.Logger) *CalendarHandler {
	return &CalendarHandler{
		uc:     uc,
		logger: logger,
	}
}

type syncBookingRequest struct {
	BookingID string `json:"bookingId" validate:"required,uuid"`
}

// Authorize starts the provider consent round trip. The page to return to
// afterwards travels in a short-lived cookie.
func (h *CalendarHandler) Authorize(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	authURL, err := h.uc.AuthorizationURL(c.Request().Context(), user.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	target := calendarSettingsPath
	if returnTo := sanitizeReturnTarget(c.QueryParam("returnTo")); returnTo != "" {
		target = returnTo
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.CookieCalendarReturn,
		Value:    target,
		Path:     "/calendar/auth",
		MaxAge:   int(returnCookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return c.Redirect(http.StatusTemporaryRedirect, authURL)
}

// Callback completes the calendar authorization: it exchanges the code,
// stores the token and returns the browser to the saved target. Failures
// land back on the settings page with a reason code.
func (h *CalendarHandler) Callback(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	target := h.consumeReturnTarget(c)

	if reason := c.QueryParam("error"); reason != "" {
		return c.Redirect(http.StatusTemporaryRedirect, calendarErrorURL(target, reason))
	}

	if err := h.uc.CompleteAuthorization(c.Request().Context(), user.ID, c.QueryParam("code")); err != nil {
		h.logger.Warn("Calendar authorization failed",
			slog.String("user_id", user.ID.String()),
			slog.Any("error", err),
		)

		reason := "calendar_exchange_failed"
		var appErr domainerrors.AppError
		if errors.As(err, &appErr) {
			reason = strings.ToLower(appErr.ErrorCode())
		}

		return c.Redirect(http.StatusTemporaryRedirect, calendarErrorURL(target, reason))
	}

	return c.Redirect(http.StatusTemporaryRedirect, target)
}

// Sync mirrors one booking to the external calendar.
func (h *CalendarHandler) Sync(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	var req syncBookingRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid sync input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Booking id must be a UUID")
	}

	booking, err := h.uc.SyncBooking(c.Request().Context(), user.ID, bookingID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toBookingResponse(booking), "Booking synced")
}

// Status reports whether the caller has a calendar connection.
func (h *CalendarHandler) Status(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	status, err := h.uc.Status(c.Request().Context(), user.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"connected": status.Connected,
		"provider":  string(status.Provider),
	}, "")
}

// Disconnect removes the stored calendar credential.
func (h *CalendarHandler) Disconnect(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	if err := h.uc.Disconnect(c.Request().Context(), user.ID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Calendar disconnected"}, "Calendar disconnected")
}

// ConnectQR renders the authorization URL as a QR code PNG so the connection
// can be finished on another device.
func (h *CalendarHandler) ConnectQR(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	png, err := h.uc.ConnectQR(c.Request().Context(), user.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}

func (h *CalendarHandler) consumeReturnTarget(c echo.Context) string {
	target := calendarSettingsPath

	if cookie, err := c.Cookie(middleware.CookieCalendarReturn); err == nil {
		if sanitized := sanitizeReturnTarget(cookie.Value); sanitized != "" {
			target = sanitized
		}
		c.SetCookie(&http.Cookie{
			Name:     middleware.CookieCalendarReturn,
			Value:    "",
			Path:     "/calendar/auth",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	return target
}

func calendarErrorURL(target, reason string) string {
	separator := "?"
	if strings.Contains(target, "?") {
		separator = "&"
	}

	query := url.Values{}
	query.Set("calendar_error", reason)

	return target + separator + query.Encode()
}
