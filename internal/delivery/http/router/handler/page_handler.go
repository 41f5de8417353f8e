package handler

import (
	"net/http"
	"time"

	"daysoff/internal/delivery/http/middleware"
	"daysoff/internal/delivery/http/response"
	"daysoff/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// PageHandler serves the gated browser pages. Rendering is left to clients;
// these endpoints return the page data as JSON.
type PageHandler struct {
	vacations usecase.VacationUsecase
}

// NewPageHandler is the constructor for PageHandler, injected by Fx.
func NewPageHandler(vacations usecase.VacationUsecase) *PageHandler {
	return &PageHandler{vacations: vacations}
}

// Home serves the public landing page.
func (h *PageHandler) Home(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{
		"service":     "daysoff",
		"sign_in_url": "/auth/signin",
	}, "Vacation day tracking")
}

// Dashboard serves the signed-in landing page: the caller's current-year
// booking summary.
func (h *PageHandler) Dashboard(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	now := time.Now()
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := yearStart.AddDate(1, 0, 0).Add(-time.Nanosecond)

	summary, err := h.vacations.ListBookings(c.Request().Context(), usecase.ListBookingsInput{
		UserID: user.ID,
		From:   yearStart,
		To:     yearEnd,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"user": map[string]string{
			"id":    user.ID.String(),
			"email": user.Email,
		},
		"year":    now.Year(),
		"summary": toSummaryResponse(summary),
	}, "")
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "Service is healthy")
}
