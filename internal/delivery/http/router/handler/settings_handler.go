package handler

import (
	"net/http"

	"daysoff/internal/delivery/http/middleware"
	"daysoff/internal/delivery/http/response"
	"daysoff/internal/domain/entity"
	"daysoff/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// SettingsHandler serves the per-user settings routes.
type SettingsHandler struct {
	uc usecase.SettingsUsecase
}

// NewSettingsHandler is the constructor for SettingsHandler, injected by Fx.
func NewSettingsHandler(uc usecase.SettingsUsecase) *SettingsHandler {
	return &SettingsHandler{uc: uc}
}

type updateSettingsRequest struct {
	AllowanceDays int    `json:"allowanceDays" validate:"required,gt=0,lte=365"`
	Province      string `json:"province" validate:"required,len=2"`
	Employment    string `json:"employment" validate:"required,oneof=standard federal retail"`
	WeekStart     string `json:"weekStart" validate:"required,oneof=sunday monday"`
	CalendarSync  bool   `json:"calendarSync"`
}

type settingsResponse struct {
	AllowanceDays int    `json:"allowanceDays"`
	Province      string `json:"province"`
	Employment    string `json:"employment"`
	WeekStart     string `json:"weekStart"`
	CalendarSync  bool   `json:"calendarSync"`
}

// Get returns the caller's settings.
func (h *SettingsHandler) Get(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	settings, err := h.uc.GetSettings(c.Request().Context(), user.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toSettingsResponse(settings), "")
}

// Update replaces the caller's settings with the submitted values.
func (h *SettingsHandler) Update(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	var req updateSettingsRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid settings input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	updated, err := h.uc.UpdateSettings(c.Request().Context(), user.ID, usecase.UpdateSettingsInput{
		AllowanceDays: req.AllowanceDays,
		Province:      req.Province,
		Employment:    entity.EmploymentCategory(req.Employment),
		WeekStart:     entity.WeekStart(req.WeekStart),
		CalendarSync:  req.CalendarSync,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toSettingsResponse(updated), "Settings updated")
}

func toSettingsResponse(user *entity.User) settingsResponse {
	return settingsResponse{
		AllowanceDays: user.AllowanceDays,
		Province:      user.Province,
		Employment:    string(user.Employment),
		WeekStart:     string(user.WeekStart),
		CalendarSync:  user.CalendarSync,
	}
}
