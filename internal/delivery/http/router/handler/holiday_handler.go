package handler

import (
	"net/http"
	"strconv"
	"time"

	"daysoff/internal/delivery/http/middleware"
	"daysoff/internal/delivery/http/response"
	"daysoff/internal/domain/entity"
	"daysoff/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// HolidayHandler serves the statutory holiday reference routes.
type HolidayHandler struct {
	uc usecase.HolidayUsecase
}

// NewHolidayHandler is the constructor for HolidayHandler, injected by Fx.
func NewHolidayHandler(uc usecase.HolidayUsecase) *HolidayHandler {
	return &HolidayHandler{uc: uc}
}

type createHolidayRequest struct {
	Date     string `json:"date" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Scope    string `json:"scope" validate:"required,oneof=national province"`
	Province string `json:"province"`
	Category string `json:"category" validate:"omitempty,oneof=general federal retail"`
}

type holidayResponse struct {
	ID       string `json:"id"`
	Date     string `json:"date"`
	Name     string `json:"name"`
	Scope    string `json:"scope"`
	Province string `json:"province,omitempty"`
	Category string `json:"category"`
}

// List returns the holidays for a year. With a province parameter it lists
// everything observed in that province; without one it filters down to what
// the calling user actually observes.
func (h *HolidayHandler) List(c echo.Context) error {
	year := time.Now().Year()
	if raw := c.QueryParam("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return response.BadRequest(c, "INVALID_YEAR", "year must be an integer")
		}
		year = parsed
	}

	var holidays []*entity.Holiday
	var err error

	if province := c.QueryParam("province"); province != "" {
		holidays, err = h.uc.ListForProvince(c.Request().Context(), year, province)
	} else {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
		}
		holidays, err = h.uc.ListForUser(c.Request().Context(), user.ID, year)
	}
	if err != nil {
		return errors.WithStack(err)
	}

	out := make([]holidayResponse, 0, len(holidays))
	for _, holiday := range holidays {
		out = append(out, toHolidayResponse(holiday))
	}

	return response.Success(c, http.StatusOK, out, "")
}

// Create seeds a holiday reference row.
func (h *HolidayHandler) Create(c echo.Context) error {
	var req createHolidayRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid holiday input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	holiday, err := h.uc.Create(c.Request().Context(), usecase.CreateHolidayInput{
		Date:     req.Date,
		Name:     req.Name,
		Scope:    entity.HolidayScope(req.Scope),
		Province: req.Province,
		Category: entity.HolidayCategory(req.Category),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toHolidayResponse(holiday), "Holiday created")
}

func toHolidayResponse(holiday *entity.Holiday) holidayResponse {
	return holidayResponse{
		ID:       holiday.ID.String(),
		Date:     holiday.Date.Format(dateLayout),
		Name:     holiday.Name,
		Scope:    string(holiday.Scope),
		Province: holiday.Province,
		Category: string(holiday.Category),
	}
}
