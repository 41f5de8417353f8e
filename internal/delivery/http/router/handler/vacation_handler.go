package handler

import (
	"net/http"
	"time"

	"daysoff/internal/delivery/http/middleware"
	"daysoff/internal/delivery/http/response"
	"daysoff/internal/domain/entity"
	"daysoff/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const dateLayout = "2006-01-02"

// VacationHandler serves the vacation booking routes.
type VacationHandler struct {
	uc usecase.VacationUsecase
}

// NewVacationHandler is the constructor for VacationHandler, injected by Fx.
func NewVacationHandler(uc usecase.VacationUsecase) *VacationHandler {
	return &VacationHandler{uc: uc}
}

type createBookingRequest struct {
	StartDate      string `json:"startDate" validate:"required"`
	EndDate        string `json:"endDate" validate:"required"`
	Note           string `json:"note"`
	HalfDay        bool   `json:"halfDay"`
	HalfDayPortion string `json:"halfDayPortion" validate:"omitempty,oneof=morning afternoon"`
}

type bookingResponse struct {
	ID              string  `json:"id"`
	StartDate       string  `json:"startDate"`
	EndDate         string  `json:"endDate"`
	Note            string  `json:"note,omitempty"`
	HalfDay         bool    `json:"halfDay"`
	HalfDayPortion  string  `json:"halfDayPortion,omitempty"`
	Days            float64 `json:"days"`
	ExternalEventID string  `json:"externalEventId,omitempty"`
	SyncStatus      string  `json:"syncStatus"`
}

type bookingSummaryResponse struct {
	Bookings      []bookingResponse `json:"bookings"`
	DaysBooked    float64           `json:"daysBooked"`
	AllowanceDays int               `json:"allowanceDays"`
}

// List returns the caller's bookings, optionally narrowed to a date window
// via from/to query parameters.
func (h *VacationHandler) List(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	input := usecase.ListBookingsInput{UserID: user.ID}

	var err error
	if input.From, err = parseOptionalDate(c.QueryParam("from")); err != nil {
		return response.BadRequest(c, "INVALID_DATE", "from must be formatted YYYY-MM-DD")
	}
	if input.To, err = parseOptionalDate(c.QueryParam("to")); err != nil {
		return response.BadRequest(c, "INVALID_DATE", "to must be formatted YYYY-MM-DD")
	}

	summary, err := h.uc.ListBookings(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toSummaryResponse(summary), "")
}

// Create books vacation days for the caller.
func (h *VacationHandler) Create(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid booking input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return response.BadRequest(c, "INVALID_DATE", "startDate must be formatted YYYY-MM-DD")
	}
	endDate, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return response.BadRequest(c, "INVALID_DATE", "endDate must be formatted YYYY-MM-DD")
	}

	booking, err := h.uc.CreateBooking(c.Request().Context(), usecase.CreateBookingInput{
		UserID:         user.ID,
		StartDate:      startDate,
		EndDate:        endDate,
		Note:           req.Note,
		HalfDay:        req.HalfDay,
		HalfDayPortion: entity.HalfDayPortion(req.HalfDayPortion),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toBookingResponse(booking), "Booking created")
}

// Delete removes one of the caller's bookings. Deleting another user's
// booking is rejected by the usecase with a 403.
func (h *VacationHandler) Delete(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Booking id must be a UUID")
	}

	if err := h.uc.DeleteBooking(c.Request().Context(), user.ID, bookingID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"id": bookingID.String()}, "Booking deleted")
}

func parseOptionalDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}

	return time.Parse(dateLayout, value)
}

func toBookingResponse(booking *entity.VacationBooking) bookingResponse {
	return bookingResponse{
		ID:              booking.ID.String(),
		StartDate:       booking.StartDate.Format(dateLayout),
		EndDate:         booking.EndDate.Format(dateLayout),
		Note:            booking.Note,
		HalfDay:         booking.HalfDay,
		HalfDayPortion:  string(booking.HalfDayPortion),
		Days:            booking.Days(),
		ExternalEventID: booking.ExternalEventID,
		SyncStatus:      string(booking.SyncStatus),
	}
}

func toSummaryResponse(summary *usecase.BookingSummary) bookingSummaryResponse {
	bookings := make([]bookingResponse, 0, len(summary.Bookings))
	for _, booking := range summary.Bookings {
		bookings = append(bookings, toBookingResponse(booking))
	}

	return bookingSummaryResponse{
		Bookings:      bookings,
		DaysBooked:    summary.DaysBooked,
		AllowanceDays: summary.AllowanceDays,
	}
}
