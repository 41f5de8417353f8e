package usecase

import (
	"context"
	"time"

	"daysoff/internal/domain/entity"

	"github.com/google/uuid"
)

// CreateBookingInput defines the data required to book vacation days.
type CreateBookingInput struct {
	UserID         uuid.UUID
	StartDate      time.Time
	EndDate        time.Time
	Note           string
	HalfDay        bool
	HalfDayPortion entity.HalfDayPortion
}

// ListBookingsInput narrows a booking listing to a date window. Zero-valued
// bounds leave that side open.
type ListBookingsInput struct {
	UserID uuid.UUID
	From   time.Time
	To     time.Time
}

// BookingSummary aggregates a listing against the user's allowance.
type BookingSummary struct {
	Bookings      []*entity.VacationBooking
	DaysBooked    float64
	AllowanceDays int
}

// VacationUsecase defines booking operations. Deletion is owner-only; the
// caller's identity always travels with the request.
type VacationUsecase interface {
	ListBookings(ctx context.Context, input ListBookingsInput) (*BookingSummary, error)
	CreateBooking(ctx context.Context, input CreateBookingInput) (*entity.VacationBooking, error)
	DeleteBooking(ctx context.Context, userID, bookingID uuid.UUID) error
}
