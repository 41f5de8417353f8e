package repository

import (
	"context"
	"time"

	"daysoff/internal/domain/entity"
	"daysoff/internal/errors"

	"github.com/google/uuid"
)

// Sentinel errors returned by booking lookups.
var (
	ErrBookingNotFound = errors.New("vacation booking not found")
)

// VacationRepository is the persistence contract for VacationBooking entities.
type VacationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.VacationBooking, error)

	// FindByUserID returns the user's bookings ordered by start date. The
	// optional range bounds filter bookings overlapping [from, to].
	FindByUserID(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*entity.VacationBooking, error)

	Create(ctx context.Context, booking *entity.VacationBooking) error
	Update(ctx context.Context, booking *entity.VacationBooking) error
	Delete(ctx context.Context, id uuid.UUID) error
}
