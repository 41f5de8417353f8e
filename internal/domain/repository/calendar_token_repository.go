package repository

import (
	"context"

	"daysoff/internal/domain/entity"
	"daysoff/internal/errors"

	"github.com/google/uuid"
)

// Sentinel errors returned by calendar token lookups.
var (
	ErrCalendarTokenNotFound = errors.New("calendar token not found")
)

// CalendarTokenRepository is the persistence contract for per-user calendar
// provider credentials.
type CalendarTokenRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.CalendarToken, error)

	// Upsert inserts or replaces the token keyed by user id. Authorizing twice
	// for the same user leaves exactly one row with the second authorization's
	// values; concurrent refreshes resolve last-write-wins on the same key.
	Upsert(ctx context.Context, token *entity.CalendarToken) error

	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}
