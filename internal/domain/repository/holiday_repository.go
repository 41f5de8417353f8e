package repository

import (
	"context"

	"daysoff/internal/domain/entity"
	"daysoff/internal/errors"
)

// Sentinel errors returned by holiday lookups.
var (
	ErrHolidayNotFound = errors.New("holiday not found")
)

// HolidayRepository is the persistence contract for the read-mostly Holiday
// reference data.
type HolidayRepository interface {
	// FindForYear returns national holidays plus the given province's
	// holidays for the calendar year, ordered by date.
	FindForYear(ctx context.Context, year int, province string) ([]*entity.Holiday, error)

	Create(ctx context.Context, holiday *entity.Holiday) error
}
