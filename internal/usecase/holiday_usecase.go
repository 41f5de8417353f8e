package usecase

import (
	"context"

	"daysoff/internal/domain/entity"

	"github.com/google/uuid"
)

// CreateHolidayInput defines the data required to seed a holiday reference
// row.
type CreateHolidayInput struct {
	Date     string
	Name     string
	Scope    entity.HolidayScope
	Province string
	Category entity.HolidayCategory
}

// HolidayUsecase serves the statutory holiday reference data.
type HolidayUsecase interface {
	// ListForUser returns the holidays the user actually observes for the
	// given year, filtered by their province and employment category.
	ListForUser(ctx context.Context, userID uuid.UUID, year int) ([]*entity.Holiday, error)

	// ListForProvince returns all holidays applying in a province for the
	// year, regardless of employment category.
	ListForProvince(ctx context.Context, year int, province string) ([]*entity.Holiday, error)

	// Create seeds a holiday row.
	Create(ctx context.Context, input CreateHolidayInput) (*entity.Holiday, error)
}
