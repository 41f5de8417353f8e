package usecase

import (
	"context"

	"daysoff/internal/domain/entity"

	"github.com/google/uuid"
)

// UpdateSettingsInput carries the full mutable settings slice of a user.
type UpdateSettingsInput struct {
	AllowanceDays int
	Province      string
	Employment    entity.EmploymentCategory
	WeekStart     entity.WeekStart
	CalendarSync  bool
}

// SettingsUsecase reads and updates per-user preferences.
type SettingsUsecase interface {
	GetSettings(ctx context.Context, userID uuid.UUID) (*entity.User, error)
	UpdateSettings(ctx context.Context, userID uuid.UUID, input UpdateSettingsInput) (*entity.User, error)
}
