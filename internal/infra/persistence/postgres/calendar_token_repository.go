package postgres

import (
	"context"

	"daysoff/internal/domain/entity"
	domainerrors "daysoff/internal/domain/errors"
	"daysoff/internal/domain/repository"
	"daysoff/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// calendarTokenRepository implements the domain.CalendarTokenRepository
// interface using GORM.
type calendarTokenRepository struct {
	db *gorm.DB
}

// NewCalendarTokenRepository is the constructor for calendarTokenRepository.
func NewCalendarTokenRepository(db *gorm.DB) repository.CalendarTokenRepository {
	return &calendarTokenRepository{db: db}
}

// FindByUserID retrieves the user's stored calendar credential, if any.
func (repo *calendarTokenRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.CalendarToken, error) {
	var tokenM model.CalendarTokenModel
	if err := repo.db.WithContext(ctx).Where("user_id = ?", userID).First(&tokenM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCalendarTokenNotFound
		}

		return nil, errors.Wrap(err, "failed to find calendar token")
	}

	return toCalendarTokenDomain(&tokenM), nil
}

// Upsert inserts or replaces the credential keyed by user id. The unique
// index on user_id makes concurrent writes for the same user converge on the
// last writer's values instead of accumulating rows.
func (repo *calendarTokenRepository) Upsert(ctx context.Context, token *entity.CalendarToken) error {
	tokenM := fromCalendarTokenDomain(token)

	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"provider", "access_token", "refresh_token", "expires_at", "scope", "updated_at",
			}),
		}).
		Create(tokenM).Error
	if err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrUserNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to upsert calendar token")
	}

	token.ID = tokenM.ID
	token.CreatedAt = tokenM.CreatedAt
	token.UpdatedAt = tokenM.UpdatedAt

	return nil
}

// DeleteByUserID removes the user's stored credential.
func (repo *calendarTokenRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	result := repo.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.CalendarTokenModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete calendar token")
	}
	if result.RowsAffected == 0 {
		return repository.ErrCalendarTokenNotFound
	}

	return nil
}

// --- Mapper Functions ---

func toCalendarTokenDomain(data *model.CalendarTokenModel) *entity.CalendarToken {
	if data == nil {
		return nil
	}

	return &entity.CalendarToken{
		ID:           data.ID,
		UserID:       data.UserID,
		Provider:     entity.ProviderType(data.Provider),
		AccessToken:  data.AccessToken,
		RefreshToken: data.RefreshToken,
		ExpiresAt:    data.ExpiresAt,
		Scope:        data.Scope,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}

func fromCalendarTokenDomain(data *entity.CalendarToken) *model.CalendarTokenModel {
	if data == nil {
		return nil
	}

	return &model.CalendarTokenModel{
		ID:           data.ID,
		UserID:       data.UserID,
		Provider:     string(data.Provider),
		AccessToken:  data.AccessToken,
		RefreshToken: data.RefreshToken,
		ExpiresAt:    data.ExpiresAt,
		Scope:        data.Scope,
	}
}
