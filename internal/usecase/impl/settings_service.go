package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "daysoff/internal/delivery/context"
	"daysoff/internal/domain/entity"
	domainerrors "daysoff/internal/domain/errors"
	"daysoff/internal/domain/repository"
	"daysoff/internal/domain/service"
	"daysoff/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// settingsService implements the SettingsUsecase interface.
type settingsService struct {
	txManager repository.TransactionManager
	bus       service.AuthEventBus
	logger    *slog.Logger
}

// NewSettingsService is the constructor for settingsService.
func NewSettingsService(
	txManager repository.TransactionManager,
	bus service.AuthEventBus,
	logger *slog.Logger,
) usecase.SettingsUsecase {
	return &settingsService{
		txManager: txManager,
		bus:       bus,
		logger:    logger,
	}
}

func (srv *settingsService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetSettings returns the user with their current preferences.
func (srv *settingsService) GetSettings(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	var user *entity.User

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error
		user, err = repoFactory.UserRepo().FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(err, "failed to find user")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to get settings", slog.Any("error", err), slog.Any("user_id", userID))

		return nil, err
	}

	return user, nil
}

// UpdateSettings replaces the user's mutable preferences and announces the
// change on the auth event bus.
func (srv *settingsService) UpdateSettings(ctx context.Context, userID uuid.UUID, input usecase.UpdateSettingsInput) (*entity.User, error) {
	var user *entity.User

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		var err error
		user, err = userRepo.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(err, "failed to find user")
		}

		user.ApplySettings(entity.Settings{
			AllowanceDays: input.AllowanceDays,
			Province:      input.Province,
			Employment:    input.Employment,
			WeekStart:     input.WeekStart,
			CalendarSync:  input.CalendarSync,
		})

		if err := userRepo.Update(ctx, user); err != nil {
			return errors.Wrap(err, "failed to update user")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to update settings", slog.Any("error", err), slog.Any("user_id", userID))

		return nil, err
	}

	srv.bus.Publish(service.AuthEvent{
		Type:   service.AuthEventUserUpdated,
		UserID: userID,
		At:     time.Now(),
	})
	srv.log(ctx).Info("Settings updated", slog.Any("user_id", userID))

	return user, nil
}
