package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "daysoff/internal/delivery/context"
	"daysoff/internal/domain/entity"
	domainerrors "daysoff/internal/domain/errors"
	"daysoff/internal/domain/repository"
	"daysoff/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// holidayService implements the HolidayUsecase interface.
type holidayService struct {
	txManager repository.TransactionManager
	logger    *slog.Logger
}

// NewHolidayService is the constructor for holidayService.
func NewHolidayService(
	txManager repository.TransactionManager,
	logger *slog.Logger,
) usecase.HolidayUsecase {
	return &holidayService{
		txManager: txManager,
		logger:    logger,
	}
}

func (srv *holidayService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// ListForUser returns the holidays the user observes for the year. The
// repository narrows by province; the employment category filter is applied
// here since it is a pure domain rule.
func (srv *holidayService) ListForUser(ctx context.Context, userID uuid.UUID, year int) ([]*entity.Holiday, error) {
	var observed []*entity.Holiday

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		user, err := repoFactory.UserRepo().FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(err, "failed to find user")
		}

		holidays, err := repoFactory.HolidayRepo().FindForYear(ctx, year, user.Province)
		if err != nil {
			return errors.Wrap(err, "failed to list holidays")
		}

		for _, h := range holidays {
			if h.AppliesTo(user.Province, user.Employment) {
				observed = append(observed, h)
			}
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to list holidays", slog.Any("error", err), slog.Any("user_id", userID))

		return nil, err
	}

	return observed, nil
}

// ListForProvince returns all holidays applying in a province for the year.
func (srv *holidayService) ListForProvince(ctx context.Context, year int, province string) ([]*entity.Holiday, error) {
	var holidays []*entity.Holiday

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error
		holidays, err = repoFactory.HolidayRepo().FindForYear(ctx, year, province)
		if err != nil {
			return errors.Wrap(err, "failed to list holidays")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to list holidays",
			slog.Any("error", err),
			slog.Int("year", year),
			slog.String("province", province),
		)

		return nil, err
	}

	return holidays, nil
}

// Create seeds a holiday reference row.
func (srv *holidayService) Create(ctx context.Context, input usecase.CreateHolidayInput) (*entity.Holiday, error) {
	date, err := time.Parse("2006-01-02", input.Date)
	if err != nil {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("date must be YYYY-MM-DD")
	}
	if input.Scope == entity.HolidayScopeProvince && input.Province == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("province-scoped holidays need a province")
	}

	holiday := &entity.Holiday{
		Date:     date,
		Name:     input.Name,
		Scope:    input.Scope,
		Province: input.Province,
		Category: input.Category,
	}
	if holiday.Category == "" {
		holiday.Category = entity.HolidayCategoryGeneral
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.HolidayRepo().Create(ctx, holiday); err != nil {
			return errors.Wrap(err, "failed to create holiday")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to create holiday", slog.Any("error", err), slog.String("name", input.Name))

		return nil, err
	}
	srv.log(ctx).Info("Holiday created", slog.String("name", holiday.Name), slog.Any("holiday_id", holiday.ID))

	return holiday, nil
}
