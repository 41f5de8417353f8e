package impl

import (
	"context"
	"log/slog"

	deliverycontext "daysoff/internal/delivery/context"
	"daysoff/internal/domain/entity"
	domainerrors "daysoff/internal/domain/errors"
	"daysoff/internal/domain/repository"
	"daysoff/internal/domain/service"
	"daysoff/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const eventDateLayout = "2006-01-02"

// vacationService implements the VacationUsecase interface.
type vacationService struct {
	txManager repository.TransactionManager
	publisher service.EventPublisher
	logger    *slog.Logger
}

// NewVacationService is the constructor for vacationService.
func NewVacationService(
	txManager repository.TransactionManager,
	publisher service.EventPublisher,
	logger *slog.Logger,
) usecase.VacationUsecase {
	return &vacationService{
		txManager: txManager,
		publisher: publisher,
		logger:    logger,
	}
}

func (srv *vacationService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// ListBookings returns the user's bookings inside the window together with
// the consumed-days total against their allowance.
func (srv *vacationService) ListBookings(ctx context.Context, input usecase.ListBookingsInput) (*usecase.BookingSummary, error) {
	var summary usecase.BookingSummary

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		user, err := repoFactory.UserRepo().FindByID(ctx, input.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(err, "failed to find user")
		}

		bookings, err := repoFactory.VacationRepo().FindByUserID(ctx, input.UserID, input.From, input.To)
		if err != nil {
			return errors.Wrap(err, "failed to list bookings")
		}

		summary.Bookings = bookings
		summary.AllowanceDays = user.AllowanceDays
		for _, b := range bookings {
			summary.DaysBooked += b.Days()
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to list bookings", slog.Any("error", err), slog.Any("user_id", input.UserID))

		return nil, err
	}

	return &summary, nil
}

// CreateBooking validates and persists a new booking, then publishes a
// created event.
func (srv *vacationService) CreateBooking(ctx context.Context, input usecase.CreateBookingInput) (*entity.VacationBooking, error) {
	booking := &entity.VacationBooking{
		UserID:         input.UserID,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		Note:           input.Note,
		HalfDay:        input.HalfDay,
		HalfDayPortion: input.HalfDayPortion,
		SyncStatus:     entity.SyncStatusNone,
	}

	if !booking.RangeValid() {
		return nil, domainerrors.ErrInvalidDateRange
	}
	if booking.HalfDay && !booking.StartDate.Equal(booking.EndDate) {
		return nil, domainerrors.ErrInvalidDateRange.WrapMessage("half-day bookings cover a single day")
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if _, err := repoFactory.UserRepo().FindByID(ctx, input.UserID); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(err, "failed to find user")
		}

		if err := repoFactory.VacationRepo().Create(ctx, booking); err != nil {
			return errors.Wrap(err, "failed to create booking")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to create booking", slog.Any("error", err), slog.Any("user_id", input.UserID))

		return nil, err
	}

	srv.publishEvent(ctx, booking, "created")
	srv.log(ctx).Info("Booking created",
		slog.Any("booking_id", booking.ID),
		slog.Any("user_id", booking.UserID),
	)

	return booking, nil
}

// DeleteBooking removes a booking. Only the owner may delete; a cross-user
// attempt fails with a forbidden error and leaves the booking untouched.
func (srv *vacationService) DeleteBooking(ctx context.Context, userID, bookingID uuid.UUID) error {
	var deleted *entity.VacationBooking

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		vacationRepo := repoFactory.VacationRepo()

		booking, err := vacationRepo.FindByID(ctx, bookingID)
		if err != nil {
			if errors.Is(err, repository.ErrBookingNotFound) {
				return domainerrors.ErrBookingNotFound
			}

			return errors.Wrap(err, "failed to find booking")
		}

		if booking.UserID != userID {
			return domainerrors.ErrBookingOwnership
		}

		if err := vacationRepo.Delete(ctx, bookingID); err != nil {
			return errors.Wrap(err, "failed to delete booking")
		}
		deleted = booking

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to delete booking",
			slog.Any("error", err),
			slog.Any("booking_id", bookingID),
			slog.Any("user_id", userID),
		)

		return err
	}

	srv.publishEvent(ctx, deleted, "deleted")
	srv.log(ctx).Info("Booking deleted", slog.Any("booking_id", bookingID), slog.Any("user_id", userID))

	return nil
}

// publishEvent sends a booking lifecycle event. Publishing is best-effort;
// a failure is logged and never fails the request.
func (srv *vacationService) publishEvent(ctx context.Context, booking *entity.VacationBooking, action string) {
	event := &service.BookingEvent{
		RequestID:  deliverycontext.GetRequestIDFromContext(ctx),
		BookingID:  booking.ID.String(),
		UserID:     booking.UserID.String(),
		Action:     action,
		StartDate:  booking.StartDate.Format(eventDateLayout),
		EndDate:    booking.EndDate.Format(eventDateLayout),
		SyncStatus: string(booking.SyncStatus),
	}

	if err := srv.publisher.PublishBookingEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish booking event",
			slog.Any("error", err),
			slog.String("action", action),
			slog.Any("booking_id", booking.ID),
		)
	}
}
