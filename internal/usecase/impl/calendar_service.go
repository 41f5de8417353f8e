package impl

import (
	"context"
	"fmt"
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

// calendarService implements the CalendarUsecase interface.
type calendarService struct {
	txManager repository.TransactionManager
	provider  service.CalendarProvider
	qr        service.QRCodeService
	publisher service.EventPublisher
	logger    *slog.Logger
}

// NewCalendarService is the constructor for calendarService.
func NewCalendarService(
	txManager repository.TransactionManager,
	provider service.CalendarProvider,
	qr service.QRCodeService,
	publisher service.EventPublisher,
	logger *slog.Logger,
) usecase.CalendarUsecase {
	return &calendarService{
		txManager: txManager,
		provider:  provider,
		qr:        qr,
		publisher: publisher,
		logger:    logger,
	}
}

func (srv *calendarService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// AuthorizationURL builds the provider consent URL for the user. The user id
// rides in the state parameter so the callback can attribute the grant.
func (srv *calendarService) AuthorizationURL(_ context.Context, userID uuid.UUID) (string, error) {
	return srv.provider.BuildAuthorizationURL(userID.String()), nil
}

// CompleteAuthorization exchanges the code and stores the credential. The
// store is keyed by user id, so authorizing twice leaves exactly one row
// carrying the second grant's values.
func (srv *calendarService) CompleteAuthorization(ctx context.Context, userID uuid.UUID, code string) error {
	if code == "" {
		return domainerrors.ErrOAuthCodeInvalid
	}

	token, err := srv.provider.ExchangeCode(ctx, code)
	if err != nil {
		srv.log(ctx).Error("Calendar code exchange failed", slog.Any("error", err), slog.Any("user_id", userID))

		return domainerrors.ErrCalendarExchangeFailed
	}
	token.UserID = userID

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if _, err := repoFactory.UserRepo().FindByID(ctx, userID); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(err, "failed to find user")
		}

		if err := repoFactory.CalendarTokenRepo().Upsert(ctx, token); err != nil {
			return errors.Wrap(err, "failed to store calendar token")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Calendar authorization persistence failed", slog.Any("error", err), slog.Any("user_id", userID))

		return err
	}
	srv.log(ctx).Info("Calendar connected", slog.Any("user_id", userID), slog.String("provider", string(token.Provider)))

	return nil
}

// SyncBooking mirrors one booking to the external calendar.
func (srv *calendarService) SyncBooking(ctx context.Context, userID, bookingID uuid.UUID) (*entity.VacationBooking, error) {
	var booking *entity.VacationBooking
	var token *entity.CalendarToken

	// Load and authorize inside one transaction, call the provider outside it
	// so a slow network round trip never holds a database transaction open.
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error
		booking, err = repoFactory.VacationRepo().FindByID(ctx, bookingID)
		if err != nil {
			if errors.Is(err, repository.ErrBookingNotFound) {
				return domainerrors.ErrBookingNotFound
			}

			return errors.Wrap(err, "failed to find booking")
		}
		if booking.UserID != userID {
			return domainerrors.ErrBookingOwnership
		}

		token, err = repoFactory.CalendarTokenRepo().FindByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrCalendarTokenNotFound) {
				return domainerrors.ErrCalendarNotConnected
			}

			return errors.Wrap(err, "failed to find calendar token")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	token, err = srv.freshToken(ctx, token)
	if err != nil {
		return nil, err
	}

	event := &service.CalendarEvent{
		Summary:     "Vacation",
		Description: booking.Note,
		StartDate:   booking.StartDate,
		EndDate:     booking.EndDate,
	}
	if booking.HalfDay {
		event.Summary = fmt.Sprintf("Vacation (half day, %s)", booking.HalfDayPortion)
	}

	eventID, err := srv.provider.InsertEvent(ctx, token, event)
	if err != nil {
		srv.log(ctx).Error("Calendar event insert failed", slog.Any("error", err), slog.Any("booking_id", bookingID))
		srv.markSyncFailed(ctx, booking)

		return nil, domainerrors.ErrCalendarSyncFailed
	}

	booking.ExternalEventID = eventID
	booking.SyncStatus = entity.SyncStatusSynced

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.VacationRepo().Update(ctx, booking); err != nil {
			return errors.Wrap(err, "failed to record sync result")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to persist sync result", slog.Any("error", err), slog.Any("booking_id", bookingID))

		return nil, err
	}

	srv.publishSynced(ctx, booking)
	srv.log(ctx).Info("Booking synced to calendar",
		slog.Any("booking_id", bookingID),
		slog.String("event_id", eventID),
	)

	return booking, nil
}

// freshToken refreshes the stored credential when its access token is at or
// past expiry, persisting the replacement. Last writer wins on the user's
// single token row.
func (srv *calendarService) freshToken(ctx context.Context, token *entity.CalendarToken) (*entity.CalendarToken, error) {
	if !token.Expired(timeNow()) {
		return token, nil
	}

	refreshed, err := srv.provider.Refresh(ctx, token)
	if err != nil {
		srv.log(ctx).Error("Calendar token refresh failed", slog.Any("error", err), slog.Any("user_id", token.UserID))

		return nil, domainerrors.ErrCalendarExchangeFailed.WrapMessage("token refresh failed")
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.CalendarTokenRepo().Upsert(ctx, refreshed)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to store refreshed calendar token")
	}

	return refreshed, nil
}

// markSyncFailed records a failed sync attempt; best-effort.
func (srv *calendarService) markSyncFailed(ctx context.Context, booking *entity.VacationBooking) {
	booking.SyncStatus = entity.SyncStatusFailed

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.VacationRepo().Update(ctx, booking)
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to record sync failure", slog.Any("error", err), slog.Any("booking_id", booking.ID))
	}
}

func (srv *calendarService) publishSynced(ctx context.Context, booking *entity.VacationBooking) {
	event := &service.BookingEvent{
		RequestID:  deliverycontext.GetRequestIDFromContext(ctx),
		BookingID:  booking.ID.String(),
		UserID:     booking.UserID.String(),
		Action:     "synced",
		StartDate:  booking.StartDate.Format(eventDateLayout),
		EndDate:    booking.EndDate.Format(eventDateLayout),
		SyncStatus: string(booking.SyncStatus),
	}

	if err := srv.publisher.PublishBookingEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish sync event", slog.Any("error", err), slog.Any("booking_id", booking.ID))
	}
}

// Disconnect removes the stored credential. Disconnecting an unconnected
// user succeeds.
func (srv *calendarService) Disconnect(ctx context.Context, userID uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.CalendarTokenRepo().DeleteByUserID(ctx, userID); err != nil {
			if errors.Is(err, repository.ErrCalendarTokenNotFound) {
				return nil
			}

			return errors.Wrap(err, "failed to delete calendar token")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to disconnect calendar", slog.Any("error", err), slog.Any("user_id", userID))

		return err
	}
	srv.log(ctx).Info("Calendar disconnected", slog.Any("user_id", userID))

	return nil
}

// Status reports whether the user currently has a stored credential.
func (srv *calendarService) Status(ctx context.Context, userID uuid.UUID) (*usecase.CalendarStatus, error) {
	status := &usecase.CalendarStatus{Provider: srv.provider.Provider()}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		_, err := repoFactory.CalendarTokenRepo().FindByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrCalendarTokenNotFound) {
				return nil
			}

			return errors.Wrap(err, "failed to find calendar token")
		}
		status.Connected = true

		return nil
	})
	if err != nil {
		return nil, err
	}

	return status, nil
}

// ConnectQR renders the user's authorization URL as a QR code PNG.
func (srv *calendarService) ConnectQR(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	url, err := srv.AuthorizationURL(ctx, userID)
	if err != nil {
		return nil, err
	}

	png, err := srv.qr.GenerateURLQR(url)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render connect QR code")
	}

	return png, nil
}
