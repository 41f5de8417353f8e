package usecase

import (
	"context"

	"daysoff/internal/domain/entity"

	"github.com/google/uuid"
)

// CalendarStatus reports whether a user has a usable calendar connection.
type CalendarStatus struct {
	Connected bool
	Provider  entity.ProviderType
}

// CalendarUsecase manages the external calendar connection and booking sync.
type CalendarUsecase interface {
	// AuthorizationURL builds the provider consent URL for the user.
	AuthorizationURL(ctx context.Context, userID uuid.UUID) (string, error)

	// CompleteAuthorization exchanges the callback code for tokens and stores
	// them. A repeated authorization replaces the previous grant.
	CompleteAuthorization(ctx context.Context, userID uuid.UUID, code string) error

	// SyncBooking mirrors one booking to the external calendar: refreshes the
	// stored token when expired, inserts the event and records the returned
	// event id on the booking.
	SyncBooking(ctx context.Context, userID, bookingID uuid.UUID) (*entity.VacationBooking, error)

	// Disconnect removes the stored credential.
	Disconnect(ctx context.Context, userID uuid.UUID) error

	// Status reports whether the user currently has a stored credential.
	Status(ctx context.Context, userID uuid.UUID) (*CalendarStatus, error)

	// ConnectQR renders the authorization URL as a QR code PNG so the
	// connection can be finished on another device.
	ConnectQR(ctx context.Context, userID uuid.UUID) ([]byte, error)
}
