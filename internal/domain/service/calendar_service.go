package service

import (
	"context"
	"time"

	"daysoff/internal/domain/entity"
)

// CalendarEvent is the provider-agnostic shape of an all-day event written to
// the external calendar.
type CalendarEvent struct {
	Summary     string
	Description string
	StartDate   time.Time // Date precision, inclusive.
	EndDate     time.Time // Date precision, inclusive.
}

// CalendarProvider is the external calendar collaborator: standard
// authorization-code grant plus a single events-insert call.
type CalendarProvider interface {
	// BuildAuthorizationURL constructs the provider's consent URL.
	BuildAuthorizationURL(state string) string

	// ExchangeCode posts the authorization code with the client credentials
	// and returns a token whose ExpiresAt is an absolute timestamp computed
	// from the provider's relative lifetime.
	ExchangeCode(ctx context.Context, code string) (*entity.CalendarToken, error)

	// Refresh obtains a new access token from a refresh token. Providers that
	// do not rotate refresh tokens keep the old one on the returned value.
	Refresh(ctx context.Context, token *entity.CalendarToken) (*entity.CalendarToken, error)

	// InsertEvent writes the event to the user's calendar and returns the
	// provider's event identifier.
	InsertEvent(ctx context.Context, token *entity.CalendarToken, event *CalendarEvent) (string, error)

	Provider() entity.ProviderType
}
