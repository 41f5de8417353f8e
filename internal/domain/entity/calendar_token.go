package entity

import (
	"time"

	"github.com/google/uuid"
)

// ProviderType identifies an external provider.
type ProviderType string

const (
	ProviderTypeGoogle ProviderType = "google"
)

// CalendarToken is a user's credential pair for the external calendar
// provider. A user has at most one token; re-authorization supersedes the
// stored values rather than creating a second row.
type CalendarToken struct {
	ID           uuid.UUID
	UserID       uuid.UUID    // Owning user; unique, at most one token per user.
	Provider     ProviderType // Calendar provider this token belongs to.
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time // Absolute expiry computed from the provider's relative lifetime.
	Scope        string    // Granted scope string as returned by the provider.
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Expired reports whether the access token needs a refresh. A small skew is
// subtracted so a token is refreshed slightly before its wall-clock expiry.
func (t *CalendarToken) Expired(now time.Time) bool {
	const skew = 30 * time.Second

	return !now.Add(skew).Before(t.ExpiresAt)
}
