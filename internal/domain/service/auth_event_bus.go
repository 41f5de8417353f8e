package service

import (
	"time"

	"github.com/google/uuid"
)

// AuthEventType names a change in authentication state.
type AuthEventType string

const (
	AuthEventSignedIn       AuthEventType = "signed_in"
	AuthEventSignedOut      AuthEventType = "signed_out"
	AuthEventTokenRefreshed AuthEventType = "token_refreshed"
	AuthEventUserUpdated    AuthEventType = "user_updated"
)

// AuthEvent is one auth-change notification. The underlying stream may emit
// duplicates; subscribers are expected to de-duplicate.
type AuthEvent struct {
	Type   AuthEventType
	UserID uuid.UUID
	At     time.Time
}

// AuthEventBus carries auth-change events from the auth usecase to in-process
// observers such as the session state tracker.
type AuthEventBus interface {
	Publish(event AuthEvent)

	// Subscribe returns a channel of events and a cancel function that closes
	// it. Slow subscribers drop events rather than blocking publishers.
	Subscribe() (<-chan AuthEvent, func())
}
