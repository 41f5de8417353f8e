package usecase

import (
	"context"
	"time"

	"daysoff/internal/domain/entity"
)

// AuthStateSnapshot is a point-in-time view of the process's authentication
// state as maintained by the tracker.
type AuthStateSnapshot struct {
	User            *entity.User
	Session         *entity.Session
	IsLoading       bool
	IsAuthenticated bool
	ResolvedAt      time.Time
}

// AuthStateUsecase mirrors the session store for code running outside a
// request, keeping a deduplicated, single-writer view of who is signed in.
type AuthStateUsecase interface {
	// Start resolves the initial state and begins consuming auth events.
	// Initial resolution is bounded by the configured timeout; on timeout the
	// state settles as unauthenticated.
	Start(ctx context.Context) error

	// Stop tears down the event subscription.
	Stop()

	// Snapshot returns the current state.
	Snapshot() AuthStateSnapshot

	// SetSession installs a session for the tracker to mirror, as after a
	// completed sign-in.
	SetSession(ctx context.Context, session *entity.Session)

	// SignOut clears the mirrored state and invalidates the session.
	SignOut(ctx context.Context) error
}
