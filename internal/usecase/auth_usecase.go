// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"daysoff/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// HandleCallbackInput carries the identity provider's callback parameters.
type HandleCallbackInput struct {
	Code  string
	State string
}

// --- Output DTOs ---

// SignInURLOutput carries the provider authorization URL plus the CSRF state
// bound to it.
type SignInURLOutput struct {
	URL   string
	State string
}

// SessionOutput returns the session envelope after a successful sign-in or
// refresh.
type SessionOutput struct {
	Session *entity.Session
	User    *entity.User
}

// AuthUsecase defines the sign-in, session refresh and sign-out operations.
// This is the contract the delivery layer depends on.
type AuthUsecase interface {
	// BuildSignInURL returns the identity provider's authorization URL with a
	// registered one-time CSRF state.
	BuildSignInURL(ctx context.Context) (*SignInURLOutput, error)

	// HandleCallback completes the authorization code exchange: it validates
	// the CSRF state, exchanges the code, ensures an application user exists
	// for the identity (creating one with default settings on first sign-in),
	// and issues session tokens.
	HandleCallback(ctx context.Context, input HandleCallbackInput) (*SessionOutput, error)

	// RefreshSession rotates the refresh token and issues a new access token.
	RefreshSession(ctx context.Context, refreshToken string) (*SessionOutput, error)

	// SignOut invalidates the session record behind the refresh token.
	SignOut(ctx context.Context, refreshToken string) error

	// VerifyUser confirms the access token maps to an existing user row. This
	// is the full verification step gated pages rely on, not just a signature
	// check.
	VerifyUser(ctx context.Context, accessToken string) (*entity.User, error)
}

// SignedInUser identifies the authenticated caller resolved by middleware.
type SignedInUser struct {
	ID    uuid.UUID
	Email string
}
