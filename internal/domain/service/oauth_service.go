package service

import (
	"context"

	"daysoff/internal/domain/entity"
)

// OAuthIdentity is the identity-provider view of a signed-in person.
type OAuthIdentity struct {
	Subject       string // The provider's stable user id ("sub" claim).
	Email         string
	Name          string
	AvatarURL     string
	Locale        string
	EmailVerified bool
	Provider      entity.ProviderType
}

// OAuthService is the identity provider collaborator for the sign-in flow.
type OAuthService interface {
	// BuildAuthorizationURL constructs the provider's authorization URL,
	// registering the state parameter for later CSRF validation.
	BuildAuthorizationURL(state string) string

	// ValidateState consumes a previously issued state parameter; a state is
	// valid exactly once and only within its lifetime.
	ValidateState(state string) bool

	// ExchangeCode turns an authorization code into the provider identity of
	// the user who granted it.
	ExchangeCode(ctx context.Context, code string) (*OAuthIdentity, error)

	Provider() entity.ProviderType
}
