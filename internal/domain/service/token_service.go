// Package service defines the domain service contracts implemented by the
// infra layer.
package service

import (
	"time"

	"github.com/google/uuid"
)

// SessionClaims are the verified claims extracted from a session token.
type SessionClaims struct {
	UserID uuid.UUID
	Type   string // "access" or "refresh"
	Expiry time.Time
}

// TokenService issues and validates the signed session tokens that are the
// single source of truth for authentication state.
type TokenService interface {
	// GenerateTokens creates a new access/refresh token pair for a user.
	GenerateTokens(userID uuid.UUID) (accessToken string, refreshToken string, err error)

	// ValidateAccessToken verifies an access token's signature and expiry.
	ValidateAccessToken(tokenString string) (*SessionClaims, error)

	// ValidateRefreshToken verifies a refresh token's signature and expiry.
	ValidateRefreshToken(tokenString string) (*SessionClaims, error)

	// AccessTokenDuration returns the configured access token lifetime.
	AccessTokenDuration() time.Duration

	// RefreshTokenDuration returns the configured refresh token lifetime.
	RefreshTokenDuration() time.Duration

	// HashToken returns the hash under which a raw refresh token is stored.
	HashToken(raw string) string
}
