// Package repository defines the persistence contracts the domain depends on.
package repository

import (
	"context"

	"daysoff/internal/domain/entity"
	"daysoff/internal/errors"

	"github.com/google/uuid"
)

// Sentinel errors returned by user lookups.
var (
	ErrUserNotFound = errors.New("user not found")
)

// UserRepository is the persistence contract for User entities.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByProviderSubject(ctx context.Context, subject string) (*entity.User, error)

	// Upsert creates the user when no row exists for its provider subject and
	// otherwise leaves the stored settings untouched, refreshing only the
	// identity fields (email, name). It is the idempotent ensure-user step of
	// the sign-in callback.
	Upsert(ctx context.Context, user *entity.User) error

	Update(ctx context.Context, user *entity.User) error
}
