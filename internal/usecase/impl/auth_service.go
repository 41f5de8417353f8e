// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"log/slog"
	"time"

	"daysoff/config"
	deliverycontext "daysoff/internal/delivery/context"
	"daysoff/internal/domain/entity"
	domainerrors "daysoff/internal/domain/errors"
	"daysoff/internal/domain/repository"
	"daysoff/internal/domain/service"
	"daysoff/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// authService implements the AuthUsecase interface.
type authService struct {
	txManager repository.TransactionManager
	oauth     service.OAuthService
	tokens    service.TokenService
	bus       service.AuthEventBus
	defaults  config.VacationConfig
	logger    *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(
	txManager repository.TransactionManager,
	oauth service.OAuthService,
	tokens service.TokenService,
	bus service.AuthEventBus,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.AuthUsecase {
	defaults := config.VacationConfig{}
	if cfg != nil && cfg.Vacation != nil {
		defaults = *cfg.Vacation
	}

	return &authService{
		txManager: txManager,
		oauth:     oauth,
		tokens:    tokens,
		bus:       bus,
		defaults:  defaults,
		logger:    logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// BuildSignInURL returns the provider authorization URL bound to a fresh
// one-time CSRF state.
func (srv *authService) BuildSignInURL(ctx context.Context) (*usecase.SignInURLOutput, error) {
	state := uuid.New().String()
	url := srv.oauth.BuildAuthorizationURL(state)

	srv.log(ctx).Debug("Built sign-in URL", slog.String("provider", string(srv.oauth.Provider())))

	return &usecase.SignInURLOutput{URL: url, State: state}, nil
}

// HandleCallback completes the provider callback: state check, code exchange,
// idempotent user upsert, session issuance and event publication.
func (srv *authService) HandleCallback(ctx context.Context, input usecase.HandleCallbackInput) (*usecase.SessionOutput, error) {
	if input.Code == "" {
		return nil, domainerrors.ErrOAuthCodeInvalid
	}
	if !srv.oauth.ValidateState(input.State) {
		return nil, domainerrors.ErrOAuthStateInvalid
	}

	identity, err := srv.oauth.ExchangeCode(ctx, input.Code)
	if err != nil {
		srv.log(ctx).Error("OAuth code exchange failed", slog.Any("error", err))

		return nil, domainerrors.ErrOAuthFailed.WrapMessage("code exchange failed")
	}

	// Exchange succeeded but the provider returned no readable identity.
	// This is reported distinctly from an exchange failure.
	if identity == nil || identity.Subject == "" {
		srv.log(ctx).Error("OAuth exchange returned no readable identity")

		return nil, domainerrors.ErrSessionUnreadable
	}

	user := &entity.User{
		ProviderSubject: identity.Subject,
		Email:           identity.Email,
		Name:            identity.Name,
		AllowanceDays:   srv.defaults.DefaultAllowanceDays,
		Province:        srv.defaults.DefaultProvince,
		Employment:      entity.EmploymentCategory(srv.defaults.DefaultEmployment),
		WeekStart:       entity.WeekStartSunday,
	}

	var session *entity.Session
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		// Idempotent: first sign-in creates the row with defaults, later
		// sign-ins only refresh the identity fields.
		if err := repoFactory.UserRepo().Upsert(ctx, user); err != nil {
			return errors.Wrap(err, "failed to upsert user")
		}

		accessToken, refreshToken, err := srv.tokens.GenerateTokens(user.ID)
		if err != nil {
			return errors.Wrap(err, "failed to generate session tokens")
		}

		record := &entity.RefreshToken{
			UserID:    user.ID,
			TokenHash: srv.tokens.HashToken(refreshToken),
			ExpiresAt: time.Now().Add(srv.tokens.RefreshTokenDuration()),
		}
		if err := repoFactory.RefreshTokenRepo().Create(ctx, record); err != nil {
			return errors.Wrap(err, "failed to store refresh token")
		}

		session = &entity.Session{
			UserID:       user.ID,
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresAt:    time.Now().Add(srv.tokens.AccessTokenDuration()),
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Sign-in persistence failed", slog.Any("error", err))

		return nil, err
	}

	srv.bus.Publish(service.AuthEvent{
		Type:   service.AuthEventSignedIn,
		UserID: user.ID,
		At:     time.Now(),
	})
	srv.log(ctx).Info("User signed in", slog.Any("user_id", user.ID))

	return &usecase.SessionOutput{Session: session, User: user}, nil
}

// RefreshSession rotates the refresh token and issues a fresh access token.
func (srv *authService) RefreshSession(ctx context.Context, refreshToken string) (*usecase.SessionOutput, error) {
	claims, err := srv.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, domainerrors.ErrRefreshTokenInvalid
	}

	var session *entity.Session
	var user *entity.User
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		refreshRepo := repoFactory.RefreshTokenRepo()

		hash := srv.tokens.HashToken(refreshToken)
		if _, err := refreshRepo.FindByHash(ctx, hash); err != nil {
			if errors.Is(err, repository.ErrRefreshTokenNotFound) || errors.Is(err, repository.ErrRefreshTokenExpired) {
				return domainerrors.ErrRefreshTokenInvalid
			}

			return errors.Wrap(err, "failed to look up refresh token")
		}

		user, err = repoFactory.UserRepo().FindByID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrRefreshTokenInvalid
			}

			return errors.Wrap(err, "failed to find user")
		}

		// Rotate: the presented token is spent, a new pair replaces it.
		newAccess, newRefresh, err := srv.tokens.GenerateTokens(user.ID)
		if err != nil {
			return errors.Wrap(err, "failed to generate session tokens")
		}

		if err := refreshRepo.DeleteByHash(ctx, hash); err != nil {
			return errors.Wrap(err, "failed to delete spent refresh token")
		}

		record := &entity.RefreshToken{
			UserID:    user.ID,
			TokenHash: srv.tokens.HashToken(newRefresh),
			ExpiresAt: time.Now().Add(srv.tokens.RefreshTokenDuration()),
		}
		if err := refreshRepo.Create(ctx, record); err != nil {
			return errors.Wrap(err, "failed to store rotated refresh token")
		}

		session = &entity.Session{
			UserID:       user.ID,
			AccessToken:  newAccess,
			RefreshToken: newRefresh,
			ExpiresAt:    time.Now().Add(srv.tokens.AccessTokenDuration()),
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Session refresh failed", slog.Any("error", err))

		return nil, err
	}

	srv.bus.Publish(service.AuthEvent{
		Type:   service.AuthEventTokenRefreshed,
		UserID: user.ID,
		At:     time.Now(),
	})

	return &usecase.SessionOutput{Session: session, User: user}, nil
}

// SignOut invalidates the session record behind the refresh token. An
// unknown token signs out successfully; sign-out is idempotent.
func (srv *authService) SignOut(ctx context.Context, refreshToken string) error {
	claims, err := srv.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		hash := srv.tokens.HashToken(refreshToken)
		if err := repoFactory.RefreshTokenRepo().DeleteByHash(ctx, hash); err != nil {
			if errors.Is(err, repository.ErrRefreshTokenNotFound) {
				return nil
			}

			return errors.Wrap(err, "failed to delete refresh token")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Sign-out failed", slog.Any("error", err))

		return err
	}

	srv.bus.Publish(service.AuthEvent{
		Type:   service.AuthEventSignedOut,
		UserID: claims.UserID,
		At:     time.Now(),
	})
	srv.log(ctx).Info("User signed out", slog.Any("user_id", claims.UserID))

	return nil
}

// VerifyUser confirms the access token maps to an existing user row.
func (srv *authService) VerifyUser(ctx context.Context, accessToken string) (*entity.User, error) {
	claims, err := srv.tokens.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, domainerrors.ErrUnauthenticated
	}

	var user *entity.User
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		user, err = repoFactory.UserRepo().FindByID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUnauthenticated
			}

			return errors.Wrap(err, "failed to find user")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}
