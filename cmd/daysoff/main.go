package main

import (
	"context"
	"log/slog"
	"os"

	"daysoff/config"
	"daysoff/internal/delivery"
	"daysoff/internal/delivery/http"
	"daysoff/internal/delivery/http/metrics"
	"daysoff/internal/delivery/http/middleware"
	"daysoff/internal/delivery/http/router/handler"
	"daysoff/internal/domain/service"
	"daysoff/internal/infra/auth"
	"daysoff/internal/infra/auth/google"
	"daysoff/internal/infra/authbus"
	"daysoff/internal/infra/calendar"
	logs "daysoff/internal/infra/log"
	"daysoff/internal/infra/persistence/postgres"
	"daysoff/internal/infra/pubsub"
	"daysoff/internal/infra/qrcode"
	"daysoff/internal/usecase"
	"daysoff/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

type authStateParams struct {
	fx.In
	fx.Lifecycle

	Tracker usecase.AuthStateUsecase
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startAuthState,
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
		metrics.NewDefaultCollector,
		pubsub.NewEventPublisher,
		authbus.NewAuthEventBus,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewTransactionManager,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewJWTService,
			google.NewOAuthService,
			calendar.NewGoogleCalendar,
			newQRCodeService,
		),
	)
}

// newQRCodeService creates a QR code service with dependency injection
func newQRCodeService(cfg *config.Config) service.QRCodeService {
	if cfg.QRCode == nil {
		// Use default values if not configured
		return qrcode.NewQRCodeService(256, "M")
	}

	return qrcode.NewQRCodeService(cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewAuthService,
			impl.NewVacationService,
			impl.NewHolidayService,
			impl.NewSettingsService,
			impl.NewCalendarService,
			impl.NewAuthStateService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthGate,
			middleware.NewAuthMiddleware,
			middleware.NewErrorMiddleware,
			middleware.NewRequestIDMiddleware,
			middleware.NewRateLimiter,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewVacationHandler,
			handler.NewHolidayHandler,
			handler.NewSettingsHandler,
			handler.NewCalendarHandler,
			handler.NewPageHandler,
			handler.NewTestHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

// startAuthState ties the session state tracker to the application lifecycle.
func startAuthState(params authStateParams) {
	params.Append(fx.Hook{
		OnStart: params.Tracker.Start,
		OnStop: func(context.Context) error {
			params.Tracker.Stop()

			return nil
		},
	})
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
