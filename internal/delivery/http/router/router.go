// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"daysoff/config"
	"daysoff/internal/delivery/http/metrics"
	"daysoff/internal/delivery/http/middleware"
	"daysoff/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	Config *config.Config

	AuthHandler     *handler.AuthHandler
	VacationHandler *handler.VacationHandler
	HolidayHandler  *handler.HolidayHandler
	SettingsHandler *handler.SettingsHandler
	CalendarHandler *handler.CalendarHandler
	PageHandler     *handler.PageHandler
	TestHandler     *handler.TestHandler

	AuthGate       *middleware.AuthGate
	AuthMiddleware *middleware.AuthMiddleware
	RateLimiter    *middleware.RateLimiter
}

// router holds all the handlers that need to be registered.
type router struct {
	params RouterParams
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{params: params}
}

// RegisterRoutes sets up all the routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	p := r.params

	// The gate evaluates every request; it skips API, auth and static paths
	// itself.
	e.Use(p.AuthGate.Process)

	// Operational endpoints
	e.GET("/healthz", handler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	// Pages (gated; handlers still re-derive the identity themselves)
	e.GET("/", p.PageHandler.Home)
	e.GET("/dashboard", p.PageHandler.Dashboard, p.AuthMiddleware.Authenticate)

	// Sign-in flow, rate limited per client
	authGroup := e.Group("/auth", p.RateLimiter.Limit)
	{
		authGroup.GET("/signin", p.AuthHandler.SignInPage)
		authGroup.GET("/google", p.AuthHandler.GoogleSignIn)
		authGroup.GET("/callback", p.AuthHandler.Callback)
		authGroup.POST("/refresh", p.AuthHandler.Refresh)
		authGroup.POST("/logout", p.AuthHandler.Logout)
	}

	// Calendar authorization round trip (browser-facing redirects)
	calendarAuthGroup := e.Group("/calendar/auth", p.AuthMiddleware.Authenticate)
	{
		calendarAuthGroup.GET("/authorize", p.CalendarHandler.Authorize)
		calendarAuthGroup.GET("/callback", p.CalendarHandler.Callback)
	}

	// JSON API, session required
	apiGroup := e.Group("/api", p.AuthMiddleware.Authenticate)
	{
		apiGroup.GET("/vacations", p.VacationHandler.List)
		apiGroup.POST("/vacations", p.VacationHandler.Create)
		apiGroup.DELETE("/vacations/:id", p.VacationHandler.Delete)

		apiGroup.GET("/holidays", p.HolidayHandler.List)
		apiGroup.POST("/holidays", p.HolidayHandler.Create)

		apiGroup.GET("/user/settings", p.SettingsHandler.Get)
		apiGroup.PUT("/user/settings", p.SettingsHandler.Update)

		apiGroup.GET("/calendar/status", p.CalendarHandler.Status)
		apiGroup.POST("/calendar/sync", p.CalendarHandler.Sync)
		apiGroup.DELETE("/calendar/connection", p.CalendarHandler.Disconnect)
		apiGroup.GET("/calendar/connect/qr", p.CalendarHandler.ConnectQR)
	}

	if p.Config.TestRoutes != nil && p.Config.TestRoutes.Enabled {
		testGroup := e.Group("/test")
		{
			testGroup.GET("/public", p.TestHandler.TestPublicEndpoint)
			testGroup.GET("/auth", p.TestHandler.TestAuthMiddleware, p.AuthMiddleware.Authenticate)
		}
	}
}
