package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"daysoff/config"
	"daysoff/internal/delivery/http/metrics"
	"daysoff/internal/usecase"

	"github.com/labstack/echo/v4"
)

// AuthGate guards the browser-facing page routes. For each gated request it
// runs the verified-user check against the session cookie and produces one of
// pass-through, redirect-to-signin or redirect-to-dashboard.
//
// Two mechanisms keep redirects from cycling. The primary one is stateless: a
// request carrying the one-time auth_success marker is never redirected, so
// the hop immediately after a completed sign-in always lands. Behind it sits
// a bounded counter cookie as a backstop for any loop the marker rule does
// not cover; past the threshold the gate logs a warning and lets the request
// through instead of redirecting again.
type AuthGate struct {
	auth    usecase.AuthUsecase
	cfg     *config.AuthGateConfig
	logger  *slog.Logger
	metrics *metrics.Collector
}

// NewAuthGate is the constructor for AuthGate.
func NewAuthGate(auth usecase.AuthUsecase, cfg *config.Config, logger *slog.Logger, collector *metrics.Collector) *AuthGate {
	return &AuthGate{
		auth:    auth,
		cfg:     cfg.AuthGate,
		logger:  logger,
		metrics: collector,
	}
}

// Process evaluates one request.
func (g *AuthGate) Process(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Request().URL.Path
		if g.skipped(path) {
			return next(c)
		}

		// Stateless loop break: a request arriving straight from the sign-in
		// callback carries the marker exactly once. Strip it and pass through
		// without re-checking, the session cookie may not be readable yet.
		if c.QueryParam(AuthSuccessParam) != "" {
			g.stripMarker(c)
			g.clearCounter(c)
			g.metrics.RecordGateDecision(metrics.GateDecisionMarkerPass)

			return next(c)
		}

		authenticated := g.verifySession(c)

		if authenticated {
			g.clearCounter(c)

			if g.publicOnly(path) {
				g.metrics.RecordGateDecision(metrics.GateDecisionRedirectDashboard)

				return c.Redirect(http.StatusTemporaryRedirect, g.cfg.DashboardPath)
			}

			g.metrics.RecordGateDecision(metrics.GateDecisionPass)

			return next(c)
		}

		if g.publicOnly(path) {
			g.metrics.RecordGateDecision(metrics.GateDecisionPass)

			return next(c)
		}

		// Unauthenticated on a protected path. Check the counter before
		// redirecting again: past the threshold the gate gives up and lets
		// the request through rather than looping.
		count := g.readCounter(c)
		if count >= g.cfg.RedirectThreshold {
			g.logger.Warn("Redirect threshold reached, passing request through",
				slog.String("path", path),
				slog.Int("count", count),
			)
			g.clearCounter(c)
			g.metrics.RecordGateDecision(metrics.GateDecisionLoopBreach)

			return next(c)
		}
		g.writeCounter(c, count+1)
		g.metrics.RecordGateDecision(metrics.GateDecisionRedirectSignIn)

		query := url.Values{}
		query.Set("callbackUrl", path)

		return c.Redirect(http.StatusTemporaryRedirect, g.cfg.SignInPath+"?"+query.Encode())
	}
}

// skipped reports paths the gate never evaluates: API routes carry their own
// auth middleware, auth and calendar-auth routes must stay reachable to sign
// in at all, and static assets and operational endpoints have no session.
func (g *AuthGate) skipped(path string) bool {
	// The sign-in page is the one auth route the gate does evaluate, so a
	// signed-in visitor lands on the dashboard instead.
	if path == g.cfg.SignInPath {
		return false
	}

	for _, prefix := range []string{"/auth/", "/api/", "/calendar/auth/", "/static/", "/assets/"} {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	switch path {
	case "/healthz", "/metrics", "/favicon.ico":
		return true
	}

	return false
}

// publicOnly reports paths that a signed-in user has no business visiting.
func (g *AuthGate) publicOnly(path string) bool {
	return path == "/" || path == g.cfg.SignInPath
}

// verifySession runs the full verified-user check on the session cookie. Any
// failure is logged and treated as no session.
func (g *AuthGate) verifySession(c echo.Context) bool {
	cookie, err := c.Cookie(CookieSession)
	if err != nil || cookie.Value == "" {
		return false
	}

	if _, err := g.auth.VerifyUser(c.Request().Context(), cookie.Value); err != nil {
		g.logger.Debug("Session verification failed",
			slog.String("path", c.Request().URL.Path),
			slog.Any("error", err),
		)

		return false
	}

	return true
}

// stripMarker removes the one-time marker from the request URL so handlers
// and logs never see it.
func (g *AuthGate) stripMarker(c echo.Context) {
	reqURL := c.Request().URL
	query := reqURL.Query()
	query.Del(AuthSuccessParam)
	reqURL.RawQuery = query.Encode()
}

func (g *AuthGate) readCounter(c echo.Context) int {
	cookie, err := c.Cookie(CookieRedirectCount)
	if err != nil {
		return 0
	}

	count, err := strconv.Atoi(cookie.Value)
	if err != nil || count < 0 {
		return 0
	}

	return count
}

func (g *AuthGate) writeCounter(c echo.Context, count int) {
	c.SetCookie(&http.Cookie{
		Name:     CookieRedirectCount,
		Value:    strconv.Itoa(count),
		Path:     "/",
		MaxAge:   int(g.cfg.CounterTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (g *AuthGate) clearCounter(c echo.Context) {
	// Only emit the deletion cookie when the client actually sent one.
	if _, err := c.Cookie(CookieRedirectCount); err != nil {
		return
	}

	c.SetCookie(&http.Cookie{
		Name:     CookieRedirectCount,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
