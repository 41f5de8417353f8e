package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"daysoff/config"
	"daysoff/internal/delivery/http/metrics"
	"daysoff/internal/domain/entity"
	domainerrors "daysoff/internal/domain/errors"
	"daysoff/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gateAuthStub implements usecase.AuthUsecase with a fixed verification
// answer keyed by token value.
type gateAuthStub struct {
	validTokens map[string]*entity.User
}

func (s *gateAuthStub) VerifyUser(_ context.Context, accessToken string) (*entity.User, error) {
	if user, ok := s.validTokens[accessToken]; ok {
		return user, nil
	}

	return nil, domainerrors.ErrUnauthenticated
}

func (s *gateAuthStub) BuildSignInURL(context.Context) (*usecase.SignInURLOutput, error) {
	return &usecase.SignInURLOutput{}, nil
}

func (s *gateAuthStub) HandleCallback(context.Context, usecase.HandleCallbackInput) (*usecase.SessionOutput, error) {
	return nil, nil
}

func (s *gateAuthStub) RefreshSession(context.Context, string) (*usecase.SessionOutput, error) {
	return nil, nil
}

func (s *gateAuthStub) SignOut(context.Context, string) error { return nil }

func newTestGate(t *testing.T, threshold int) (*AuthGate, *gateAuthStub) {
	t.Helper()

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.AuthGate.RedirectThreshold = threshold
	cfg.AuthGate.CounterTTL = 30 * time.Second

	stub := &gateAuthStub{
		validTokens: map[string]*entity.User{
			"valid-token": {ID: uuid.New(), Email: "ada@example.com"},
		},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	collector := metrics.NewCollector(prometheus.NewRegistry())

	return NewAuthGate(stub, cfg, logger, collector), stub
}

// perform runs one request through the gate in front of a plain 200 handler.
func perform(gate *AuthGate, req *http.Request) *httptest.ResponseRecorder {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := gate.Process(func(c echo.Context) error {
		return c.String(http.StatusOK, "page "+c.Request().URL.RawQuery)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}

	return rec
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}

	return nil
}

func TestAuthGate_RedirectsUnauthenticatedToSignIn(t *testing.T) {
	gate, _ := newTestGate(t, 3)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := perform(gate, req)

	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)

	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/auth/signin", location.Path)
	assert.Equal(t, "/dashboard", location.Query().Get("callbackUrl"))

	counter := responseCookie(rec, CookieRedirectCount)
	require.NotNil(t, counter)
	assert.Equal(t, "1", counter.Value)
}

func TestAuthGate_SessionCheckErrorTreatedAsNoSession(t *testing.T) {
	gate, _ := newTestGate(t, 3)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: CookieSession, Value: "expired-token"})
	rec := perform(gate, req)

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
}

func TestAuthGate_AuthenticatedOnPublicPathRedirectsToDashboard(t *testing.T) {
	gate, _ := newTestGate(t, 3)

	for _, path := range []string{"/", "/auth/signin"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.AddCookie(&http.Cookie{Name: CookieSession, Value: "valid-token"})
		rec := perform(gate, req)

		require.Equal(t, http.StatusTemporaryRedirect, rec.Code, path)
		assert.Equal(t, "/dashboard", rec.Header().Get("Location"), path)
	}
}

func TestAuthGate_AuthenticatedOnProtectedPathPassesAndResetsCounter(t *testing.T) {
	gate, _ := newTestGate(t, 3)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: CookieSession, Value: "valid-token"})
	req.AddCookie(&http.Cookie{Name: CookieRedirectCount, Value: "2"})
	rec := perform(gate, req)

	require.Equal(t, http.StatusOK, rec.Code)

	counter := responseCookie(rec, CookieRedirectCount)
	require.NotNil(t, counter)
	assert.Negative(t, counter.MaxAge)
}

func TestAuthGate_UnauthenticatedOnPublicPathPassesThrough(t *testing.T) {
	gate, _ := newTestGate(t, 3)

	rec := perform(gate, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthGate_SkipsUnguardedPaths(t *testing.T) {
	gate, _ := newTestGate(t, 3)

	for _, path := range []string{"/api/vacations", "/auth/callback", "/healthz", "/metrics", "/static/app.js", "/favicon.ico"} {
		rec := perform(gate, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestAuthGate_ThresholdForcesPassThrough(t *testing.T) {
	gate, _ := newTestGate(t, 3)

	// Four consecutive requests with the counter cookie carried forward:
	// three redirects, then pass-through instead of a fourth redirect.
	var counter *http.Cookie
	for attempt := 1; attempt <= 4; attempt++ {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		if counter != nil {
			req.AddCookie(&http.Cookie{Name: counter.Name, Value: counter.Value})
		}
		rec := perform(gate, req)

		if attempt <= 3 {
			require.Equal(t, http.StatusTemporaryRedirect, rec.Code, "attempt %d", attempt)
		} else {
			require.Equal(t, http.StatusOK, rec.Code, "attempt %d", attempt)
		}

		if cookie := responseCookie(rec, CookieRedirectCount); cookie != nil {
			counter = cookie
		}
	}

	// The breach also reset the counter.
	assert.Negative(t, counter.MaxAge)
}

func TestAuthGate_AuthSuccessMarkerPassesThroughOnce(t *testing.T) {
	gate, _ := newTestGate(t, 3)

	// The hop straight after the sign-in callback carries the marker and is
	// never redirected, even before the session cookie is readable.
	req := httptest.NewRequest(http.MethodGet, "/dashboard?auth_success=true", nil)
	rec := perform(gate, req)

	require.Equal(t, http.StatusOK, rec.Code)
	// The marker is stripped before the handler runs.
	assert.NotContains(t, rec.Body.String(), "auth_success")

	// Without the marker the next unauthenticated request redirects again.
	rec = perform(gate, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
}

func TestAuthGate_SignInFlowPreservesCallback(t *testing.T) {
	gate, _ := newTestGate(t, 3)

	// Unauthenticated request to a protected page lands on sign-in with the
	// original path preserved.
	rec := perform(gate, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)

	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "/dashboard", location.Query().Get("callbackUrl"))

	// After the exchange the callback redirects to the preserved target with
	// the one-time marker; that request passes the gate without another
	// redirect.
	target := location.Query().Get("callbackUrl") + "?" + AuthSuccessParam + "=true"
	rec = perform(gate, httptest.NewRequest(http.MethodGet, target, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
