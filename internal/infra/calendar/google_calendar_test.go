package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"daysoff/config"
	"daysoff/internal/domain/entity"
	"daysoff/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(tokenURL string) *GoogleCalendar {
	cfg := &config.Config{
		GoogleCalendar: &config.GoogleCalendarConfig{
			ClientID:     "calendar-client",
			ClientSecret: "calendar-secret",
			RedirectURI:  "https://app.example.com/calendar/auth/callback",
			TokenURL:     tokenURL,
		},
	}

	return NewGoogleCalendar(cfg).(*GoogleCalendar)
}

func TestBuildAuthorizationURL_RequestsOfflineAccess(t *testing.T) {
	provider := newTestProvider("")

	raw := provider.BuildAuthorizationURL("state-123")

	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	query := parsed.Query()
	assert.Equal(t, "calendar-client", query.Get("client_id"))
	assert.Equal(t, "offline", query.Get("access_type"))
	assert.Equal(t, "consent", query.Get("prompt"))
	assert.Equal(t, "state-123", query.Get("state"))
	assert.Contains(t, query.Get("scope"), "calendar.events")
}

func TestExchangeCode_StoresAbsoluteExpiry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.Form.Get("grant_type"))
		assert.Equal(t, "the-code", r.Form.Get("code"))
		assert.Equal(t, "calendar-client", r.Form.Get("client_id"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-abc",
			"refresh_token": "refresh-abc",
			"expires_in":    3600,
			"scope":         "https://www.googleapis.com/auth/calendar.events",
			"token_type":    "Bearer",
		})
	}))
	defer server.Close()

	provider := newTestProvider(server.URL)

	before := time.Now()
	token, err := provider.ExchangeCode(context.Background(), "the-code")
	require.NoError(t, err)

	assert.Equal(t, "access-abc", token.AccessToken)
	assert.Equal(t, "refresh-abc", token.RefreshToken)
	assert.Equal(t, entity.ProviderTypeGoogle, token.Provider)

	// Expiry must be an absolute instant roughly one hour out.
	assert.WithinDuration(t, before.Add(time.Hour), token.ExpiresAt, 5*time.Second)
}

func TestExchangeCode_MissingRefreshToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access-abc",
			"expires_in":   3600,
		})
	}))
	defer server.Close()

	provider := newTestProvider(server.URL)

	_, err := provider.ExchangeCode(context.Background(), "the-code")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refresh token")
}

func TestExchangeCode_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	provider := newTestProvider(server.URL)

	_, err := provider.ExchangeCode(context.Background(), "bad-code")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestRefresh_KeepsStoredRefreshToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		assert.Equal(t, "refresh-old", r.Form.Get("refresh_token"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access-new",
			"expires_in":   3600,
		})
	}))
	defer server.Close()

	provider := newTestProvider(server.URL)

	stored := &entity.CalendarToken{
		Provider:     entity.ProviderTypeGoogle,
		AccessToken:  "access-old",
		RefreshToken: "refresh-old",
		ExpiresAt:    time.Now().Add(-time.Minute),
	}

	refreshed, err := provider.Refresh(context.Background(), stored)
	require.NoError(t, err)

	assert.Equal(t, "access-new", refreshed.AccessToken)
	// The provider omitted a rotated refresh token, so the old one survives.
	assert.Equal(t, "refresh-old", refreshed.RefreshToken)
	assert.True(t, refreshed.ExpiresAt.After(time.Now()))
}

func TestInsertEvent_ReturnsProviderEventID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var event struct {
			Summary string `json:"summary"`
			Start   struct {
				Date string `json:"date"`
			} `json:"start"`
			End struct {
				Date string `json:"date"`
			} `json:"end"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&event))
		assert.Equal(t, "Vacation", event.Summary)
		assert.Equal(t, "2026-07-06", event.Start.Date)
		// All-day end dates are exclusive.
		assert.Equal(t, "2026-07-11", event.End.Date)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"id": "evt-42"})
	}))
	defer server.Close()

	provider := newTestProvider("")
	provider.apiEndpoint = server.URL

	token := &entity.CalendarToken{AccessToken: "access-abc"}
	event := &service.CalendarEvent{
		Summary:   "Vacation",
		StartDate: time.Date(2026, 7, 6, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC),
	}

	id, err := provider.InsertEvent(context.Background(), token, event)
	require.NoError(t, err)
	assert.Equal(t, "evt-42", id)
}
