// Package calendar implements the external calendar collaborator against
// Google Calendar: authorization-code grant, token refresh and event
// insertion.
package calendar

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"daysoff/config"
	"daysoff/internal/domain/entity"
	"daysoff/internal/domain/service"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	gcalendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const (
	defaultAuthURL  = "https://accounts.google.com/o/oauth2/v2/auth"
	defaultTokenURL = "https://oauth2.googleapis.com/token"

	defaultCalendarID = "primary"

	// calendarScope grants write access to the user's calendars.
	calendarScope = "https://www.googleapis.com/auth/calendar.events"

	// dateLayout is the all-day event date format used by the provider.
	dateLayout = "2006-01-02"
)

// GoogleCalendar implements service.CalendarProvider.
type GoogleCalendar struct {
	clientID     string
	clientSecret string
	redirectURI  string
	calendarID   string

	// Endpoint URLs, overridable through config for tests.
	authURL  string
	tokenURL string

	// apiEndpoint overrides the Calendar API base URL in tests.
	apiEndpoint string

	httpClient *http.Client
}

// NewGoogleCalendar creates the calendar provider from config.
func NewGoogleCalendar(cfg *config.Config) service.CalendarProvider {
	gc := &GoogleCalendar{
		authURL:    defaultAuthURL,
		tokenURL:   defaultTokenURL,
		calendarID: defaultCalendarID,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}

	if cc := cfg.GoogleCalendar; cc != nil {
		gc.clientID = cc.ClientID
		gc.clientSecret = cc.ClientSecret
		gc.redirectURI = cc.RedirectURI
		if cc.AuthURL != "" {
			gc.authURL = cc.AuthURL
		}
		if cc.TokenURL != "" {
			gc.tokenURL = cc.TokenURL
		}
		if cc.CalendarID != "" {
			gc.calendarID = cc.CalendarID
		}
	}

	return gc
}

// Provider returns the provider type.
func (g *GoogleCalendar) Provider() entity.ProviderType {
	return entity.ProviderTypeGoogle
}

// BuildAuthorizationURL constructs the provider's consent URL. Offline access
// is requested so a refresh token is issued.
func (g *GoogleCalendar) BuildAuthorizationURL(state string) string {
	params := url.Values{}
	params.Set("client_id", g.clientID)
	params.Set("redirect_uri", g.redirectURI)
	params.Set("scope", calendarScope)
	params.Set("response_type", "code")
	params.Set("access_type", "offline")
	params.Set("prompt", "consent")
	params.Set("state", state)

	return g.authURL + "?" + params.Encode()
}

// tokenResponse is the provider's token endpoint payload.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
	TokenType    string `json:"token_type"`
}

// ExchangeCode posts the authorization code with the client credentials and
// returns a token whose expiry is absolute.
func (g *GoogleCalendar) ExchangeCode(ctx context.Context, code string) (*entity.CalendarToken, error) {
	data := url.Values{}
	data.Set("client_id", g.clientID)
	data.Set("client_secret", g.clientSecret)
	data.Set("code", code)
	data.Set("grant_type", "authorization_code")
	data.Set("redirect_uri", g.redirectURI)

	resp, err := g.postToken(ctx, data)
	if err != nil {
		return nil, err
	}

	if resp.RefreshToken == "" {
		return nil, errors.New("provider did not return a refresh token")
	}

	return &entity.CalendarToken{
		Provider:     entity.ProviderTypeGoogle,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		// The provider returns a relative lifetime; store the absolute expiry.
		ExpiresAt: time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
		Scope:     resp.Scope,
	}, nil
}

// Refresh obtains a new access token. Google does not rotate refresh tokens
// on refresh, so the stored one is carried over.
func (g *GoogleCalendar) Refresh(ctx context.Context, token *entity.CalendarToken) (*entity.CalendarToken, error) {
	data := url.Values{}
	data.Set("client_id", g.clientID)
	data.Set("client_secret", g.clientSecret)
	data.Set("refresh_token", token.RefreshToken)
	data.Set("grant_type", "refresh_token")

	resp, err := g.postToken(ctx, data)
	if err != nil {
		return nil, err
	}

	refreshed := *token
	refreshed.AccessToken = resp.AccessToken
	refreshed.ExpiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	if resp.RefreshToken != "" {
		refreshed.RefreshToken = resp.RefreshToken
	}
	if resp.Scope != "" {
		refreshed.Scope = resp.Scope
	}

	return &refreshed, nil
}

// InsertEvent writes an all-day event spanning the booking's date range and
// returns the provider's event id.
func (g *GoogleCalendar) InsertEvent(ctx context.Context, token *entity.CalendarToken, event *service.CalendarEvent) (string, error) {
	opts := []option.ClientOption{
		option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token.AccessToken})),
	}
	if g.apiEndpoint != "" {
		opts = append(opts, option.WithEndpoint(g.apiEndpoint))
	}

	svc, err := gcalendar.NewService(ctx, opts...)
	if err != nil {
		return "", errors.Wrap(err, "failed to create calendar client")
	}

	gcEvent := &gcalendar.Event{
		Summary:     event.Summary,
		Description: event.Description,
		Start: &gcalendar.EventDateTime{
			Date: event.StartDate.Format(dateLayout),
		},
		End: &gcalendar.EventDateTime{
			// All-day end dates are exclusive in the provider's API.
			Date: event.EndDate.AddDate(0, 0, 1).Format(dateLayout),
		},
		Transparency: "transparent",
	}

	created, err := svc.Events.Insert(g.calendarID, gcEvent).Context(ctx).Do()
	if err != nil {
		return "", errors.Wrap(err, "failed to insert calendar event")
	}

	return created.Id, nil
}

func (g *GoogleCalendar) postToken(ctx context.Context, data url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "token request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)

		return nil, errors.Errorf("token endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errors.Wrap(err, "failed to decode token response")
	}
	if parsed.AccessToken == "" {
		return nil, errors.New("token response is missing the access token")
	}

	return &parsed, nil
}
