package middleware

// Cookie names shared between the gate, the API auth middleware and the
// auth/calendar handlers.
const (
	// CookieSession carries the access token for browser sessions (httpOnly).
	CookieSession = "daysoff_session"

	// CookieRefresh carries the refresh token, scoped to the auth routes.
	CookieRefresh = "daysoff_refresh"

	// CookieRedirectCount is the short-lived redirect-loop counter.
	CookieRedirectCount = "daysoff_redirects"

	// CookieSignInReturn holds the page to return to after the sign-in
	// round trip to the identity provider.
	CookieSignInReturn = "daysoff_signin_return"

	// CookieCalendarReturn holds the page to return to after the calendar
	// authorization round trip.
	CookieCalendarReturn = "daysoff_calendar_return"
)

// AuthSuccessParam is the one-time query marker appended to the redirect
// after a completed sign-in. The gate strips it and passes the request
// through without forcing another redirect.
const AuthSuccessParam = "auth_success"
