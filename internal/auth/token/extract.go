package token

import (
	"net/http"
	"strings"

	"github.com/ochen1/immich/internal/auth/models"
)

const bearerPrefix = "Bearer "

// FromCookies returns the access token from the recognized cookie name, or ""
// when the map is nil, empty, or the key is absent.
func FromCookies(cookies map[string]string) string {
	if len(cookies) == 0 {
		return ""
	}
	return cookies[models.CookieAccessToken]
}

// FromAuthHeader returns the bearer token from an Authorization header value.
// The scheme must be exactly "Bearer"; other schemes (e.g. "Basic") and a
// missing header yield "".
func FromAuthHeader(authorization string) string {
	after, ok := strings.CutPrefix(authorization, bearerPrefix)
	if !ok || after == "" {
		return ""
	}
	return after
}

// FromRequest extracts a session token from an HTTP request, preferring the
// access-token cookie and falling back to the Authorization header.
func FromRequest(r *http.Request) string {
	if c, err := r.Cookie(models.CookieAccessToken); err == nil && c.Value != "" {
		return c.Value
	}
	return FromAuthHeader(r.Header.Get("Authorization"))
}
