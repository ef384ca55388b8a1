package models

import (
	"net/http"
	"time"
)

// This file contains transport-layer response models for JSON output.
// These are shaped for API responses and should avoid domain behavior.

// Cookie names recognized by the token extractor and set on login.
const (
	CookieAccessToken = "immich_access_token"
	CookieAuthType    = "immich_auth_type"
)

// DefaultLogoutRedirect is the post-logout path for password sessions and
// for OAuth sessions whose provider advertises no end-session endpoint.
const DefaultLogoutRedirect = "/auth/login?autoLaunch=0"

// LoginResponse is the response payload for a successful login.
type LoginResponse struct {
	AccessToken          string `json:"accessToken"`
	UserID               string `json:"userId"`
	UserEmail            string `json:"userEmail"`
	FirstName            string `json:"firstName"`
	LastName             string `json:"lastName"`
	IsAdmin              bool   `json:"isAdmin"`
	ShouldChangePassword bool   `json:"shouldChangePassword"`
}

// LoginResult bundles the response body with the cookie directives the
// transport layer must set. Cookies carry the issued token and auth type;
// their Secure attribute mirrors the request's transport security.
type LoginResult struct {
	Response *LoginResponse
	Cookies  []*http.Cookie
}

// AdminSignUpResponse is the public-safe projection returned by the admin
// bootstrap. It never contains a password field.
type AdminSignUpResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
}

// LogoutResponse reports where the client should navigate after logout.
// Logout always succeeds; there is no failure path.
type LogoutResponse struct {
	Successful  bool   `json:"successful"`
	RedirectURI string `json:"redirectUri"`
}

// OAuthConfigResponse carries the provider authorization URL for a fresh flow.
type OAuthConfigResponse struct {
	Enabled    bool   `json:"enabled"`
	URL        string `json:"url,omitempty"`
	ButtonText string `json:"buttonText,omitempty"`
	AutoLaunch bool   `json:"autoLaunch"`
}

// NewLoginResponse builds the login payload from a user and issued token.
func NewLoginResponse(user *User, accessToken string) *LoginResponse {
	return &LoginResponse{
		AccessToken:          accessToken,
		UserID:               user.ID.String(),
		UserEmail:            user.Email,
		FirstName:            user.FirstName,
		LastName:             user.LastName,
		IsAdmin:              user.IsAdmin,
		ShouldChangePassword: user.ShouldChangePassword,
	}
}

// NewAdminSignUpResponse builds the bootstrap projection from a created user.
func NewAdminSignUpResponse(user *User) *AdminSignUpResponse {
	return &AdminSignUpResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		CreatedAt: user.CreatedAt,
	}
}

// LoginCookies builds the cookie directives for an issued token. The secure
// flag mirrors the transport security of the originating request.
func LoginCookies(accessToken string, authType AuthType, secure bool, maxAge time.Duration) []*http.Cookie {
	return []*http.Cookie{
		{
			Name:     CookieAccessToken,
			Value:    accessToken,
			Path:     "/",
			MaxAge:   int(maxAge.Seconds()),
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		},
		{
			Name:     CookieAuthType,
			Value:    string(authType),
			Path:     "/",
			MaxAge:   int(maxAge.Seconds()),
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		},
	}
}

// LogoutCookies expires both auth cookies.
func LogoutCookies(secure bool) []*http.Cookie {
	return []*http.Cookie{
		{Name: CookieAccessToken, Value: "", Path: "/", MaxAge: -1, HttpOnly: true, Secure: secure, SameSite: http.SameSiteLaxMode},
		{Name: CookieAuthType, Value: "", Path: "/", MaxAge: -1, HttpOnly: true, Secure: secure, SameSite: http.SameSiteLaxMode},
	}
}
