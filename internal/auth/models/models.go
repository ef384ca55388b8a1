package models

import (
	"time"

	"github.com/ochen1/immich/pkg/domain"
	"github.com/ochen1/immich/pkg/validation"
)

// This file contains pure domain models for authentication: entities
// that should not depend on transport or HTTP-specific concerns.

// AuthType tags a session token with the mechanism that produced it.
// Exactly one tag is carried per token; it selects logout behavior.
type AuthType string

const (
	AuthTypePassword AuthType = "password"
	AuthTypeOAuth    AuthType = "oauth"
)

// ParseAuthType normalizes a raw auth type string, defaulting to password.
func ParseAuthType(s string) AuthType {
	if s == string(AuthTypeOAuth) {
		return AuthTypeOAuth
	}
	return AuthTypePassword
}

// User represents a user account in the auth domain.
// This is a pure domain entity - use UserResponse for JSON responses.
// PasswordHash is populated only when the store is asked for it and must
// never leave the service layer.
type User struct {
	ID                   domain.UserID
	Email                string
	PasswordHash         string
	FirstName            string
	LastName             string
	IsAdmin              bool
	OAuthID              string
	ShouldChangePassword bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// HasPassword reports whether the record carries a stored credential.
// A password comparison is attempted only when this is true.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// AuthUser is the ephemeral identity derived from a validated session token.
// It is never persisted.
type AuthUser struct {
	ID      domain.UserID
	Email   string
	IsAdmin bool
}

// AuthUserFrom builds the public projection of a user record.
func AuthUserFrom(u *User) *AuthUser {
	return &AuthUser{
		ID:      u.ID,
		Email:   u.Email,
		IsAdmin: u.IsAdmin,
	}
}

// LoginCredentials is the transient input for a password login.
type LoginCredentials struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,notblank"`
}

func (c *LoginCredentials) Validate() error {
	return validation.Validate(c)
}

// LoginDetails carries per-request metadata the transport layer extracted.
// IsSecure mirrors whether the client connection warrants Secure cookies.
type LoginDetails struct {
	ClientIP  string
	UserAgent string
	IsSecure  bool
}

// OAuthStateRecord is a one-time nonce guarding a single federated login
// round-trip. It is consumed atomically at callback time.
type OAuthStateRecord struct {
	State       string
	RedirectURI string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	Used        bool
}
