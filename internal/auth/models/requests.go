package models

import (
	"net/url"

	dErrors "github.com/ochen1/immich/pkg/domain-errors"
	"github.com/ochen1/immich/pkg/validation"
)

// SignUpDto is the payload for the one-time admin bootstrap.
type SignUpDto struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,notblank"`
	FirstName string `json:"firstName" validate:"required,notblank,max=100"`
	LastName  string `json:"lastName" validate:"required,notblank,max=100"`
}

// Validate  checks structural constraints before the service applies policy.
func (r *SignUpDto) Validate() error {
	return validation.Validate(r)
}

// ChangePasswordDto carries the old and new credential for a password change.
type ChangePasswordDto struct {
	Password    string `json:"password" validate:"required,notblank"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=128"`
}

func (r *ChangePasswordDto) Validate() error {
	return validation.Validate(r)
}

// OAuthConfigDto asks for an authorization URL for the given redirect target.
type OAuthConfigDto struct {
	RedirectURI string `json:"redirectUri" validate:"required,max=2048"`
}

func (r *OAuthConfigDto) Validate() error {
	return validation.Validate(r)
}

// OAuthCallbackDto carries the full provider callback URL, including the
// code and state query parameters.
type OAuthCallbackDto struct {
	URL string `json:"url" validate:"required,max=4096"`
}

func (r *OAuthCallbackDto) Validate() error {
	if err := validation.Validate(r); err != nil {
		return err
	}
	if _, err := url.Parse(r.URL); err != nil {
		return dErrors.New(dErrors.CodeValidation, "url must be a valid url")
	}
	return nil
}

// CallbackParams are the query parameters extracted from an OAuth callback URL.
type CallbackParams struct {
	Code        string
	State       string
	RedirectURI string
	Error       string
}

// ParseCallbackURL splits a callback URL into its OAuth parameters.
// The redirect URI used for the code exchange is the callback URL with the
// query stripped, which is what was registered with the provider.
func ParseCallbackURL(raw string) (*CallbackParams, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid callback url")
	}
	q := u.Query()
	u.RawQuery = ""
	u.Fragment = ""
	return &CallbackParams{
		Code:        q.Get("code"),
		State:       q.Get("state"),
		RedirectURI: u.String(),
		Error:       q.Get("error"),
	}, nil
}
