package service

import (
	"context"
	"errors"

	"github.com/ochen1/immich/internal/auth/models"
	pkgerrors "github.com/ochen1/immich/pkg/domain-errors"
	"github.com/ochen1/immich/pkg/sentinel"
)

// Deliberately identical for unknown email, passwordless account, and wrong
// password, so responses don't reveal which accounts exist.
const msgBadCredentials = "Incorrect email or password"

// Login verifies an email/password pair and mints a password-tagged session.
func (s *Service) Login(ctx context.Context, creds models.LoginCredentials, details models.LoginDetails) (*models.LoginResult, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	cfg, err := s.config.Get(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to load system config")
	}
	if !cfg.PasswordLogin.Enabled {
		s.logAuthFailure(ctx, "password", "password login disabled")
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Password login has been disabled")
	}

	user, err := s.users.FindByEmail(ctx, creds.Email, true)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.logAuthFailure(ctx, "password", "unknown email")
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, msgBadCredentials)
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to look up user")
	}
	if !user.HasPassword() {
		s.logAuthFailure(ctx, "password", "account has no password credential")
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, msgBadCredentials)
	}
	if !s.hasher.Compare(creds.Password, user.PasswordHash) {
		s.logAuthFailure(ctx, "password", "password mismatch")
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, msgBadCredentials)
	}

	return s.createSession(ctx, user, models.AuthTypePassword, details)
}

// ChangePassword re-verifies the current password, then stores a fresh hash
// and clears any pending must-change flag.
func (s *Service) ChangePassword(ctx context.Context, authUser *models.AuthUser, dto *models.ChangePasswordDto) (*models.User, error) {
	if authUser == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user context")
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, authUser.Email, true)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, msgBadCredentials)
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to look up user")
	}
	if !user.HasPassword() || !s.hasher.Compare(dto.Password, user.PasswordHash) {
		s.logAuthFailure(ctx, "password", "current password mismatch on change")
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, msgBadCredentials)
	}

	hash, err := s.hasher.Hash(dto.NewPassword)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	user.ShouldChangePassword = false

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to persist new password")
	}

	s.logAudit(ctx, "password_changed", updated)
	if s.metrics != nil {
		s.metrics.IncrementPasswordChanges()
	}
	updated.PasswordHash = ""
	return updated, nil
}

// createSession issues the session token and the matching cookie pair.
// Shared by password and federated login.
func (s *Service) createSession(ctx context.Context, user *models.User, authType models.AuthType, details models.LoginDetails) (*models.LoginResult, error) {
	tok, err := s.tokens.Issue(user, authType)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to issue session token")
	}

	s.logLogin(ctx, user, authType, details)
	if s.metrics != nil {
		s.metrics.IncrementLogin(string(authType))
	}

	return &models.LoginResult{
		Response: models.NewLoginResponse(user, tok),
		Cookies:  models.LoginCookies(tok, authType, details.IsSecure, s.tokens.TTL()),
	}, nil
}
