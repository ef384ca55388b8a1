package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ochen1/immich/internal/auth/models"
	"github.com/ochen1/immich/internal/auth/oidc"
	"github.com/ochen1/immich/internal/systemconfig"
	pkgerrors "github.com/ochen1/immich/pkg/domain-errors"
	"github.com/ochen1/immich/pkg/secrets"
	"github.com/ochen1/immich/pkg/sentinel"
)

const msgOAuthDisabled = "OAuth is not enabled"

// mobileRedirectScheme marks redirect URIs coming from the mobile app, which
// providers often refuse to register. Those are swapped for the configured
// web proxy URI on both legs of the flow.
const mobileRedirectScheme = "app.immich:/"

// OAuthAuthorizeURL starts a federated login: it mints a one-time state,
// registers it with its redirect target, and returns the provider
// authorization URL carrying both.
func (s *Service) OAuthAuthorizeURL(ctx context.Context, dto *models.OAuthConfigDto) (*models.OAuthConfigResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	cfg, err := s.oauthEnabled(ctx)
	if err != nil {
		return nil, err
	}

	state, err := secrets.GenerateState()
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to generate oauth state")
	}

	now := time.Now()
	if err := s.states.Create(ctx, &models.OAuthStateRecord{
		State:       state,
		RedirectURI: dto.RedirectURI,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.stateTTL),
	}); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to persist oauth state")
	}

	authURL, err := s.idp.AuthorizationURL(ctx, cfg.OAuth, s.resolveRedirectURI(cfg.OAuth, dto.RedirectURI), state)
	if err != nil {
		return nil, err
	}

	return &models.OAuthConfigResponse{
		Enabled:    true,
		URL:        authURL,
		ButtonText: cfg.OAuth.ButtonText,
		AutoLaunch: cfg.OAuth.AutoLaunch,
	}, nil
}

// OAuthCallbackLogin finishes a federated login: it consumes the state,
// exchanges the code, resolves the provider identity to a local account
// (linking or auto-registering as configured), and mints an oauth session.
func (s *Service) OAuthCallbackLogin(ctx context.Context, dto *models.OAuthCallbackDto, details models.LoginDetails) (*models.LoginResult, error) {
	started := time.Now()

	cfg, profile, err := s.completeCallback(ctx, dto)
	if err != nil {
		return nil, err
	}

	user, err := s.resolveOAuthUser(ctx, cfg, profile)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ObserveOAuthCallback(float64(time.Since(started).Milliseconds()))
	}
	return s.createSession(ctx, user, models.AuthTypeOAuth, details)
}

// OAuthLink attaches the provider identity from a callback to the calling
// user's account. The subject must not already belong to someone else.
func (s *Service) OAuthLink(ctx context.Context, authUser *models.AuthUser, dto *models.OAuthCallbackDto) (*models.User, error) {
	if authUser == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user context")
	}

	_, profile, err := s.completeCallback(ctx, dto)
	if err != nil {
		return nil, err
	}

	existing, err := s.users.FindByOAuthID(ctx, profile.Subject)
	if err == nil && existing.ID != authUser.ID {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, "This account is already linked to another user")
	}
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to look up linked account")
	}

	user, err := s.users.FindByID(ctx, authUser.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to look up user")
	}
	user.OAuthID = profile.Subject

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to link account")
	}
	s.logAudit(ctx, "oauth account linked", updated)
	return updated, nil
}

// OAuthUnlink detaches any provider identity from the calling user's account.
func (s *Service) OAuthUnlink(ctx context.Context, authUser *models.AuthUser) (*models.User, error) {
	if authUser == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user context")
	}

	user, err := s.users.FindByID(ctx, authUser.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to look up user")
	}
	user.OAuthID = ""

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to unlink account")
	}
	s.logAudit(ctx, "oauth account unlinked", updated)
	return updated, nil
}

// completeCallback runs the shared callback tail: parse the URL, consume the
// state, exchange the code, and fetch the verified profile.
func (s *Service) completeCallback(ctx context.Context, dto *models.OAuthCallbackDto) (*systemconfig.SystemConfig, *oidc.Profile, error) {
	if err := dto.Validate(); err != nil {
		return nil, nil, err
	}
	cfg, err := s.oauthEnabled(ctx)
	if err != nil {
		return nil, nil, err
	}

	params, err := models.ParseCallbackURL(dto.URL)
	if err != nil {
		return nil, nil, err
	}
	if params.Error != "" {
		s.logAuthFailure(ctx, "oauth", fmt.Sprintf("provider returned error %q", params.Error))
		return nil, nil, pkgerrors.New(pkgerrors.CodeBadRequest, "OAuth provider returned an error")
	}
	if params.Code == "" || params.State == "" {
		return nil, nil, pkgerrors.New(pkgerrors.CodeBadRequest, "Missing code or state in callback url")
	}

	// One-time use: consumption is atomic in the store, so a replayed
	// callback fails here without any provider round-trip.
	record, err := s.states.Consume(ctx, params.State, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound), errors.Is(err, sentinel.ErrAlreadyUsed), errors.Is(err, sentinel.ErrExpired):
			s.logAuthFailure(ctx, "oauth", "state rejected")
			return nil, nil, pkgerrors.New(pkgerrors.CodeBadRequest, "Invalid or expired oauth state")
		default:
			return nil, nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to consume oauth state")
		}
	}

	redirectURI := s.resolveRedirectURI(cfg.OAuth, record.RedirectURI)

	tokens, err := s.idp.Exchange(ctx, cfg.OAuth, redirectURI, params.Code)
	if err != nil {
		return nil, nil, err
	}
	profile, err := s.idp.Userinfo(ctx, cfg.OAuth, tokens)
	if err != nil {
		return nil, nil, err
	}
	return cfg, profile, nil
}

// resolveOAuthUser maps a verified provider profile to a local account:
// by subject first, then by email (linking on first contact), then by
// auto-registration when the config allows it.
func (s *Service) resolveOAuthUser(ctx context.Context, cfg *systemconfig.SystemConfig, profile *oidc.Profile) (*models.User, error) {
	user, err := s.users.FindByOAuthID(ctx, profile.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to look up user")
	}

	user, err = s.users.FindByEmail(ctx, profile.Email, false)
	if err == nil {
		user.OAuthID = profile.Subject
		linked, err := s.users.Update(ctx, user)
		if err != nil {
			return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to link account")
		}
		s.logAudit(ctx, "oauth account linked", linked)
		return linked, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to look up user")
	}

	if !cfg.OAuth.AutoRegister {
		s.logAuthFailure(ctx, "oauth", "unknown identity and auto register disabled")
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, "User does not exist and auto registering is disabled")
	}

	created, err := s.users.Create(ctx, &models.User{
		Email:     profile.Email,
		FirstName: profile.GivenName,
		LastName:  profile.FamilyName,
		OAuthID:   profile.Subject,
		// Auto-registered users are never admins.
		IsAdmin: false,
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrAlreadyExists) {
			return nil, pkgerrors.New(pkgerrors.CodeBadRequest, "A user with this email already exists")
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to auto register user")
	}

	s.logAudit(ctx, "user auto registered via oauth", created)
	if s.metrics != nil {
		s.metrics.IncrementUsersCreated()
	}
	return created, nil
}

// oauthEnabled loads the config and fails unless federated login is usable.
func (s *Service) oauthEnabled(ctx context.Context) (*systemconfig.SystemConfig, error) {
	cfg, err := s.config.Get(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to load system config")
	}
	if !cfg.OAuth.Enabled || s.idp == nil {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, msgOAuthDisabled)
	}
	return cfg, nil
}

func (s *Service) resolveRedirectURI(cfg systemconfig.OAuthConfig, redirectURI string) string {
	if cfg.MobileRedirectURI != "" && strings.HasPrefix(redirectURI, mobileRedirectScheme) {
		return cfg.MobileRedirectURI
	}
	return redirectURI
}
