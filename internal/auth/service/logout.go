package service

import (
	"context"

	"github.com/ochen1/immich/internal/auth/models"
)

// Logout resolves the post-logout redirect for a session. OAuth sessions go
// to the provider's end-session endpoint when it advertises one; everything
// else, including any lookup failure, falls back to the login page. Logout
// never fails.
func (s *Service) Logout(ctx context.Context, authType models.AuthType) *models.LogoutResponse {
	redirect := models.DefaultLogoutRedirect

	if authType == models.AuthTypeOAuth && s.idp != nil {
		cfg, err := s.config.Get(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to load system config during logout", "error", err)
		} else if cfg.OAuth.Enabled {
			if endpoint := s.idp.EndSessionEndpoint(ctx, cfg.OAuth); endpoint != "" {
				redirect = endpoint
			}
		}
	}

	return &models.LogoutResponse{
		Successful:  true,
		RedirectURI: redirect,
	}
}
