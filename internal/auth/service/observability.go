package service

import (
	"context"

	"github.com/ochen1/immich/internal/auth/device"
	"github.com/ochen1/immich/internal/auth/models"
	"github.com/ochen1/immich/internal/platform/middleware"
)

// logLogin records a successful session creation with the request metadata
// the transport layer captured. Never logs credentials or tokens.
func (s *Service) logLogin(ctx context.Context, user *models.User, authType models.AuthType, details models.LoginDetails) {
	s.logger.InfoContext(ctx, "user logged in",
		"request_id", middleware.GetRequestID(ctx),
		"user_id", user.ID.String(),
		"auth_type", string(authType),
		"client_ip", details.ClientIP,
		"device", device.DisplayName(details.UserAgent),
	)
}

// logAudit records a security-relevant state change on a user account.
func (s *Service) logAudit(ctx context.Context, event string, user *models.User) {
	s.logger.InfoContext(ctx, event,
		"request_id", middleware.GetRequestID(ctx),
		"user_id", user.ID.String(),
	)
}

// logAuthFailure records a rejected authentication attempt. The reason stays
// in logs only; clients get a uniform error.
func (s *Service) logAuthFailure(ctx context.Context, method, reason string) {
	s.logger.WarnContext(ctx, "authentication failed",
		"request_id", middleware.GetRequestID(ctx),
		"method", method,
		"reason", reason,
	)
	if s.metrics != nil {
		s.metrics.IncrementAuthFailures()
	}
}
