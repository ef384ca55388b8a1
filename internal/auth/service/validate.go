package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/ochen1/immich/internal/auth/models"
	"github.com/ochen1/immich/internal/auth/token"
	"github.com/ochen1/immich/pkg/domain"
	pkgerrors "github.com/ochen1/immich/pkg/domain-errors"
	"github.com/ochen1/immich/pkg/sentinel"
)

const msgInvalidToken = "Invalid user token"

// Validate parses a session token and resolves it to a live account.
// A well-formed token whose user has since been deleted is rejected the same
// way as a bad signature.
func (s *Service) Validate(ctx context.Context, tokenString string) (*models.AuthUser, error) {
	claims, err := s.tokens.Parse(tokenString)
	if err != nil {
		return nil, err
	}

	userID, err := domain.ParseUserID(claims.UserID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, msgInvalidToken)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, msgInvalidToken)
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to look up user")
	}

	return models.AuthUserFrom(user), nil
}

// ValidateSocket authenticates a websocket handshake. Handshakes carry no
// cookies from non-browser clients, so only the Authorization header is
// consulted.
func (s *Service) ValidateSocket(ctx context.Context, header http.Header) (*models.AuthUser, error) {
	tok := token.FromAuthHeader(header.Get("Authorization"))
	if tok == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Missing bearer token")
	}
	return s.Validate(ctx, tok)
}
