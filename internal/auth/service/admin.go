package service

import (
	"context"
	"errors"

	"github.com/ochen1/immich/internal/auth/models"
	pkgerrors "github.com/ochen1/immich/pkg/domain-errors"
	"github.com/ochen1/immich/pkg/sentinel"
)

// AdminSignUp creates the first user of the instance as its administrator.
// It succeeds at most once: a second call, concurrent or not, fails once any
// admin exists. The store's uniqueness guarantees back the pre-check, so two
// racing requests cannot both win.
func (s *Service) AdminSignUp(ctx context.Context, dto *models.SignUpDto) (*models.AdminSignUpResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.users.FindAdmin(ctx); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, "The server already has an admin")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to look up admin")
	}

	hash, err := s.hasher.Hash(dto.Password)
	if err != nil {
		return nil, err
	}

	created, err := s.users.Create(ctx, &models.User{
		Email:        dto.Email,
		PasswordHash: hash,
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		IsAdmin:      true,
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrAlreadyExists) {
			// Lost the race, or the email is taken.
			return nil, pkgerrors.New(pkgerrors.CodeBadRequest, "The server already has an admin")
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to create admin user")
	}

	s.logAudit(ctx, "admin account created", created)
	if s.metrics != nil {
		s.metrics.IncrementUsersCreated()
	}
	return models.NewAdminSignUpResponse(created), nil
}
