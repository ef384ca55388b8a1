package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ochen1/immich/internal/auth/models"
	dErrors "github.com/ochen1/immich/pkg/domain-errors"
	"github.com/ochen1/immich/pkg/sentinel"
)

func (s *ServiceSuite) TestAdminSignUp() {
	dto := &models.SignUpDto{
		Email:     "admin@example.com",
		Password:  "bootstrap password",
		FirstName: "First",
		LastName:  "Admin",
	}

	s.T().Run("happy path - first user becomes admin", func(t *testing.T) {
		s.mockUsers.EXPECT().FindAdmin(gomock.Any()).Return(nil, sentinel.ErrNotFound)
		s.mockHasher.EXPECT().Hash(dto.Password).Return("$2a$10$hash", nil)
		s.mockUsers.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, u *models.User) (*models.User, error) {
				assert.True(t, u.IsAdmin)
				assert.Equal(t, "$2a$10$hash", u.PasswordHash)
				created := *u
				created.ID = s.newTestUser().ID
				return &created, nil
			})

		resp, err := s.service.AdminSignUp(context.Background(), dto)
		require.NoError(s.T(), err)
		assert.Equal(s.T(), dto.Email, resp.Email)
		assert.NotEmpty(s.T(), resp.ID)
	})

	s.T().Run("admin already exists", func(t *testing.T) {
		s.mockUsers.EXPECT().FindAdmin(gomock.Any()).Return(s.newTestUser(), nil)

		resp, err := s.service.AdminSignUp(context.Background(), dto)
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeBadRequest))
		assert.Nil(s.T(), resp)
	})

	s.T().Run("lost creation race", func(t *testing.T) {
		s.mockUsers.EXPECT().FindAdmin(gomock.Any()).Return(nil, sentinel.ErrNotFound)
		s.mockHasher.EXPECT().Hash(dto.Password).Return("$2a$10$hash", nil)
		s.mockUsers.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrAlreadyExists)

		_, err := s.service.AdminSignUp(context.Background(), dto)
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.T().Run("invalid email", func(t *testing.T) {
		bad := *dto
		bad.Email = "not-an-email"
		_, err := s.service.AdminSignUp(context.Background(), &bad)
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.T().Run("admin lookup failure", func(t *testing.T) {
		s.mockUsers.EXPECT().FindAdmin(gomock.Any()).Return(nil, assert.AnError)

		_, err := s.service.AdminSignUp(context.Background(), dto)
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeInternal))
	})
}
