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

func (s *ServiceSuite) TestLogin() {
	creds := models.LoginCredentials{Email: "user@example.com", Password: "correct horse"}

	s.T().Run("happy path - issues token and cookies", func(t *testing.T) {
		user := s.newTestUser()
		s.mockConfig.EXPECT().Get(gomock.Any()).Return(s.configWith(true, false), nil)
		s.mockUsers.EXPECT().FindByEmail(gomock.Any(), creds.Email, true).Return(user, nil)
		s.mockHasher.EXPECT().Compare(creds.Password, user.PasswordHash).Return(true)
		s.mockTokens.EXPECT().Issue(user, models.AuthTypePassword).Return("signed.jwt", nil)
		s.mockTokens.EXPECT().TTL().Return(defaultStateTTL)

		result, err := s.service.Login(context.Background(), creds, s.loginDetails())
		require.NoError(s.T(), err)
		assert.Equal(s.T(), "signed.jwt", result.Response.AccessToken)
		assert.Equal(s.T(), user.ID.String(), result.Response.UserID)
		require.Len(s.T(), result.Cookies, 2)
		assert.Equal(s.T(), models.CookieAccessToken, result.Cookies[0].Name)
		assert.Equal(s.T(), "signed.jwt", result.Cookies[0].Value)
		assert.True(s.T(), result.Cookies[0].HttpOnly)
		assert.True(s.T(), result.Cookies[0].Secure)
		assert.Equal(s.T(), models.CookieAuthType, result.Cookies[1].Name)
		assert.Equal(s.T(), "password", result.Cookies[1].Value)
	})

	s.T().Run("insecure connection yields non-secure cookies", func(t *testing.T) {
		user := s.newTestUser()
		s.mockConfig.EXPECT().Get(gomock.Any()).Return(s.configWith(true, false), nil)
		s.mockUsers.EXPECT().FindByEmail(gomock.Any(), creds.Email, true).Return(user, nil)
		s.mockHasher.EXPECT().Compare(creds.Password, user.PasswordHash).Return(true)
		s.mockTokens.EXPECT().Issue(user, models.AuthTypePassword).Return("signed.jwt", nil)
		s.mockTokens.EXPECT().TTL().Return(defaultStateTTL)

		details := s.loginDetails()
		details.IsSecure = false
		result, err := s.service.Login(context.Background(), creds, details)
		require.NoError(s.T(), err)
		assert.False(s.T(), result.Cookies[0].Secure)
		assert.False(s.T(), result.Cookies[1].Secure)
	})

	s.T().Run("password login disabled", func(t *testing.T) {
		s.mockConfig.EXPECT().Get(gomock.Any()).Return(s.configWith(false, true), nil)

		result, err := s.service.Login(context.Background(), creds, s.loginDetails())
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeUnauthorized))
		assert.Nil(s.T(), result)
	})

	s.T().Run("unknown email", func(t *testing.T) {
		s.mockConfig.EXPECT().Get(gomock.Any()).Return(s.configWith(true, false), nil)
		s.mockUsers.EXPECT().FindByEmail(gomock.Any(), creds.Email, true).Return(nil, sentinel.ErrNotFound)

		_, err := s.service.Login(context.Background(), creds, s.loginDetails())
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeUnauthorized))
		assert.Contains(s.T(), err.Error(), msgBadCredentials)
	})

	s.T().Run("account without password credential", func(t *testing.T) {
		user := s.newTestUser()
		user.PasswordHash = ""
		user.OAuthID = "idp-subject"
		s.mockConfig.EXPECT().Get(gomock.Any()).Return(s.configWith(true, false), nil)
		s.mockUsers.EXPECT().FindByEmail(gomock.Any(), creds.Email, true).Return(user, nil)

		_, err := s.service.Login(context.Background(), creds, s.loginDetails())
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeUnauthorized))
		assert.Contains(s.T(), err.Error(), msgBadCredentials)
	})

	s.T().Run("wrong password is indistinguishable from unknown email", func(t *testing.T) {
		user := s.newTestUser()
		s.mockConfig.EXPECT().Get(gomock.Any()).Return(s.configWith(true, false), nil)
		s.mockUsers.EXPECT().FindByEmail(gomock.Any(), creds.Email, true).Return(user, nil)
		s.mockHasher.EXPECT().Compare(creds.Password, user.PasswordHash).Return(false)

		_, err := s.service.Login(context.Background(), creds, s.loginDetails())
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeUnauthorized))
		assert.Contains(s.T(), err.Error(), msgBadCredentials)
	})

	s.T().Run("store failure surfaces as internal", func(t *testing.T) {
		s.mockConfig.EXPECT().Get(gomock.Any()).Return(s.configWith(true, false), nil)
		s.mockUsers.EXPECT().FindByEmail(gomock.Any(), creds.Email, true).Return(nil, assert.AnError)

		_, err := s.service.Login(context.Background(), creds, s.loginDetails())
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.T().Run("malformed email rejected before any lookup", func(t *testing.T) {
		_, err := s.service.Login(context.Background(), models.LoginCredentials{Email: "nope", Password: "x"}, s.loginDetails())
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestChangePassword() {
	dto := &models.ChangePasswordDto{Password: "old password", NewPassword: "new password 1"}

	s.T().Run("happy path - rehashes and clears flag", func(t *testing.T) {
		user := s.newTestUser()
		user.ShouldChangePassword = true
		authUser := models.AuthUserFrom(user)

		s.mockUsers.EXPECT().FindByEmail(gomock.Any(), user.Email, true).Return(user, nil)
		s.mockHasher.EXPECT().Compare(dto.Password, "$2a$10$hash").Return(true)
		s.mockHasher.EXPECT().Hash(dto.NewPassword).Return("$2a$10$fresh", nil)
		s.mockUsers.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, u *models.User) (*models.User, error) {
				assert.Equal(t, "$2a$10$fresh", u.PasswordHash)
				assert.False(t, u.ShouldChangePassword)
				return u, nil
			})

		updated, err := s.service.ChangePassword(context.Background(), authUser, dto)
		require.NoError(s.T(), err)
		assert.Empty(s.T(), updated.PasswordHash)
	})

	s.T().Run("wrong current password", func(t *testing.T) {
		user := s.newTestUser()
		s.mockUsers.EXPECT().FindByEmail(gomock.Any(), user.Email, true).Return(user, nil)
		s.mockHasher.EXPECT().Compare(dto.Password, user.PasswordHash).Return(false)

		_, err := s.service.ChangePassword(context.Background(), models.AuthUserFrom(user), dto)
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.T().Run("short new password rejected", func(t *testing.T) {
		user := s.newTestUser()
		_, err := s.service.ChangePassword(context.Background(), models.AuthUserFrom(user), &models.ChangePasswordDto{
			Password:    "old password",
			NewPassword: "short",
		})
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.T().Run("missing user context", func(t *testing.T) {
		_, err := s.service.ChangePassword(context.Background(), nil, dto)
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
