package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ochen1/immich/internal/auth/token"
	dErrors "github.com/ochen1/immich/pkg/domain-errors"
	"github.com/ochen1/immich/pkg/sentinel"
)

func (s *ServiceSuite) TestValidate() {
	s.T().Run("happy path - resolves live account", func(t *testing.T) {
		user := s.newTestUser()
		s.mockTokens.EXPECT().Parse("good.jwt").Return(&token.Claims{
			UserID: user.ID.String(),
			Email:  user.Email,
		}, nil)
		s.mockUsers.EXPECT().FindByID(gomock.Any(), user.ID).Return(user, nil)

		authUser, err := s.service.Validate(context.Background(), "good.jwt")
		require.NoError(s.T(), err)
		assert.Equal(s.T(), user.ID, authUser.ID)
		assert.Equal(s.T(), user.Email, authUser.Email)
	})

	s.T().Run("parse failure propagates", func(t *testing.T) {
		s.mockTokens.EXPECT().Parse("bad.jwt").
			Return(nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid user token"))

		_, err := s.service.Validate(context.Background(), "bad.jwt")
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.T().Run("deleted user rejected like a bad token", func(t *testing.T) {
		user := s.newTestUser()
		s.mockTokens.EXPECT().Parse("stale.jwt").Return(&token.Claims{UserID: user.ID.String()}, nil)
		s.mockUsers.EXPECT().FindByID(gomock.Any(), user.ID).Return(nil, sentinel.ErrNotFound)

		_, err := s.service.Validate(context.Background(), "stale.jwt")
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.T().Run("garbage subject rejected", func(t *testing.T) {
		s.mockTokens.EXPECT().Parse("odd.jwt").Return(&token.Claims{UserID: "not-a-uuid"}, nil)

		_, err := s.service.Validate(context.Background(), "odd.jwt")
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *ServiceSuite) TestValidateSocket() {
	s.T().Run("bearer header authenticates handshake", func(t *testing.T) {
		user := s.newTestUser()
		s.mockTokens.EXPECT().Parse("socket.jwt").Return(&token.Claims{UserID: user.ID.String()}, nil)
		s.mockUsers.EXPECT().FindByID(gomock.Any(), user.ID).Return(user, nil)

		header := http.Header{}
		header.Set("Authorization", "Bearer socket.jwt")
		authUser, err := s.service.ValidateSocket(context.Background(), header)
		require.NoError(s.T(), err)
		assert.Equal(s.T(), user.ID, authUser.ID)
	})

	s.T().Run("missing header rejected", func(t *testing.T) {
		_, err := s.service.ValidateSocket(context.Background(), http.Header{})
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.T().Run("basic scheme rejected", func(t *testing.T) {
		header := http.Header{}
		header.Set("Authorization", "Basic dXNlcjpwYXNz")
		_, err := s.service.ValidateSocket(context.Background(), header)
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
