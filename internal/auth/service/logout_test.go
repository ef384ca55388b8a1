package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/ochen1/immich/internal/auth/models"
)

func (s *ServiceSuite) TestLogout() {
	s.T().Run("password session goes to login page", func(t *testing.T) {
		resp := s.service.Logout(context.Background(), models.AuthTypePassword)
		assert.True(s.T(), resp.Successful)
		assert.Equal(s.T(), models.DefaultLogoutRedirect, resp.RedirectURI)
	})

	s.T().Run("oauth session goes to provider end-session endpoint", func(t *testing.T) {
		s.mockConfig.EXPECT().Get(gomock.Any()).Return(s.configWith(true, true), nil)
		s.mockIDP.EXPECT().EndSessionEndpoint(gomock.Any(), gomock.Any()).
			Return("https://idp.example.com/logout")

		resp := s.service.Logout(context.Background(), models.AuthTypeOAuth)
		assert.True(s.T(), resp.Successful)
		assert.Equal(s.T(), "https://idp.example.com/logout", resp.RedirectURI)
	})

	s.T().Run("oauth session falls back when provider has no endpoint", func(t *testing.T) {
		s.mockConfig.EXPECT().Get(gomock.Any()).Return(s.configWith(true, true), nil)
		s.mockIDP.EXPECT().EndSessionEndpoint(gomock.Any(), gomock.Any()).Return("")

		resp := s.service.Logout(context.Background(), models.AuthTypeOAuth)
		assert.True(s.T(), resp.Successful)
		assert.Equal(s.T(), models.DefaultLogoutRedirect, resp.RedirectURI)
	})

	s.T().Run("oauth session with oauth disabled skips provider", func(t *testing.T) {
		s.mockConfig.EXPECT().Get(gomock.Any()).Return(s.configWith(true, false), nil)

		resp := s.service.Logout(context.Background(), models.AuthTypeOAuth)
		assert.True(s.T(), resp.Successful)
		assert.Equal(s.T(), models.DefaultLogoutRedirect, resp.RedirectURI)
	})

	s.T().Run("config failure still succeeds", func(t *testing.T) {
		s.mockConfig.EXPECT().Get(gomock.Any()).Return(nil, assert.AnError)

		resp := s.service.Logout(context.Background(), models.AuthTypeOAuth)
		assert.True(s.T(), resp.Successful)
		assert.Equal(s.T(), models.DefaultLogoutRedirect, resp.RedirectURI)
	})
}
