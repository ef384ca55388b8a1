package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ochen1/immich/internal/auth/models"
	"github.com/ochen1/immich/internal/auth/oidc"
	dErrors "github.com/ochen1/immich/pkg/domain-errors"
	"github.com/ochen1/immich/pkg/sentinel"
)

const callbackURL = "https://photos.example.com/auth/callback?code=abc123&state=xyz"

func (s *ServiceSuite) expectCallbackExchange(profile *oidc.Profile) {
	s.mockConfig.EXPECT().Get(gomock.Any()).Return(s.configWith(true, true), nil)
	s.mockStates.EXPECT().Consume(gomock.Any(), "xyz", gomock.Any()).Return(&models.OAuthStateRecord{
		State:       "xyz",
		RedirectURI: "https://photos.example.com/auth/callback",
	}, nil)
	s.mockIDP.EXPECT().Exchange(gomock.Any(), gomock.Any(), "https://photos.example.com/auth/callback", "abc123").
		Return(&oidc.Tokens{RawIDToken: "raw.id.token"}, nil)
	s.mockIDP.EXPECT().Userinfo(gomock.Any(), gomock.Any(), gomock.Any()).Return(profile, nil)
}

func (s *ServiceSuite) TestOAuthAuthorizeURL() {
	dto := &models.OAuthConfigDto{RedirectURI: "https://photos.example.com/auth/callback"}

	s.T().Run("happy path - registers state and returns url", func(t *testing.T) {
		var captured string
		s.mockConfig.EXPECT().Get(gomock.Any()).Return(s.configWith(true, true), nil)
		s.mockStates.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, rec *models.OAuthStateRecord) error {
				captured = rec.State
				assert.Equal(t, dto.RedirectURI, rec.RedirectURI)
				assert.True(t, rec.ExpiresAt.After(rec.CreatedAt))
				return nil
			})
		s.mockIDP.EXPECT().AuthorizationURL(gomock.Any(), gomock.Any(), dto.RedirectURI, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ any, _ string, state string) (string, error) {
				assert.Equal(t, captured, state)
				return "https://idp.example.com/authorize?state=" + state, nil
			})

		resp, err := s.service.OAuthAuthorizeURL(context.Background(), dto)
		require.NoError(s.T(), err)
		assert.True(s.T(), resp.Enabled)
		assert.Contains(s.T(), resp.URL, captured)
		assert.Equal(s.T(), "Login with SSO", resp.ButtonText)
	})

	s.T().Run("fresh state per call", func(t *testing.T) {
		states := make(map[string]bool)
		s.mockConfig.EXPECT().Get(gomock.Any()).Return(s.configWith(true, true), nil).Times(2)
		s.mockStates.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, rec *models.OAuthStateRecord) error {
				assert.False(t, states[rec.State], "state reused")
				states[rec.State] = true
				return nil
			}).Times(2)
		s.mockIDP.EXPECT().AuthorizationURL(gomock.Any(), gomock.Any(), dto.RedirectURI, gomock.Any()).
			Return("https://idp.example.com/authorize", nil).Times(2)

		for range 2 {
			_, err := s.service.OAuthAuthorizeURL(context.Background(), dto)
			require.NoError(s.T(), err)
		}
	})

	s.T().Run("oauth disabled", func(t *testing.T) {
		s.mockConfig.EXPECT().Get(gomock.Any()).Return(s.configWith(true, false), nil)

		_, err := s.service.OAuthAuthorizeURL(context.Background(), dto)
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *ServiceSuite) TestOAuthCallbackLogin() {
	dto := &models.OAuthCallbackDto{URL: callbackURL}
	profile := &oidc.Profile{
		Subject:    "idp-subject-1",
		Email:      "user@example.com",
		GivenName:  "Jane",
		FamilyName: "Doe",
	}

	s.T().Run("happy path - known subject logs in", func(t *testing.T) {
		user := s.newTestUser()
		user.OAuthID = profile.Subject
		s.expectCallbackExchange(profile)
		s.mockUsers.EXPECT().FindByOAuthID(gomock.Any(), profile.Subject).Return(user, nil)
		s.mockTokens.EXPECT().Issue(user, models.AuthTypeOAuth).Return("oauth.jwt", nil)
		s.mockTokens.EXPECT().TTL().Return(time.Hour)

		result, err := s.service.OAuthCallbackLogin(context.Background(), dto, s.loginDetails())
		require.NoError(s.T(), err)
		assert.Equal(s.T(), "oauth.jwt", result.Response.AccessToken)
		assert.Equal(s.T(), "oauth", result.Cookies[1].Value)
	})

	s.T().Run("matching email links subject", func(t *testing.T) {
		user := s.newTestUser()
		s.expectCallbackExchange(profile)
		s.mockUsers.EXPECT().FindByOAuthID(gomock.Any(), profile.Subject).Return(nil, sentinel.ErrNotFound)
		s.mockUsers.EXPECT().FindByEmail(gomock.Any(), profile.Email, false).Return(user, nil)
		s.mockUsers.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, u *models.User) (*models.User, error) {
				assert.Equal(t, profile.Subject, u.OAuthID)
				return u, nil
			})
		s.mockTokens.EXPECT().Issue(gomock.Any(), models.AuthTypeOAuth).Return("oauth.jwt", nil)
		s.mockTokens.EXPECT().TTL().Return(time.Hour)

		_, err := s.service.OAuthCallbackLogin(context.Background(), dto, s.loginDetails())
		require.NoError(s.T(), err)
	})

	s.T().Run("unknown identity auto registers non-admin", func(t *testing.T) {
		s.expectCallbackExchange(profile)
		s.mockUsers.EXPECT().FindByOAuthID(gomock.Any(), profile.Subject).Return(nil, sentinel.ErrNotFound)
		s.mockUsers.EXPECT().FindByEmail(gomock.Any(), profile.Email, false).Return(nil, sentinel.ErrNotFound)
		s.mockUsers.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, u *models.User) (*models.User, error) {
				assert.False(t, u.IsAdmin)
				assert.Equal(t, profile.Subject, u.OAuthID)
				assert.Equal(t, profile.GivenName, u.FirstName)
				created := *u
				created.ID = s.newTestUser().ID
				return &created, nil
			})
		s.mockTokens.EXPECT().Issue(gomock.Any(), models.AuthTypeOAuth).Return("oauth.jwt", nil)
		s.mockTokens.EXPECT().TTL().Return(time.Hour)

		_, err := s.service.OAuthCallbackLogin(context.Background(), dto, s.loginDetails())
		require.NoError(s.T(), err)
	})

	s.T().Run("auto register disabled rejects unknown identity", func(t *testing.T) {
		cfg := s.configWith(true, true)
		cfg.OAuth.AutoRegister = false
		s.mockConfig.EXPECT().Get(gomock.Any()).Return(cfg, nil)
		s.mockStates.EXPECT().Consume(gomock.Any(), "xyz", gomock.Any()).Return(&models.OAuthStateRecord{State: "xyz"}, nil)
		s.mockIDP.EXPECT().Exchange(gomock.Any(), gomock.Any(), gomock.Any(), "abc123").Return(&oidc.Tokens{}, nil)
		s.mockIDP.EXPECT().Userinfo(gomock.Any(), gomock.Any(), gomock.Any()).Return(profile, nil)
		s.mockUsers.EXPECT().FindByOAuthID(gomock.Any(), profile.Subject).Return(nil, sentinel.ErrNotFound)
		s.mockUsers.EXPECT().FindByEmail(gomock.Any(), profile.Email, false).Return(nil, sentinel.ErrNotFound)

		_, err := s.service.OAuthCallbackLogin(context.Background(), dto, s.loginDetails())
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.T().Run("replayed state rejected without provider round-trip", func(t *testing.T) {
		s.mockConfig.EXPECT().Get(gomock.Any()).Return(s.configWith(true, true), nil)
		s.mockStates.EXPECT().Consume(gomock.Any(), "xyz", gomock.Any()).Return(nil, sentinel.ErrAlreadyUsed)

		_, err := s.service.OAuthCallbackLogin(context.Background(), dto, s.loginDetails())
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.T().Run("expired state rejected", func(t *testing.T) {
		s.mockConfig.EXPECT().Get(gomock.Any()).Return(s.configWith(true, true), nil)
		s.mockStates.EXPECT().Consume(gomock.Any(), "xyz", gomock.Any()).Return(nil, sentinel.ErrExpired)

		_, err := s.service.OAuthCallbackLogin(context.Background(), dto, s.loginDetails())
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.T().Run("provider error parameter short-circuits", func(t *testing.T) {
		s.mockConfig.EXPECT().Get(gomock.Any()).Return(s.configWith(true, true), nil)

		_, err := s.service.OAuthCallbackLogin(context.Background(), &models.OAuthCallbackDto{
			URL: "https://photos.example.com/auth/callback?error=access_denied",
		}, s.loginDetails())
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.T().Run("missing code rejected", func(t *testing.T) {
		s.mockConfig.EXPECT().Get(gomock.Any()).Return(s.configWith(true, true), nil)

		_, err := s.service.OAuthCallbackLogin(context.Background(), &models.OAuthCallbackDto{
			URL: "https://photos.example.com/auth/callback?state=xyz",
		}, s.loginDetails())
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.T().Run("exchange failure propagates typed error", func(t *testing.T) {
		s.mockConfig.EXPECT().Get(gomock.Any()).Return(s.configWith(true, true), nil)
		s.mockStates.EXPECT().Consume(gomock.Any(), "xyz", gomock.Any()).Return(&models.OAuthStateRecord{State: "xyz"}, nil)
		s.mockIDP.EXPECT().Exchange(gomock.Any(), gomock.Any(), gomock.Any(), "abc123").
			Return(nil, dErrors.New(dErrors.CodeUnavailable, "provider unreachable"))

		_, err := s.service.OAuthCallbackLogin(context.Background(), dto, s.loginDetails())
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeUnavailable))
	})

	s.T().Run("mobile redirect rewritten for exchange", func(t *testing.T) {
		cfg := s.configWith(true, true)
		cfg.OAuth.MobileRedirectURI = "https://photos.example.com/api/oauth/mobile-redirect"
		user := s.newTestUser()
		user.OAuthID = profile.Subject
		s.mockConfig.EXPECT().Get(gomock.Any()).Return(cfg, nil)
		s.mockStates.EXPECT().Consume(gomock.Any(), "xyz", gomock.Any()).Return(&models.OAuthStateRecord{
			State:       "xyz",
			RedirectURI: "app.immich:///oauth-callback",
		}, nil)
		s.mockIDP.EXPECT().Exchange(gomock.Any(), gomock.Any(), cfg.OAuth.MobileRedirectURI, "abc123").
			Return(&oidc.Tokens{}, nil)
		s.mockIDP.EXPECT().Userinfo(gomock.Any(), gomock.Any(), gomock.Any()).Return(profile, nil)
		s.mockUsers.EXPECT().FindByOAuthID(gomock.Any(), profile.Subject).Return(user, nil)
		s.mockTokens.EXPECT().Issue(user, models.AuthTypeOAuth).Return("oauth.jwt", nil)
		s.mockTokens.EXPECT().TTL().Return(time.Hour)

		_, err := s.service.OAuthCallbackLogin(context.Background(), dto, s.loginDetails())
		require.NoError(s.T(), err)
	})
}

func (s *ServiceSuite) TestOAuthLink() {
	dto := &models.OAuthCallbackDto{URL: callbackURL}
	profile := &oidc.Profile{Subject: "idp-subject-1", Email: "user@example.com"}

	s.T().Run("happy path - links subject to caller", func(t *testing.T) {
		user := s.newTestUser()
		s.expectCallbackExchange(profile)
		s.mockUsers.EXPECT().FindByOAuthID(gomock.Any(), profile.Subject).Return(nil, sentinel.ErrNotFound)
		s.mockUsers.EXPECT().FindByID(gomock.Any(), user.ID).Return(user, nil)
		s.mockUsers.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, u *models.User) (*models.User, error) {
				assert.Equal(t, profile.Subject, u.OAuthID)
				return u, nil
			})

		updated, err := s.service.OAuthLink(context.Background(), models.AuthUserFrom(user), dto)
		require.NoError(s.T(), err)
		assert.Equal(s.T(), profile.Subject, updated.OAuthID)
	})

	s.T().Run("subject already linked elsewhere", func(t *testing.T) {
		caller := s.newTestUser()
		other := s.newTestUser()
		other.OAuthID = profile.Subject
		s.expectCallbackExchange(profile)
		s.mockUsers.EXPECT().FindByOAuthID(gomock.Any(), profile.Subject).Return(other, nil)

		_, err := s.service.OAuthLink(context.Background(), models.AuthUserFrom(caller), dto)
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *ServiceSuite) TestOAuthUnlink() {
	s.T().Run("clears subject", func(t *testing.T) {
		user := s.newTestUser()
		user.OAuthID = "idp-subject-1"
		s.mockUsers.EXPECT().FindByID(gomock.Any(), user.ID).Return(user, nil)
		s.mockUsers.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, u *models.User) (*models.User, error) {
				assert.Empty(t, u.OAuthID)
				return u, nil
			})

		updated, err := s.service.OAuthUnlink(context.Background(), models.AuthUserFrom(user))
		require.NoError(s.T(), err)
		assert.Empty(s.T(), updated.OAuthID)
	})
}
