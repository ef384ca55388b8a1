package service

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/ochen1/immich/internal/auth/models"
	"github.com/ochen1/immich/internal/auth/service/mocks"
	"github.com/ochen1/immich/internal/systemconfig"
	"github.com/ochen1/immich/pkg/domain"
)

type ServiceSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	mockUsers  *mocks.MockUserStore
	mockConfig *mocks.MockConfigStore
	mockHasher *mocks.MockPasswordHasher
	mockTokens *mocks.MockTokenManager
	mockStates *mocks.MockStateStore
	mockIDP    *mocks.MockIdentityProvider
	service    *Service
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockUsers = mocks.NewMockUserStore(s.ctrl)
	s.mockConfig = mocks.NewMockConfigStore(s.ctrl)
	s.mockHasher = mocks.NewMockPasswordHasher(s.ctrl)
	s.mockTokens = mocks.NewMockTokenManager(s.ctrl)
	s.mockStates = mocks.NewMockStateStore(s.ctrl)
	s.mockIDP = mocks.NewMockIdentityProvider(s.ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service, _ = New(
		s.mockUsers,
		s.mockConfig,
		s.mockHasher,
		s.mockTokens,
		s.mockStates,
		WithLogger(logger),
		WithIdentityProvider(s.mockIDP),
		WithStateTTL(5*time.Minute),
	)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

// Shared fixture builders.

func (s *ServiceSuite) newTestUser() *models.User {
	return &models.User{
		ID:           domain.NewUserID(),
		Email:        "user@example.com",
		PasswordHash: "$2a$10$hash",
		FirstName:    "Jane",
		LastName:     "Doe",
	}
}

func (s *ServiceSuite) configWith(passwordEnabled, oauthEnabled bool) *systemconfig.SystemConfig {
	return &systemconfig.SystemConfig{
		PasswordLogin: systemconfig.PasswordLoginConfig{Enabled: passwordEnabled},
		OAuth: systemconfig.OAuthConfig{
			Enabled:      oauthEnabled,
			IssuerURL:    "https://idp.example.com",
			ClientID:     "immich-client",
			AutoRegister: true,
			ButtonText:   "Login with SSO",
		},
	}
}

func (s *ServiceSuite) loginDetails() models.LoginDetails {
	return models.LoginDetails{
		ClientIP:  "203.0.113.7",
		UserAgent: "Mozilla/5.0 (Macintosh) Chrome/120.0",
		IsSecure:  true,
	}
}
