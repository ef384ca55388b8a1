package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ochen1/immich/internal/auth/metrics"
	"github.com/ochen1/immich/internal/auth/models"
	"github.com/ochen1/immich/internal/auth/oidc"
	"github.com/ochen1/immich/internal/auth/token"
	"github.com/ochen1/immich/internal/systemconfig"
	"github.com/ochen1/immich/pkg/domain"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks UserStore,ConfigStore,PasswordHasher,TokenManager,IdentityProvider,StateStore

// UserStore defines the persistence interface for user data.
// Error Contract: All Find methods return sentinel.ErrNotFound (wrapped) when
// the entity doesn't exist; Create returns sentinel.ErrAlreadyExists (wrapped)
// on uniqueness violations.
type UserStore interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id domain.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string, withPassword bool) (*models.User, error)
	FindByOAuthID(ctx context.Context, oauthID string) (*models.User, error)
	FindAdmin(ctx context.Context) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
}

// ConfigStore supplies the immutable SystemConfig snapshot for a request.
type ConfigStore interface {
	Get(ctx context.Context) (*systemconfig.SystemConfig, error)
}

// PasswordHasher hashes and verifies password credentials.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(plain, hash string) bool
}

// TokenManager issues and parses signed session tokens.
type TokenManager interface {
	Issue(user *models.User, authType models.AuthType) (string, error)
	Parse(tokenString string) (*token.Claims, error)
	TTL() time.Duration
}

// IdentityProvider is the narrow OIDC client contract: discovery happens
// behind it, so the concrete library stays swappable.
type IdentityProvider interface {
	AuthorizationURL(ctx context.Context, cfg systemconfig.OAuthConfig, redirectURI, state string) (string, error)
	Exchange(ctx context.Context, cfg systemconfig.OAuthConfig, redirectURI, code string) (*oidc.Tokens, error)
	Userinfo(ctx context.Context, cfg systemconfig.OAuthConfig, tokens *oidc.Tokens) (*oidc.Profile, error)
	EndSessionEndpoint(ctx context.Context, cfg systemconfig.OAuthConfig) string
}

// StateStore persists one-time OAuth state nonces.
// Error Contract: Consume returns sentinel.ErrNotFound, ErrAlreadyUsed, or
// ErrExpired for dead states.
type StateStore interface {
	Create(ctx context.Context, record *models.OAuthStateRecord) error
	Consume(ctx context.Context, state string, now time.Time) (*models.OAuthStateRecord, error)
}

const defaultStateTTL = 10 * time.Minute

// Service implements the authentication core: password login, federated
// login, session validation, admin bootstrap, and logout resolution.
// All operations are request-scoped; the only shared state is the externally
// owned stores and the config snapshot fetched per call.
type Service struct {
	users    UserStore
	config   ConfigStore
	hasher   PasswordHasher
	tokens   TokenManager
	states   StateStore
	idp      IdentityProvider
	stateTTL time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures optional Service dependencies.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithIdentityProvider enables federated login. Without it, OAuth operations
// fail as a disabled feature.
func WithIdentityProvider(idp IdentityProvider) Option {
	return func(s *Service) {
		s.idp = idp
	}
}

// WithStateTTL overrides how long an OAuth state stays valid.
// Non-positive values keep the default of 10 minutes.
func WithStateTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.stateTTL = ttl
		}
	}
}

// New constructs the auth service with its required collaborators.
func New(users UserStore, config ConfigStore, hasher PasswordHasher, tokens TokenManager, states StateStore, opts ...Option) (*Service, error) {
	if users == nil || config == nil || hasher == nil || tokens == nil || states == nil {
		return nil, fmt.Errorf("users, config, hasher, tokens, and states are required")
	}
	svc := &Service{
		users:    users,
		config:   config,
		hasher:   hasher,
		tokens:   tokens,
		states:   states,
		stateTTL: defaultStateTTL,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}
