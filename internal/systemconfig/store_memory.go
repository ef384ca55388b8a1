package systemconfig

import (
	"context"
	"os"
	"strings"
	"sync"
)

// InMemoryStore serves configuration snapshots from memory. Writers replace
// the whole snapshot; readers always see a consistent copy.
type InMemoryStore struct {
	mu  sync.RWMutex
	cfg SystemConfig
}

// NewInMemoryStore constructs a store holding the given snapshot.
func NewInMemoryStore(cfg SystemConfig) *InMemoryStore {
	return &InMemoryStore{cfg: cfg}
}

func (s *InMemoryStore) Get(_ context.Context) (*SystemConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := s.cfg
	return &snapshot, nil
}

// Set replaces the snapshot.
func (s *InMemoryStore) Set(cfg SystemConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

// FromEnv builds the initial configuration snapshot from environment
// variables so main stays lean.
func FromEnv() SystemConfig {
	algorithms := []string{"RS256"}
	if raw := os.Getenv("IMMICH_OAUTH_SIGNING_ALGORITHMS"); raw != "" {
		algorithms = algorithms[:0]
		for _, alg := range strings.Split(raw, ",") {
			if alg = strings.TrimSpace(alg); alg != "" {
				algorithms = append(algorithms, alg)
			}
		}
	}

	scope := os.Getenv("IMMICH_OAUTH_SCOPE")
	if scope == "" {
		scope = "openid email profile"
	}

	buttonText := os.Getenv("IMMICH_OAUTH_BUTTON_TEXT")
	if buttonText == "" {
		buttonText = "Login with OAuth"
	}

	return SystemConfig{
		PasswordLogin: PasswordLoginConfig{
			Enabled: os.Getenv("IMMICH_PASSWORD_LOGIN_ENABLED") != "false",
		},
		OAuth: OAuthConfig{
			Enabled:           os.Getenv("IMMICH_OAUTH_ENABLED") == "true",
			IssuerURL:         os.Getenv("IMMICH_OAUTH_ISSUER_URL"),
			ClientID:          os.Getenv("IMMICH_OAUTH_CLIENT_ID"),
			ClientSecret:      os.Getenv("IMMICH_OAUTH_CLIENT_SECRET"),
			Scope:             scope,
			SigningAlgorithms: algorithms,
			AutoRegister:      os.Getenv("IMMICH_OAUTH_AUTO_REGISTER") != "false",
			AutoLaunch:        os.Getenv("IMMICH_OAUTH_AUTO_LAUNCH") == "true",
			ButtonText:        buttonText,
			MobileRedirectURI: os.Getenv("IMMICH_OAUTH_MOBILE_REDIRECT_URI"),
		},
	}
}
