package user

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ochen1/immich/internal/auth/models"
	"github.com/ochen1/immich/pkg/domain"
	"github.com/ochen1/immich/pkg/sentinel"
)

// Error Contract:
// All store methods follow this error pattern:
// - Return ErrNotFound (wrapped) when the requested entity does not exist
// - Return ErrAlreadyExists (wrapped) on uniqueness violations
// - Return nil for successful operations
// - Return wrapped errors with context for infrastructure failures

// InMemoryStore stores users in memory, guarded by a RWMutex. The admin
// existence check plus create runs under a single lock so only one admin
// creation can win under concurrent attempts.
type InMemoryStore struct {
	mu    sync.RWMutex
	users map[domain.UserID]*models.User
}

// New constructs an empty in-memory user store.
func New() *InMemoryStore {
	return &InMemoryStore{users: make(map[domain.UserID]*models.User)}
}

// Create inserts a new user, enforcing email uniqueness and the single-admin
// invariant as a guarded critical section.
func (s *InMemoryStore) Create(_ context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return nil, fmt.Errorf("email taken: %w", sentinel.ErrAlreadyExists)
		}
		if user.IsAdmin && existing.IsAdmin {
			return nil, fmt.Errorf("admin exists: %w", sentinel.ErrAlreadyExists)
		}
	}

	stored := *user
	if stored.ID.IsNil() {
		stored.ID = domain.NewUserID()
	}
	now := time.Now()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	s.users[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, userID domain.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[userID]; ok {
		return copyUser(user, false), nil
	}
	return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
}

// FindByEmail looks a user up by email. The password hash is included only
// when withPassword is set; other reads never see the credential.
func (s *InMemoryStore) FindByEmail(_ context.Context, email string, withPassword bool) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return copyUser(user, withPassword), nil
		}
	}
	return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
}

// FindByOAuthID looks a user up by the federated provider subject.
func (s *InMemoryStore) FindByOAuthID(_ context.Context, oauthID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.OAuthID != "" && user.OAuthID == oauthID {
			return copyUser(user, false), nil
		}
	}
	return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
}

// FindAdmin returns the admin user, if any.
func (s *InMemoryStore) FindAdmin(_ context.Context) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.IsAdmin {
			return copyUser(user, false), nil
		}
	}
	return nil, fmt.Errorf("admin not found: %w", sentinel.ErrNotFound)
}

// Update persists changes to an existing user. Empty identity and credential
// fields do not clear stored values; OAuthID and ShouldChangePassword are
// always replaced so links can be removed.
func (s *InMemoryStore) Update(_ context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}

	if user.Email != "" {
		existing.Email = user.Email
	}
	if user.PasswordHash != "" {
		existing.PasswordHash = user.PasswordHash
	}
	if user.FirstName != "" {
		existing.FirstName = user.FirstName
	}
	if user.LastName != "" {
		existing.LastName = user.LastName
	}
	existing.OAuthID = user.OAuthID
	existing.ShouldChangePassword = user.ShouldChangePassword
	existing.UpdatedAt = time.Now()

	return copyUser(existing, false), nil
}

// copyUser returns a defensive copy so callers cannot mutate store state.
func copyUser(u *models.User, withPassword bool) *models.User {
	out := *u
	if !withPassword {
		out.PasswordHash = ""
	}
	return &out
}
