package oauthstate

import (
	"context"
	"sync"
	"time"

	"github.com/ochen1/immich/internal/auth/models"
	"github.com/ochen1/immich/pkg/sentinel"
)

// Error Contract:
// All store methods follow this error pattern:
// - Return ErrNotFound (wrapped) when the state does not exist
// - Return ErrExpired / ErrAlreadyUsed for dead states
// - Return nil for successful operations

// InMemoryStore holds pending OAuth state nonces. Each state guards exactly
// one authorization round-trip and is consumed atomically at callback time;
// a mismatch or replay is fatal to that flow.
type InMemoryStore struct {
	mu     sync.Mutex
	states map[string]*models.OAuthStateRecord
}

// New constructs an empty in-memory state store.
func New() *InMemoryStore {
	return &InMemoryStore{states: make(map[string]*models.OAuthStateRecord)}
}

// Create registers a fresh state for one flow.
func (s *InMemoryStore) Create(_ context.Context, record *models.OAuthStateRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[record.State] = record
	return nil
}

// Consume atomically validates and retires a state. The check and the
// mark-used happen under one lock so a replayed callback cannot win.
func (s *InMemoryStore) Consume(_ context.Context, state string, now time.Time) (*models.OAuthStateRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.states[state]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if record.Used {
		return nil, sentinel.ErrAlreadyUsed
	}
	if now.After(record.ExpiresAt) {
		return nil, sentinel.ErrExpired
	}

	record.Used = true
	out := *record
	return &out, nil
}

// DeleteExpired removes dead states and returns how many were dropped.
func (s *InMemoryStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for state, record := range s.states {
		if record.Used || record.ExpiresAt.Before(now) {
			delete(s.states, state)
			deleted++
		}
	}
	return deleted, nil
}
