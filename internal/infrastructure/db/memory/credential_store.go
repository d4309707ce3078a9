// Package memory provides a process-local credential store for development
// and tests.
package memory

import (
	"context"
	"sync"

	"github.com/sparta/authcore/internal/core/domain"
)

// CredentialStore keeps users in maps guarded by a single mutex so the
// uniqueness check and the insert happen atomically.
type CredentialStore struct {
	mu         sync.RWMutex
	byUsername map[string]*domain.User
	byEmail    map[string]string
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{
		byUsername: make(map[string]*domain.User),
		byEmail:    make(map[string]string),
	}
}

func (s *CredentialStore) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byUsername[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *CredentialStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	username, ok := s.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *s.byUsername[username]
	return &clone, nil
}

func (s *CredentialStore) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUsername[user.Username]; exists {
		return nil, domain.ErrDuplicateUsername
	}
	if _, exists := s.byEmail[user.Email]; exists {
		return nil, domain.ErrDuplicateEmail
	}

	stored := *user
	s.byUsername[stored.Username] = &stored
	s.byEmail[stored.Email] = stored.Username

	clone := stored
	return &clone, nil
}

func (s *CredentialStore) Ping(context.Context) error { return nil }

// Len returns the number of stored users.
func (s *CredentialStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byUsername)
}
