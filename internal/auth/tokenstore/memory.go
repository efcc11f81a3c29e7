package tokenstore

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store for tests and single-node development.
type MemoryStore struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewMemoryStore returns a new in-memory refresh token store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]string)}
}

// Get returns the stored token for email.
func (s *MemoryStore) Get(ctx context.Context, email string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.m[email]
	return token, ok, nil
}

// Upsert stores token for email, replacing any previous value.
func (s *MemoryStore) Upsert(ctx context.Context, email, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[email] = token
	return nil
}

// Delete removes the entry for email.
func (s *MemoryStore) Delete(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, email)
	return nil
}

// Exists reports whether an entry exists for email.
func (s *MemoryStore) Exists(ctx context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.m[email]
	return ok, nil
}
