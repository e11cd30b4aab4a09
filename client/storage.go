package client

import "sync"

// TokenStore holds the two named token slots the coordinator reads and
// writes. Implementations backed by secure storage must be safe for
// concurrent use.
type TokenStore interface {
	AccessToken() string
	RefreshToken() string
	Save(access, refresh string) error
	Clear() error
}

// MemoryStore is a mutex-guarded in-memory TokenStore.
type MemoryStore struct {
	mu      sync.RWMutex
	access  string
	refresh string
}

func NewMemoryStore(access, refresh string) *MemoryStore {
	return &MemoryStore{access: access, refresh: refresh}
}

func (s *MemoryStore) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

func (s *MemoryStore) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

func (s *MemoryStore) Save(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	if refresh != "" {
		s.refresh = refresh
	}
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
	s.refresh = ""
	return nil
}
