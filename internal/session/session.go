// Package session holds the authenticated user's bearer token and display
// fields. The rest of the client treats a session as a read-only capability:
// it is attached to requests and consulted for identity, never mutated.
package session

import (
	"context"
	"sync"
)

// Session is the persisted auth state. The zero value is an anonymous
// session.
type Session struct {
	AccessToken string
	Username    string
	AvatarURL   string
}

// Authenticated reports whether the session carries a bearer token.
func (s Session) Authenticated() bool {
	return s.AccessToken != ""
}

// Store persists one session. Load on an empty store returns the zero
// session, not an error.
type Store interface {
	Load(ctx context.Context) (Session, error)
	Save(ctx context.Context, s Session) error
	Clear(ctx context.Context) error
}

// MemoryStore keeps the session in process memory. Used by tests and by CLI
// invocations that pass the token via environment.
type MemoryStore struct {
	mu      sync.RWMutex
	current Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(ctx context.Context) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current, nil
}

func (m *MemoryStore) Save(ctx context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = s
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = Session{}
	return nil
}
