package session

import (
	"context"
	"sync"
	"time"

	domain "checkin/internal/domain/session"
)

// MemoryStore implements Store in process memory. Sessions are lost on restart.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	now      func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{sessions: make(map[string]domain.Session), now: buildOptions(opts).now}
}

// Get returns the session for token.
// PRE: none
// POST: returns ErrNotFound for unknown or expired tokens
func (m *MemoryStore) Get(_ context.Context, token string) (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[token]
	if !ok {
		return domain.Session{}, ErrNotFound
	}
	if sess.IsExpired(m.now()) {
		delete(m.sessions, token)
		return domain.Session{}, ErrNotFound
	}
	return sess, nil
}

// Save stores a session.
// PRE: sess is valid
// POST: session is stored under its token
func (m *MemoryStore) Save(_ context.Context, sess domain.Session) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.Token] = sess
	return nil
}

// Delete removes a session.
func (m *MemoryStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

// DeleteExpired removes sessions older than the TTL at now.
func (m *MemoryStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for token, sess := range m.sessions {
		if sess.IsExpired(now) {
			delete(m.sessions, token)
			n++
		}
	}
	return n, nil
}
