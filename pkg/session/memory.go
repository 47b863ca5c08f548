package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in a map. It is safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	max      int
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMaxSessions caps the number of live sessions. Zero means no cap.
func WithMaxSessions(n int) MemoryOption {
	return func(s *MemoryStore) { s.max = n }
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{sessions: make(map[string]*Session)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the session for id. Expiry is checked under the lock since
// Touch moves ExpiresAt.
func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	if sess.IsExpired() {
		delete(s.sessions, id)
		return nil, ErrExpired
	}
	return sess, nil
}

// Set stores sess. When the store is full, expired sessions are dropped
// first; if it is still full, Set returns ErrLimit.
func (s *MemoryStore) Set(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, replacing := s.sessions[sess.ID]; !replacing && s.max > 0 && len(s.sessions) >= s.max {
		s.cleanupLocked()
		if len(s.sessions) >= s.max {
			return ErrLimit
		}
	}
	s.sessions[sess.ID] = sess
	return nil
}

func (s *MemoryStore) Touch(_ context.Context, id string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if sess.IsExpired() {
		delete(s.sessions, id)
		return ErrExpired
	}
	sess.ExpiresAt = time.Now().Add(ttl)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore) Cleanup(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cleanupLocked(), nil
}

func (s *MemoryStore) cleanupLocked() int {
	n := 0
	for id, sess := range s.sessions {
		if sess.IsExpired() {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

var _ Store = (*MemoryStore)(nil)
