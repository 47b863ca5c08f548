// Package session keeps the live studio sessions of the HTTP server.
//
// Each [Session] owns one [studio.Controller]. Sessions live in memory only
// and expire after a period of inactivity; nothing is persisted.
//
// # Usage
//
//	store := session.NewMemoryStore(session.WithMaxSessions(1000))
//	sess := session.New(studio.New(gen, an), session.DefaultTTL)
//	if err := store.Set(ctx, sess); err != nil {
//	    return err
//	}
//
//	sess, err := store.Get(ctx, id)   // nil, nil when unknown
//	store.Touch(ctx, id, session.DefaultTTL)
//
// Run [Janitor] in the background to drop expired sessions.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Deva-here/ScribbleForge/pkg/studio"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("expired")

	// ErrLimit is returned when the store is full.
	ErrLimit = errors.New("session limit reached")
)

// DefaultTTL is the default idle lifetime of a session.
const DefaultTTL = 2 * time.Hour

// Session is one user's studio.
type Session struct {
	ID         string
	Controller *studio.Controller
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// New creates a session with a random UUID.
func New(ctrl *studio.Controller, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:         uuid.NewString(),
		Controller: ctrl,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// ValidID reports whether id has the shape of a session ID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist.
	// Returns nil, ErrExpired if the session exists but has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, sess *Session) error

	// Touch extends a session's expiry to now + ttl.
	Touch(ctx context.Context, id string, ttl time.Duration) error

	// Delete removes a session.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions and reports how many were removed.
	Cleanup(ctx context.Context) (int, error)

	// Len returns the number of stored sessions, expired ones included.
	Len() int
}
