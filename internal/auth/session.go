// Package auth holds the acting identity handed to every gateway call and the
// bearer token verification that produces it.
package auth

import (
	"context"
	"sync"

	"agency/internal/core"
)

// Session carries the current identity. It starts unresolved; the first call
// to Resolve opens the readiness gate for good, later calls only swap the
// identity (sign in, sign out).
type Session struct {
	once  sync.Once
	ready chan struct{}

	mu       sync.RWMutex
	identity *core.Identity
}

func NewSession() *Session {
	return &Session{ready: make(chan struct{})}
}

// Resolved returns a session already resolved to id. A nil id is an
// anonymous session.
func Resolved(id *core.Identity) *Session {
	s := NewSession()
	s.Resolve(id)
	return s
}

// Resolve sets the identity reported by the identity provider.
func (s *Session) Resolve(id *core.Identity) {
	s.mu.Lock()
	if id != nil {
		cp := *id
		s.identity = &cp
	} else {
		s.identity = nil
	}
	s.mu.Unlock()
	s.once.Do(func() { close(s.ready) })
}

// SignOut drops the identity. The readiness gate stays open.
func (s *Session) SignOut() {
	s.Resolve(nil)
}

// Identity returns the current identity, if any. A nil session has none.
func (s *Session) Identity() (core.Identity, bool) {
	if s == nil {
		return core.Identity{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return core.Identity{}, false
	}
	return *s.identity, true
}

// Ready reports whether the initial resolution has happened.
func (s *Session) Ready() bool {
	if s == nil {
		return true
	}
	select {
	case <-s.ready:
		return true
	default:
		return false
	}
}

// WaitReady blocks until the initial resolution or until ctx is done.
func (s *Session) WaitReady(ctx context.Context) error {
	if s == nil {
		return nil
	}
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
