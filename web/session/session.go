// Package session holds the per-request session state of the web tier.
//
// A Session is created by the bootstrap middleware for each page request and
// travels in the request context. It starts in the bootstrapping state and is
// settled exactly once, by the bootstrap task, with either a user or nil.
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/upb/conference-portal/internal/rbac"
)

// User is the authenticated identity of the browser session
type User struct {
	ID    uuid.UUID
	Name  string
	Email string
	Roles []rbac.Role
}

// Session is the session state visible to route guards and pages.
// The zero value and a nil *Session both read as settled with no user.
type Session struct {
	mu            sync.RWMutex
	user          *User
	bootstrapping bool
}

// New returns a session that is still bootstrapping
func New() *Session {
	return &Session{bootstrapping: true}
}

// NewSettled returns a session that already holds u (nil for signed out)
func NewSettled(u *User) *Session {
	s := &Session{}
	s.settle(u)
	return s
}

// User returns a copy of the session user, or nil
func (s *Session) User() *User {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	u.Roles = append([]rbac.Role(nil), s.user.Roles...)
	return &u
}

// Bootstrapping reports whether the identity check is still pending
func (s *Session) Bootstrapping() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bootstrapping
}

// Roles returns the roles of the session user; empty when signed out
func (s *Session) Roles() []rbac.Role {
	if u := s.User(); u != nil {
		return u.Roles
	}
	return nil
}

// settle replaces the user wholesale and ends bootstrapping
func (s *Session) settle(u *User) {
	var stored *User
	if u != nil {
		cp := *u
		cp.Roles = append([]rbac.Role(nil), u.Roles...)
		stored = &cp
	}

	s.mu.Lock()
	s.user = stored
	s.bootstrapping = false
	s.mu.Unlock()
}

type contextKey struct{}

// WithSession stores s in ctx
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored in ctx, or nil
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}
