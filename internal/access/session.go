package access

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// Session is an immutable snapshot of who is using the console.
type Session struct {
	UserID        string `json:"user_id,omitempty"`
	Role          Role   `json:"role,omitempty"`
	Authenticated bool   `json:"authenticated"`
}

// Anonymous is the signed-out session.
var Anonymous = Session{}

// NewSession validates identity and role and returns an authenticated session.
func NewSession(identity string, role string) (Session, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return Session{}, ErrInvalidIdentity
	}
	r, err := ParseRole(role)
	if err != nil {
		return Session{}, err
	}
	return Session{UserID: identity, Role: r, Authenticated: true}, nil
}

// Provider holds the single live session of one client.
//
// Writers are serialized and publish a fresh snapshot; readers never observe
// a half-applied login or logout.
type Provider struct {
	mu      sync.Mutex
	current atomic.Pointer[Session]
}

// NewProvider returns a provider holding the anonymous session.
func NewProvider() *Provider {
	p := &Provider{}
	anon := Anonymous
	p.current.Store(&anon)
	return p
}

// Login replaces the current session. On error the previous session is kept.
func (p *Provider) Login(identity string, role string) error {
	next, err := NewSession(identity, role)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	p.mu.Lock()
	p.current.Store(&next)
	p.mu.Unlock()
	return nil
}

// Logout resets the provider to the anonymous session.
func (p *Provider) Logout() {
	anon := Anonymous
	p.mu.Lock()
	p.current.Store(&anon)
	p.mu.Unlock()
}

// Current returns the live session snapshot.
func (p *Provider) Current() Session {
	if s := p.current.Load(); s != nil {
		return *s
	}
	return Anonymous
}
