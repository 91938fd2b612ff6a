// Package session keeps login sessions in memory. A token is the only
// capability a client holds; there is no expiry and nothing is persisted.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
)

// Role is the privilege level attached to a session.
type Role string

const (
	RoleModerator Role = "moderator"
	RoleListener  Role = "listener"
)

// tokenBytes is the amount of randomness per token (192 bits).
const tokenBytes = 24

// Session is a resolved login.
type Session struct {
	Token    string
	Identity string
	Role     Role
}

// IsModerator reports whether the session may mutate broadcast state.
func (s Session) IsModerator() bool { return s.Role == RoleModerator }

// Store maps tokens to sessions. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]Session)}
}

// Create issues a fresh token for identity and role.
func (s *Store) Create(identity string, role Role) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.sessions[token] = Session{Token: token, Identity: identity, Role: role}
	s.mu.Unlock()

	return token, nil
}

// Resolve looks up a token.
func (s *Store) Resolve(token string) (Session, bool) {
	if token == "" {
		return Session{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[token]
	return sess, ok
}

// Revoke forgets a token. Unknown tokens are ignored.
func (s *Store) Revoke(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
