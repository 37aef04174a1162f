package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const sessionTTL = time.Hour

// tokenStore keeps issued admin session tokens in memory. Tokens expire after
// sessionTTL and are pruned lazily on lookup.
type tokenStore struct {
	mu     sync.Mutex
	tokens map[string]time.Time // token -> expiry
}

var sessions = &tokenStore{tokens: make(map[string]time.Time)}

// issue creates a new session token and records its expiry.
func (s *tokenStore) issue() string {
	token := uuid.New().String()
	s.mu.Lock()
	s.tokens[token] = time.Now().Add(sessionTTL)
	s.mu.Unlock()
	return token
}

// validate reports whether the token is known and unexpired.
func (s *tokenStore) validate(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiry, ok := s.tokens[token]
	if !ok {
		return false
	}
	if time.Now().After(expiry) {
		delete(s.tokens, token)
		return false
	}
	return true
}

// revoke removes a token, if present.
func (s *tokenStore) revoke(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}
