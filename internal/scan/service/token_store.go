package service

import (
	"sync"
	"time"

	scanDomain "github.com/allisson/badgereader/internal/scan/domain"
)

// TokenStore holds the current bearer token. It performs no I/O and is safe for
// concurrent use.
type TokenStore struct {
	mu    sync.RWMutex
	token scanDomain.Token
}

// NewTokenStore creates an empty token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// IsValid reports whether a non-empty token is stored and now is before its expiry.
func (s *TokenStore) IsValid(now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token.IsUsable(now)
}

// Get returns a copy of the stored token.
func (s *TokenStore) Get() scanDomain.Token {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Set replaces the stored token.
func (s *TokenStore) Set(token scanDomain.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Clear resets the store to the empty, expired token.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = scanDomain.Token{}
}
