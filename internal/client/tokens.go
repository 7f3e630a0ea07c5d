package client

import (
	"sync"

	"github.com/dtroode/identity-server/internal/api/grpc/identityv1"
)

// TokenStore holds the token pair of the signed-in user.
type TokenStore struct {
	mu   sync.RWMutex
	pair identityv1.TokenPair
}

func (s *TokenStore) Set(pair identityv1.TokenPair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = pair
}

func (s *TokenStore) Get() identityv1.TokenPair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair
}

func (s *TokenStore) Clear() {
	s.Set(identityv1.TokenPair{})
}

func (s *TokenStore) AccessToken() string {
	return s.Get().AccessToken
}

func (s *TokenStore) RefreshToken() string {
	return s.Get().RefreshToken
}
