package auth

import (
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/constants"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/pkg/luna"
)

// TokenStore provides thread-safe storage of the current token pair. The pair
// is always replaced as a whole.
type TokenStore struct {
	mu   sync.RWMutex
	pair *luna.TokenPair
}

// NewTokenStore creates an empty token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns a copy of the stored pair, or nil.
func (s *TokenStore) Get() *luna.TokenPair {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.pair == nil {
		return nil
	}

	return copyPair(*s.pair)
}

// Set replaces the stored pair.
func (s *TokenStore) Set(pair luna.TokenPair) {
	stored := copyPair(pair)

	s.mu.Lock()
	s.pair = stored
	s.mu.Unlock()
}

// Clear removes the stored pair.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	s.pair = nil
	s.mu.Unlock()
}

func copyPair(pair luna.TokenPair) *luna.TokenPair {
	if pair.ExpiresAt != nil {
		expiresAt := *pair.ExpiresAt
		pair.ExpiresAt = &expiresAt
	}

	return &pair
}

// ExpiryFromJWT reads the exp claim of a JWT without verifying its signature.
// It is only used to schedule refreshes.
func ExpiryFromJWT(token string) (time.Time, error) {
	if strings.Count(token, ".") != 2 {
		return time.Time{}, constants.ErrInvalidJWTFormat
	}

	claims := jwt.MapClaims{}

	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return time.Time{}, constants.ErrInvalidJWTFormat
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, constants.ErrNoExpirationClaim
	}

	return exp.Time, nil
}
