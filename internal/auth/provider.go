// Package auth produces the credentials attached to outbound requests: a
// static API key, or an access/refresh token pair that is renewed shortly
// before it expires.
package auth

import (
	"context"
	"regexp"
	"strings"

	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/constants"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/pkg/luna"
)

// Provider produces the headers that authenticate one request. Failures are
// returned as authentication errors.
type Provider interface {
	GetHeaders(ctx context.Context) (map[string]string, error)
}

var apiKeyPattern = regexp.MustCompile(constants.APIKeyPattern)

// APIKeyProvider authenticates with a static API key.
type APIKeyProvider struct {
	key string
}

// NewAPIKeyProvider validates key and returns a provider for it.
func NewAPIKeyProvider(key string) (*APIKeyProvider, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, constants.ErrAPIKeyRequired
	}

	if !ValidAPIKey(key) {
		return nil, constants.ErrInvalidAPIKeyFormat
	}

	return &APIKeyProvider{key: key}, nil
}

// ValidAPIKey reports whether key is a well-formed API key.
func ValidAPIKey(key string) bool {
	return apiKeyPattern.MatchString(key)
}

// GetHeaders returns the constant Authorization header.
func (p *APIKeyProvider) GetHeaders(_ context.Context) (map[string]string, error) {
	return map[string]string{constants.HeaderAuthorization: "Bearer " + p.key}, nil
}

// Environment returns the environment segment of the key: live, test, or dev.
func (p *APIKeyProvider) Environment() string {
	return strings.SplitN(p.key, "_", 3)[1]
}

var (
	_ Provider = (*APIKeyProvider)(nil)
	_ Provider = (*TokenProvider)(nil)
)

func authError(code, message string, cause error) *luna.Error {
	return luna.NewAuthenticationError(code, message, cause)
}
