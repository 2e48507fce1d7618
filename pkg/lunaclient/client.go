// Package lunaclient provides the main entry point for creating Luna API clients
package lunaclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/client"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/constants"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/pkg/luna"
)

// New creates a new Luna API client. The config's BaseURL is normalized in
// place: it defaults to the production endpoint, loses a trailing slash and
// gains "https://" when no scheme is given.
func New(ctx context.Context, config *luna.Config) (luna.Client, error) {
	if config == nil {
		return nil, luna.ErrConfigRequired
	}

	config.BaseURL = NormalizeBaseURL(config.BaseURL)

	// Use the internal client implementation
	c, err := client.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NormalizeBaseURL applies the BaseURL rules of New.
func NormalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return constants.DefaultBaseURL
	}

	baseURL = strings.TrimRight(baseURL, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}

	return baseURL
}

// NewWithAPIKey creates a new client authenticated with a static API key.
func NewWithAPIKey(ctx context.Context, baseURL, apiKey string) (luna.Client, error) {
	return New(ctx, &luna.Config{
		BaseURL: baseURL,
		APIKey:  apiKey,
	})
}

// NewWithTokens creates a new client for a refreshable session. A zero
// expiresAt leaves the expiry to be read from the access token.
func NewWithTokens(ctx context.Context, baseURL, accessToken, refreshToken string, expiresAt time.Time) (luna.Client, error) {
	config := &luna.Config{
		BaseURL:      baseURL,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}

	if !expiresAt.IsZero() {
		config.TokenExpiresAt = &expiresAt
	}

	return New(ctx, config)
}
