//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/Eclipse-Softworks/Luna-SDK-sub001/pkg/luna"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/pkg/lunaclient"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	BaseURL      string
	APIKey       string
	AccessToken  string
	RefreshToken string
	Verbose      bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		BaseURL:      os.Getenv("LUNA_BASE_URL"),
		APIKey:       os.Getenv("LUNA_API_KEY"),
		AccessToken:  os.Getenv("LUNA_ACCESS_TOKEN"),
		RefreshToken: os.Getenv("LUNA_REFRESH_TOKEN"),
		Verbose:      os.Getenv("LUNA_VERBOSE") == "true",
	}
}

// SkipIfMissingConfig skips the test unless a live API is configured.
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.BaseURL == "" {
		t.Skip("LUNA_BASE_URL not set, skipping integration tests")
	}

	if config.APIKey == "" && config.AccessToken == "" {
		t.Skip("neither LUNA_API_KEY nor LUNA_ACCESS_TOKEN set, skipping integration tests")
	}
}

// NewClient creates a client for the configured API.
func (config *TestConfig) NewClient(t *testing.T) luna.Client {
	t.Helper()

	level := luna.LogLevelWarn
	if config.Verbose {
		level = luna.LogLevelDebug
	}

	client, err := lunaclient.New(context.Background(), &luna.Config{
		BaseURL:      config.BaseURL,
		APIKey:       config.APIKey,
		AccessToken:  config.AccessToken,
		RefreshToken: config.RefreshToken,
		LogLevel:     level,
	})
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}

	t.Cleanup(func() { _ = client.Close() })

	return client
}

// GenerateTestName creates a unique name for test resources.
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
