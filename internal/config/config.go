// Package config loads client settings from LUNA_* environment variables,
// .env files, YAML config files and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/constants"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/pkg/luna"
)

// EnvPrefix is prepended to every key to form its environment variable.
const EnvPrefix = "LUNA"

// Keys understood by Load. Each maps to LUNA_<KEY> in the environment.
const (
	KeyAPIKey       = "api_key"
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyBaseURL      = "base_url"
	KeyTimeout      = "timeout"
	KeyMaxRetries   = "max_retries"
	KeyLogLevel     = "log_level"
	KeyLogFile      = "log_file"
	KeyTokenURL     = "token_url"
	KeyClientID     = "client_id"
	KeyClientSecret = "client_secret"
	KeyNATSURL      = "nats_url"
	KeyNATSBucket   = "nats_bucket"
)

// Settings is the resolved client configuration.
type Settings struct {
	APIKey       string        `json:"api_key,omitempty"       yaml:"api_key,omitempty"`
	AccessToken  string        `json:"access_token,omitempty"  yaml:"access_token,omitempty"`
	RefreshToken string        `json:"refresh_token,omitempty" yaml:"refresh_token,omitempty"`
	BaseURL      string        `json:"base_url"                yaml:"base_url"`
	Timeout      time.Duration `json:"timeout"                 yaml:"timeout"`
	MaxRetries   int           `json:"max_retries"             yaml:"max_retries"`
	LogLevel     luna.LogLevel `json:"log_level"               yaml:"log_level"`
	LogFile      string        `json:"log_file,omitempty"      yaml:"log_file,omitempty"`
	TokenURL     string        `json:"token_url,omitempty"     yaml:"token_url,omitempty"`
	ClientID     string        `json:"client_id,omitempty"     yaml:"client_id,omitempty"`
	ClientSecret string        `json:"client_secret,omitempty" yaml:"client_secret,omitempty"`
	NATSURL      string        `json:"nats_url,omitempty"      yaml:"nats_url,omitempty"`
	NATSBucket   string        `json:"nats_bucket,omitempty"   yaml:"nats_bucket,omitempty"`
}

// New returns a viper instance bound to the LUNA_* environment with defaults set.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	return v
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyBaseURL, constants.DefaultBaseURL)
	v.SetDefault(KeyTimeout, constants.DefaultHTTPTimeout.String())
	v.SetDefault(KeyMaxRetries, constants.DefaultRetryMax)
	v.SetDefault(KeyLogLevel, luna.LogLevelInfo.String())
	v.SetDefault(KeyNATSBucket, constants.DefaultTokenBucket)

	// AutomaticEnv only answers for keys viper already knows.
	for _, key := range []string{
		KeyAPIKey, KeyAccessToken, KeyRefreshToken, KeyLogFile,
		KeyTokenURL, KeyClientID, KeyClientSecret, KeyNATSURL,
	} {
		v.SetDefault(key, "")
	}
}

// ReadFile reads a YAML config file into v. An empty path is a no-op.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	err := v.ReadInConfig()
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	return nil
}

// LoadDotEnv loads .env files into the process environment without
// overriding variables that are already set. With no paths it loads ./.env
// and ignores its absence.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		err := godotenv.Load()
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}

		return nil
	}

	err := godotenv.Load(paths...)
	if err != nil {
		return fmt.Errorf("loading %s: %w", strings.Join(paths, ", "), err)
	}

	return nil
}

// Load resolves the settings held by v.
func Load(v *viper.Viper) (*Settings, error) {
	timeout, err := ParseTimeout(v.GetString(KeyTimeout))
	if err != nil {
		return nil, err
	}

	maxRetries, err := strconv.Atoi(strings.TrimSpace(v.GetString(KeyMaxRetries)))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", constants.ErrInvalidMaxRetries, v.GetString(KeyMaxRetries))
	}

	if maxRetries < 0 {
		return nil, fmt.Errorf("%w: %d", constants.ErrInvalidMaxRetries, maxRetries)
	}

	level, err := luna.ParseLogLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return nil, err
	}

	return &Settings{
		APIKey:       strings.TrimSpace(v.GetString(KeyAPIKey)),
		AccessToken:  strings.TrimSpace(v.GetString(KeyAccessToken)),
		RefreshToken: strings.TrimSpace(v.GetString(KeyRefreshToken)),
		BaseURL:      strings.TrimSpace(v.GetString(KeyBaseURL)),
		Timeout:      timeout,
		MaxRetries:   maxRetries,
		LogLevel:     level,
		LogFile:      v.GetString(KeyLogFile),
		TokenURL:     v.GetString(KeyTokenURL),
		ClientID:     v.GetString(KeyClientID),
		ClientSecret: v.GetString(KeyClientSecret),
		NATSURL:      v.GetString(KeyNATSURL),
		NATSBucket:   v.GetString(KeyNATSBucket),
	}, nil
}

// ParseTimeout accepts whole milliseconds ("5000") or a Go duration ("5s").
// An empty value yields the default timeout.
func ParseTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return constants.DefaultHTTPTimeout, nil
	}

	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if ms <= 0 {
			return 0, fmt.Errorf("%w: %q", constants.ErrInvalidTimeout, raw)
		}

		return time.Duration(ms) * time.Millisecond, nil
	}

	timeout, err := time.ParseDuration(raw)
	if err != nil || timeout <= 0 {
		return 0, fmt.Errorf("%w: %q", constants.ErrInvalidTimeout, raw)
	}

	return timeout, nil
}

// Config converts the settings to a client config.
func (s *Settings) Config() *luna.Config {
	policy := luna.DefaultRetryPolicy()
	policy.MaxRetries = s.MaxRetries

	return &luna.Config{
		BaseURL:      s.BaseURL,
		APIKey:       s.APIKey,
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenURL:     s.TokenURL,
		ClientID:     s.ClientID,
		ClientSecret: s.ClientSecret,
		Timeout:      s.Timeout,
		RetryPolicy:  &policy,
		LogLevel:     s.LogLevel,
		LogFile:      s.LogFile,
	}
}

// Redacted returns a copy with every credential masked.
func (s *Settings) Redacted() Settings {
	redacted := *s
	redacted.APIKey = mask(s.APIKey)
	redacted.AccessToken = mask(s.AccessToken)
	redacted.RefreshToken = mask(s.RefreshToken)
	redacted.ClientSecret = mask(s.ClientSecret)

	return redacted
}

func mask(value string) string {
	if value == "" {
		return ""
	}

	return constants.RedactedValue
}
