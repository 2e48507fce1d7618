package constants

import "errors"

// Credential errors.
var (
	ErrAPIKeyRequired       = errors.New("API key is required")
	ErrInvalidAPIKeyFormat  = errors.New("invalid API key format, expected lk_<live|test|dev>_<32 alphanumeric characters>")
	ErrAccessTokenRequired  = errors.New("access token is required")
	ErrNoRefreshToken       = errors.New("no refresh token available")
	ErrNoRefresher          = errors.New("no token refresher configured")
	ErrInvalidJWTFormat     = errors.New("invalid JWT format")
	ErrNoExpirationClaim    = errors.New("no expiration claim found")
	ErrFailedRetrieveToken  = errors.New("failed to retrieve refreshed token")
	ErrEmptyRefreshResponse = errors.New("refresh response did not contain an access token")
	ErrNoStoredTokens       = errors.New("no stored tokens found")
	ErrNoCredentials        = errors.New("either an API key or an access token is required")
	ErrRefreshCallbackPanic = errors.New("token refresh callback panicked")
)

// Validation errors.
var (
	ErrInvalidUserID     = errors.New("invalid user ID, expected usr_<alphanumeric>")
	ErrInvalidProjectID  = errors.New("invalid project ID, expected prj_<alphanumeric>")
	ErrInvalidPageLimit  = errors.New("page limit must be between 1 and 100")
	ErrInvalidLogLevel   = errors.New("invalid log level")
	ErrInvalidTimeout    = errors.New("invalid timeout")
	ErrInvalidMaxRetries = errors.New("max retries must not be negative")
)

// CLI errors.
var (
	ErrUnsupportedOutput = errors.New("unsupported output format")
	ErrPathRequired      = errors.New("request path is required")
)
