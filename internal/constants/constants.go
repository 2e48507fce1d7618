package constants

import "time"

// SDK identity.
const (
	// SDKName is reported in the default User-Agent.
	SDKName = "luna-sdk-go"

	// SDKVersion is the released version of the SDK.
	SDKVersion = "1.0.0"

	// DefaultUserAgent is sent when no override is configured.
	DefaultUserAgent = SDKName + "/" + SDKVersion
)

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// LogFilePerm is the permission for rotated log files.
	LogFilePerm = 0600
)

// Endpoints.
const (
	// DefaultBaseURL is the production API endpoint.
	DefaultBaseURL = "https://api.eclipse.dev"

	// DocsDomain hosts the error reference pages.
	DocsDomain = "eclipse.dev"

	// RefreshPath is the token refresh endpoint relative to the base URL.
	RefreshPath = "/v1/auth/refresh"

	// UsersPath is the collection path of the users resource.
	UsersPath = "/v1/users"

	// ProjectsPath is the collection path of the projects resource.
	ProjectsPath = "/v1/projects"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default per-attempt timeout.
	DefaultHTTPTimeout = 30 * time.Second

	// RefreshTimeout bounds a single token refresh exchange.
	RefreshTimeout = 30 * time.Second

	// TokenRefreshLeadWindow is how long before expiry a token is considered stale.
	TokenRefreshLeadWindow = 5 * time.Minute
)

// Retry policy defaults.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the wait before the first retry.
	DefaultRetryWaitMin = 500 * time.Millisecond

	// DefaultRetryWaitMax caps the computed wait between retries.
	DefaultRetryWaitMax = 30 * time.Second

	// DefaultRetryMultiplier grows the wait between consecutive retries.
	DefaultRetryMultiplier = 2.0

	// DefaultRetryJitter is the symmetric jitter fraction applied to computed waits.
	DefaultRetryJitter = 0.1
)

// Header names.
const (
	HeaderAuthorization = "Authorization"
	HeaderRequestID     = "X-Request-Id"
	HeaderRetryAfter    = "Retry-After"
	HeaderContentType   = "Content-Type"
	HeaderAccept        = "Accept"
	HeaderUserAgent     = "User-Agent"

	// ContentTypeJSON is the default request and response media type.
	ContentTypeJSON = "application/json"
)

// Identifier formats.
const (
	// APIKeyPattern matches a well-formed static API key.
	APIKeyPattern = `^lk_(live|test|dev)_[a-zA-Z0-9]{32}$`

	// UserIDPattern matches a user identifier.
	UserIDPattern = `^usr_[a-zA-Z0-9]+$`

	// ProjectIDPattern matches a project identifier.
	ProjectIDPattern = `^prj_[a-zA-Z0-9]+$`

	// RequestIDPrefix starts every locally generated request ID.
	RequestIDPrefix = "req_"

	// RequestIDRandomLength is the length of the random suffix of a request ID.
	RequestIDRandomLength = 8
)

// Logging.
const (
	// RedactedValue replaces the value of every sensitive field.
	RedactedValue = "[REDACTED]"

	// LogFileMaxSizeMB rotates the log file once it reaches this size.
	LogFileMaxSizeMB = 10

	// LogFileMaxBackups is the number of rotated files kept.
	LogFileMaxBackups = 5

	// LogFileMaxAgeDays removes rotated files older than this.
	LogFileMaxAgeDays = 28
)

// Pagination.
const (
	// DefaultPageLimit is the page size requested when none is given.
	DefaultPageLimit = 20

	// MaxPageLimit is the largest page size the API accepts.
	MaxPageLimit = 100
)

// Token persistence.
const (
	// DefaultTokenBucket is the NATS key-value bucket that stores refreshed tokens.
	DefaultTokenBucket = "luna_tokens"

	// DefaultTokenKey is the key under which the current token pair is stored.
	DefaultTokenKey = "default"
)

// CLI output.
const (
	// FormatTable renders results as a table.
	FormatTable = "table"

	// FormatJSON renders results as indented JSON.
	FormatJSON = "json"

	// FormatYAML renders results as YAML.
	FormatYAML = "yaml"

	// ConfigDirName is the directory under $HOME searched for config.yml.
	ConfigDirName = ".luna"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yml"
)
