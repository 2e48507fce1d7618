package luna

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// UsersClient manages users.
type UsersClient interface {
	List(ctx context.Context, params *ListParams) (*ListResponse[User], error)
	Iterate(ctx context.Context, params *ListParams) *Iterator[User]
	Get(ctx context.Context, userID string) (*User, error)
	Create(ctx context.Context, user *UserCreate) (*User, error)
	Update(ctx context.Context, userID string, update *UserUpdate) (*User, error)
	Delete(ctx context.Context, userID string) error
}

// ProjectsClient manages projects.
type ProjectsClient interface {
	List(ctx context.Context, params *ListParams) (*ListResponse[Project], error)
	Iterate(ctx context.Context, params *ListParams) *Iterator[Project]
	Get(ctx context.Context, projectID string) (*Project, error)
	Create(ctx context.Context, project *ProjectCreate) (*Project, error)
	Update(ctx context.Context, projectID string, update *ProjectUpdate) (*Project, error)
	Delete(ctx context.Context, projectID string) error
}

// ResourceClients provides access to all resource-specific clients.
type ResourceClients interface {
	Users() UsersClient
	Projects() ProjectsClient
}

// Client is the Luna API client.
type Client interface {
	ResourceClients

	// Request executes a raw call through the retrying pipeline. Resource
	// wrappers outside this module build on it.
	Request(ctx context.Context, req *Request) (*Response, error)

	// Close releases resources opened from Config, such as LogFile.
	Close() error
}

// Config represents client configuration for building a luna.Client.
//
// # Authentication precedence
//
//  1. APIKey: sent as a static Bearer credential.
//  2. AccessToken (+ RefreshToken): a refreshable session. The access token is
//     refreshed shortly before TokenExpiresAt, through the OAuth2 token
//     endpoint when TokenURL and ClientID are set, otherwise through the
//     API's own refresh endpoint.
//
// Providing neither is an error.
//
// # Timeouts and retries
//
// Timeout bounds each attempt; the context passed to a call bounds the call
// as a whole, including the waits between retries.
type Config struct {
	// BaseURL: API endpoint. lunaclient.New trims a trailing slash and adds
	// "https://" if no scheme is present. Defaults to https://api.eclipse.dev.
	BaseURL string

	// Authentication options (provide one)
	// APIKey: static key of the form lk_<live|test|dev>_<32 alphanumerics>.
	APIKey string
	// AccessToken: bearer token of a refreshable session.
	AccessToken string
	// RefreshToken: token exchanged for a new pair when the access token nears expiry.
	RefreshToken string
	// TokenExpiresAt: expiry of AccessToken. When nil the expiry is read from
	// the token's exp claim if it is a JWT, otherwise it is unknown and the
	// token is never refreshed proactively.
	TokenExpiresAt *time.Time
	// TokenURL: OAuth2 token endpoint used for refreshes when ClientID is set.
	TokenURL string
	// ClientID: OAuth2 client ID for the refresh_token grant.
	ClientID string
	// ClientSecret: OAuth2 client secret used with ClientID.
	ClientSecret string
	// OnTokenRefresh: called with the new pair after every successful refresh.
	// Its error is logged and otherwise ignored.
	OnTokenRefresh func(TokenPair) error

	// Optional configurations
	// Timeout: per-attempt timeout. Defaults to 30s.
	Timeout time.Duration
	// RetryPolicy: retry behavior. Defaults to DefaultRetryPolicy().
	RetryPolicy *RetryPolicy
	// LogLevel: records below this level are dropped. Defaults to info.
	LogLevel LogLevel
	// Logger: optional sink for redacted log records. Defaults to JSON on stderr.
	Logger Logger
	// LogFile: when set, the default sink writes to this size-rotated file.
	LogFile string
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
	// HTTPClient: overrides the pooled HTTP client shared by all calls.
	HTTPClient *http.Client
	// TracerProvider: source of request spans. Defaults to the global provider.
	TracerProvider trace.TracerProvider
	// MetricsRegisterer: when set, request metrics are registered with it.
	MetricsRegisterer prometheus.Registerer
}
