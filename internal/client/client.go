package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/auth"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/constants"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/http"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/telemetry"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/pkg/luna"
)

// Static errors for err113 compliance.
var (
	ErrBaseURLRequired = errors.New("base URL is required")
	ErrNotRefreshable  = errors.New("client is not using a refreshable session")
)

// Client implements the luna.Client interface.
type Client struct {
	httpClient *http.Client
	provider   auth.Provider
	tokens     *auth.TokenProvider
	logger     *telemetry.Logger
	baseURL    string
	closers    []io.Closer

	// Resource clients
	users    luna.UsersClient
	projects luna.ProjectsClient
}

// New creates a client from a normalized config.
func New(_ context.Context, config *luna.Config) (*Client, error) {
	if config == nil {
		return nil, luna.ErrConfigRequired
	}

	if config.BaseURL == "" {
		return nil, ErrBaseURLRequired
	}

	if config.Timeout < 0 {
		return nil, fmt.Errorf("%w: %s", constants.ErrInvalidTimeout, config.Timeout)
	}

	policy := luna.DefaultRetryPolicy()
	if config.RetryPolicy != nil {
		policy = *config.RetryPolicy
	}

	err := policy.Validate()
	if err != nil {
		return nil, err
	}

	logger, closer, err := createLogger(config)
	if err != nil {
		return nil, err
	}

	client := &Client{
		logger:  logger,
		baseURL: config.BaseURL,
	}

	if closer != nil {
		client.closers = append(client.closers, closer)
	}

	baseHTTPClient := config.HTTPClient
	if baseHTTPClient == nil {
		baseHTTPClient = cleanhttp.DefaultPooledClient()
	}

	err = client.createProvider(config, baseHTTPClient)
	if err != nil {
		_ = client.Close()

		return nil, err
	}

	client.httpClient = http.NewClient(config.BaseURL, client.provider,
		createHTTPClientOptions(config, policy, logger, baseHTTPClient)...)

	client.initializeResourceClients()

	return client, nil
}

// NewWithProvider creates a client that authenticates with provider.
func NewWithProvider(baseURL string, provider auth.Provider, opts ...http.Option) *Client {
	client := &Client{
		httpClient: http.NewClient(baseURL, provider, opts...),
		provider:   provider,
		baseURL:    baseURL,
	}

	if tokens, ok := provider.(*auth.TokenProvider); ok {
		client.tokens = tokens
	}

	client.initializeResourceClients()

	return client
}

func createLogger(config *luna.Config) (*telemetry.Logger, io.Closer, error) {
	level := config.LogLevel
	if level == 0 {
		level = luna.LogLevelInfo
	}

	switch {
	case config.Logger != nil:
		return telemetry.NewLogger(level, telemetry.LoggerSink{Logger: config.Logger}), nil, nil
	case config.LogFile != "":
		sink, closer, err := telemetry.NewFileSink(config.LogFile)
		if err != nil {
			return nil, nil, err
		}

		return telemetry.NewLogger(level, sink), closer, nil
	default:
		return telemetry.NewLogger(level, nil), nil, nil
	}
}

// createProvider picks the credential in the documented precedence: API key,
// then a refreshable token pair.
func (c *Client) createProvider(config *luna.Config, httpClient *nethttp.Client) error {
	if config.APIKey != "" {
		provider, err := auth.NewAPIKeyProvider(config.APIKey)
		if err != nil {
			return err
		}

		c.provider = provider

		return nil
	}

	if config.AccessToken == "" {
		return constants.ErrNoCredentials
	}

	var refresher auth.Refresher = auth.NewHTTPRefresher(config.BaseURL, httpClient)
	if config.TokenURL != "" && config.ClientID != "" {
		refresher = auth.NewOAuth2Refresher(config.TokenURL, config.ClientID, config.ClientSecret, httpClient)
	}

	opts := []auth.TokenOption{
		auth.WithRefresher(refresher),
		auth.WithLogger(c.logger),
	}

	if config.OnTokenRefresh != nil {
		opts = append(opts, auth.WithRefreshCallback(config.OnTokenRefresh))
	}

	tokens, err := auth.NewTokenProvider(luna.TokenPair{
		AccessToken:  config.AccessToken,
		RefreshToken: config.RefreshToken,
		ExpiresAt:    config.TokenExpiresAt,
	}, opts...)
	if err != nil {
		return err
	}

	c.provider = tokens
	c.tokens = tokens

	return nil
}

// createHTTPClientOptions builds executor options from config.
func createHTTPClientOptions(config *luna.Config, policy luna.RetryPolicy, logger *telemetry.Logger, httpClient *nethttp.Client) []http.Option {
	httpOpts := []http.Option{
		http.WithLogger(logger),
		http.WithRetryPolicy(policy),
		http.WithHTTPClient(httpClient),
		http.WithTracer(telemetry.NewTracer(config.TracerProvider)),
		http.WithDebug(logger.Enabled(luna.LogLevelDebug)),
	}

	if config.Timeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.Timeout))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.MetricsRegisterer != nil {
		httpOpts = append(httpOpts, http.WithMetrics(telemetry.NewMetrics(config.MetricsRegisterer)))
	}

	return httpOpts
}

func (c *Client) initializeResourceClients() {
	c.users = NewUsersClient(c.httpClient)
	c.projects = NewProjectsClient(c.httpClient)
}

// Users implements luna.ResourceClients.Users.
func (c *Client) Users() luna.UsersClient {
	return c.users
}

// Projects implements luna.ResourceClients.Projects.
func (c *Client) Projects() luna.ProjectsClient {
	return c.projects
}

// Request implements luna.Client.Request.
func (c *Client) Request(ctx context.Context, req *luna.Request) (*luna.Response, error) {
	return c.httpClient.Do(ctx, req)
}

// BaseURL returns the API endpoint the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Tokens returns the current token pair of a refreshable session.
func (c *Client) Tokens() (luna.TokenPair, error) {
	if c.tokens == nil {
		return luna.TokenPair{}, ErrNotRefreshable
	}

	return c.tokens.Tokens(), nil
}

// RefreshTokens forces a refresh of a refreshable session.
func (c *Client) RefreshTokens(ctx context.Context) (auth.RefreshResult, error) {
	if c.tokens == nil {
		return auth.RefreshResult{}, ErrNotRefreshable
	}

	return c.tokens.Refresh(ctx)
}

// Close releases the log file, if any.
func (c *Client) Close() error {
	var errs []error

	for _, closer := range c.closers {
		errs = append(errs, closer.Close())
	}

	c.closers = nil

	return errors.Join(errs...)
}

var _ luna.Client = (*Client)(nil)
