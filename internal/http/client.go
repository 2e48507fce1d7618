// Package http executes logical API calls: it attaches credentials and a
// request ID, retries transient failures with backoff, and classifies the
// final outcome into a *luna.Error.
package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/auth"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/constants"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/json"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/telemetry"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/pkg/luna"
)

const outcomeSuccess = "success"

// Client is the request executor shared by all resource clients.
type Client struct {
	baseURL    string
	provider   auth.Provider
	httpClient *http.Client
	transport  http.RoundTripper
	logger     *telemetry.Logger
	metrics    *telemetry.Metrics
	tracer     *telemetry.Tracer
	policy     luna.RetryPolicy
	timeout    time.Duration
	userAgent  string
	debug      bool
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger *telemetry.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRetryPolicy sets the retry policy.
func WithRetryPolicy(policy luna.RetryPolicy) Option {
	return func(c *Client) {
		c.policy = policy
	}
}

// WithRetryConfig sets the retry bound and the initial and maximum waits,
// keeping the default multiplier and jitter.
func WithRetryConfig(maxRetries int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.policy.MaxRetries = maxRetries
		c.policy.InitialDelay = waitMin
		c.policy.MaxDelay = waitMax
	}
}

// WithTimeout sets the default per-attempt timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient sets the underlying HTTP client. Its transport is wrapped
// to attach credentials.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithMetrics records request metrics.
func WithMetrics(metrics *telemetry.Metrics) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// WithTracer records one span per call.
func WithTracer(tracer *telemetry.Tracer) Option {
	return func(c *Client) {
		c.tracer = tracer
	}
}

// WithDebug logs every attempt and response at debug level.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// NewClient creates an executor for the API at baseURL. A nil provider sends
// unauthenticated requests.
func NewClient(baseURL string, provider auth.Provider, opts ...Option) *Client {
	client := &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		provider:  provider,
		policy:    luna.DefaultRetryPolicy(),
		timeout:   constants.DefaultHTTPTimeout,
		userAgent: constants.DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		client.httpClient = cleanhttp.DefaultPooledClient()
	}

	if client.tracer == nil {
		client.tracer = telemetry.NewTracer(nil)
	}

	base := client.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	client.transport = &authTransport{base: base, provider: provider}

	return client
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do executes req, retrying transient failures. It returns the successful
// response or the classified error of the final attempt.
func (c *Client) Do(ctx context.Context, req *luna.Request) (*luna.Response, error) {
	err := req.Validate()
	if err != nil {
		return nil, &luna.Error{
			Kind:    luna.KindValidation,
			Code:    luna.CodeValidationFailed,
			Message: err.Error(),
			Err:     err,
		}
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	requestID := luna.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = NewRequestID()
	}

	ctx, span := c.tracer.StartRequest(ctx, method, req.Path, requestID)

	call := &call{
		client:    c,
		method:    method,
		path:      req.Path,
		requestID: requestID,
		span:      span,
		waits:     newBackoff(c.policy, nil),
		started:   time.Now(),
	}

	httpReq, err := c.newRequest(ctx, method, req, requestID)
	if err != nil {
		return nil, call.fail(ctx, err)
	}

	timeout := req.Timeout
	if timeout == 0 {
		timeout = c.timeout
	}

	resp, err := call.retryClient(timeout).Do(httpReq)
	if err != nil {
		return nil, call.fail(ctx, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	return call.succeed(resp), nil
}

func (c *Client) newRequest(ctx context.Context, method string, req *luna.Request, requestID string) (*retryablehttp.Request, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var (
		body        interface{}
		contentType string
	)

	switch {
	case req.RawBody != nil:
		body = req.RawBody
		contentType = req.ContentType
	case req.Body != nil:
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, &luna.Error{
				Kind:      luna.KindValidation,
				Code:      luna.CodeValidationFailed,
				Message:   fmt.Sprintf("encoding request body: %v", err),
				RequestID: requestID,
				Err:       err,
			}
		}

		body = encoded
		contentType = constants.ContentTypeJSON
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, &luna.Error{
			Kind:      luna.KindValidation,
			Code:      luna.CodeValidationFailed,
			Message:   fmt.Sprintf("building request: %v", err),
			RequestID: requestID,
			Err:       err,
		}
	}

	httpReq.Header.Set(constants.HeaderAccept, constants.ContentTypeJSON)
	httpReq.Header.Set(constants.HeaderUserAgent, c.userAgent)
	httpReq.Header.Set(constants.HeaderRequestID, requestID)

	if contentType != "" {
		httpReq.Header.Set(constants.HeaderContentType, contentType)
	}

	for name, value := range req.Headers {
		httpReq.Header.Set(name, value)
	}

	return httpReq, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*luna.Response, error) {
	return c.Do(ctx, &luna.Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*luna.Response, error) {
	return c.Do(ctx, &luna.Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*luna.Response, error) {
	return c.Do(ctx, &luna.Request{Method: http.MethodPut, Path: path, Body: body})
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*luna.Response, error) {
	return c.Do(ctx, &luna.Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*luna.Response, error) {
	return c.Do(ctx, &luna.Request{Method: http.MethodDelete, Path: path})
}

// call holds the state of one logical request across its attempts.
type call struct {
	client    *Client
	method    string
	path      string
	requestID string
	span      trace.Span
	waits     *backoff
	started   time.Time
	attempts  int
	status    int
	body      []byte
	last      *luna.Error
}

func (a *call) retryClient(timeout time.Duration) *retryablehttp.Client {
	httpClient := *a.client.httpClient
	httpClient.Transport = a.client.transport
	httpClient.Timeout = timeout

	retryClient := &retryablehttp.Client{
		HTTPClient:   &httpClient,
		RetryWaitMin: a.client.policy.InitialDelay,
		RetryWaitMax: a.client.policy.MaxDelay,
		RetryMax:     a.client.policy.MaxRetries,
		CheckRetry:   a.checkRetry,
		Backoff:      a.backoff,
		ErrorHandler: a.errorHandler,
	}

	if a.client.debug {
		retryClient.RequestLogHook = a.logAttempt
		retryClient.ResponseLogHook = a.logResponse
	}

	return retryClient
}

// checkRetry classifies the outcome of one attempt. Authentication failures
// from the provider and cancellation by the caller end the call at once.
func (a *call) checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	a.attempts++

	if ctxErr := ctx.Err(); ctxErr != nil {
		a.last = luna.NewCanceledError(ctxErr, a.requestID)

		return false, a.last
	}

	if err != nil {
		a.last = luna.ClassifyTransport(err, a.requestID)
		if a.last.Kind == luna.KindAuthentication {
			return false, a.last
		}

		return a.last.Retryable(), a.last
	}

	a.status = resp.StatusCode
	if id := resp.Header.Get(constants.HeaderRequestID); id != "" {
		a.requestID = id
	}

	body, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))

	if readErr != nil {
		a.last = luna.ClassifyTransport(readErr, a.requestID)

		return a.last.Retryable(), a.last
	}

	a.body = body

	a.last = luna.ClassifyResponse(resp.StatusCode, resp.Header, body, a.requestID)
	if a.last != nil {
		return a.last.Retryable(), a.last
	}

	return false, nil
}

func (a *call) backoff(_, _ time.Duration, attemptNum int, _ *http.Response) time.Duration {
	wait := a.waits.next(attemptNum, a.last)

	fields := map[string]interface{}{
		"method":      a.method,
		"path":        a.path,
		"request_id":  a.requestID,
		"attempt":     attemptNum + 1,
		"max_retries": a.client.policy.MaxRetries,
		"wait_ms":     wait.Milliseconds(),
	}

	code := luna.CodeUnknown
	if a.last != nil {
		code = a.last.Code
		fields["code"] = code
	}

	a.client.logger.Warn("Retrying request", fields)
	a.client.metrics.RecordRetry(code)
	telemetry.RecordRetry(a.span, attemptNum+1, wait.Milliseconds(), a.last)

	return wait
}

func (a *call) errorHandler(resp *http.Response, err error, _ int) (*http.Response, error) {
	if resp != nil {
		_ = resp.Body.Close()
	}

	return nil, err
}

func (a *call) logAttempt(_ retryablehttp.Logger, req *http.Request, attempt int) {
	a.client.logger.Debug("HTTP Request", map[string]interface{}{
		"method":     req.Method,
		"url":        req.URL.String(),
		"attempt":    attempt + 1,
		"request_id": a.requestID,
		"headers":    req.Header,
	})
}

func (a *call) logResponse(_ retryablehttp.Logger, resp *http.Response) {
	a.client.logger.Debug("HTTP Response", map[string]interface{}{
		"status":     resp.StatusCode,
		"request_id": a.requestID,
		"headers":    resp.Header,
	})
}

func (a *call) succeed(resp *http.Response) *luna.Response {
	duration := time.Since(a.started)

	a.client.logger.Info("Request completed", map[string]interface{}{
		"method":      a.method,
		"path":        a.path,
		"status":      resp.StatusCode,
		"request_id":  a.requestID,
		"attempts":    a.attempts,
		"duration_ms": duration.Milliseconds(),
	})
	a.client.metrics.RecordRequest(a.method, outcomeSuccess, a.attempts, duration)
	telemetry.EndRequest(a.span, a.requestID, resp.StatusCode, a.attempts, nil)

	return &luna.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       a.body,
		RequestID:  a.requestID,
	}
}

// fail turns whatever ended the call into its classified error and reports it.
func (a *call) fail(ctx context.Context, err error) *luna.Error {
	var final *luna.Error

	switch lunaErr, ok := luna.AsError(err); {
	case ok:
		final = lunaErr
	case ctx.Err() != nil:
		final = luna.NewCanceledError(ctx.Err(), a.requestID)
	default:
		final = luna.ClassifyTransport(err, a.requestID)
	}

	if final.RequestID == "" {
		final = final.WithRequestID(a.requestID)
	}

	duration := time.Since(a.started)

	a.client.logger.Error("Request failed", map[string]interface{}{
		"method":      a.method,
		"path":        a.path,
		"status":      final.Status,
		"request_id":  final.RequestID,
		"attempts":    a.attempts,
		"code":        final.Code,
		"kind":        final.Kind.String(),
		"duration_ms": duration.Milliseconds(),
	})
	a.client.metrics.RecordRequest(a.method, final.Code, a.attempts, duration)
	telemetry.EndRequest(a.span, final.RequestID, final.Status, a.attempts, final)

	return final
}
