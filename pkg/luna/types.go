package luna

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/constants"
)

// TokenPair is the credential state of a refreshable session. It is always
// replaced as a whole.
type TokenPair struct {
	AccessToken  string     `json:"access_token"         yaml:"access_token"`
	RefreshToken string     `json:"refresh_token"        yaml:"refresh_token"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

// Request describes one logical API call.
type Request struct {
	// Method is the HTTP method; GET when empty.
	Method string
	// Path is appended to the base URL.
	Path string
	// Query holds query parameters.
	Query url.Values
	// Headers are added to every attempt.
	Headers map[string]string
	// Body is JSON encoded unless RawBody is set.
	Body interface{}
	// RawBody is sent verbatim with ContentType.
	RawBody []byte
	// ContentType overrides the JSON content type.
	ContentType string
	// Timeout overrides the per-attempt timeout.
	Timeout time.Duration
}

var validMethods = map[string]struct{}{
	http.MethodGet:    {},
	http.MethodPost:   {},
	http.MethodPut:    {},
	http.MethodPatch:  {},
	http.MethodDelete: {},
}

// Validate checks the method and timeout of the request.
func (r *Request) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidRequest)
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	if _, ok := validMethods[method]; !ok {
		return fmt.Errorf("%w: unsupported method %q", ErrInvalidRequest, r.Method)
	}

	if r.Timeout < 0 {
		return fmt.Errorf("%w: negative timeout", ErrInvalidRequest)
	}

	return nil
}

// Response is the successful result of a call.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	// RequestID is the server-reported ID when present, otherwise the one sent.
	RequestID string
}

// RetryPolicy controls how failed attempts are retried.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// InitialDelay is the wait before the first retry.
	InitialDelay time.Duration
	// MaxDelay caps the computed wait before jitter.
	MaxDelay time.Duration
	// Multiplier grows the wait between consecutive retries and must exceed 1.
	Multiplier float64
	// JitterFraction is the symmetric jitter applied to computed waits.
	JitterFraction float64
}

// DefaultRetryPolicy returns the policy used when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:     constants.DefaultRetryMax,
		InitialDelay:   constants.DefaultRetryWaitMin,
		MaxDelay:       constants.DefaultRetryWaitMax,
		Multiplier:     constants.DefaultRetryMultiplier,
		JitterFraction: constants.DefaultRetryJitter,
	}
}

// Validate checks the policy invariants.
func (p RetryPolicy) Validate() error {
	switch {
	case p.MaxRetries < 0:
		return fmt.Errorf("%w: max retries must not be negative", ErrInvalidRetryPolicy)
	case p.InitialDelay <= 0:
		return fmt.Errorf("%w: initial delay must be positive", ErrInvalidRetryPolicy)
	case p.MaxDelay < p.InitialDelay:
		return fmt.Errorf("%w: max delay must not be below initial delay", ErrInvalidRetryPolicy)
	case p.Multiplier <= 1:
		return fmt.Errorf("%w: multiplier must be greater than 1", ErrInvalidRetryPolicy)
	case p.JitterFraction < 0 || p.JitterFraction > 1:
		return fmt.Errorf("%w: jitter fraction must be within [0, 1]", ErrInvalidRetryPolicy)
	}

	return nil
}

// User represents a user resource.
type User struct {
	ID        string    `json:"id"                   yaml:"id"`
	Email     string    `json:"email"                yaml:"email"`
	Name      string    `json:"name"                 yaml:"name"`
	AvatarURL *string   `json:"avatar_url,omitempty" yaml:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"           yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at"           yaml:"updated_at"`
}

// UserCreate holds the fields of a new user.
type UserCreate struct {
	Email     string  `json:"email"`
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// UserUpdate holds the fields to change on a user.
type UserUpdate struct {
	Name      *string `json:"name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// Project represents a project resource.
type Project struct {
	ID          string    `json:"id"                    yaml:"id"`
	Name        string    `json:"name"                  yaml:"name"`
	Description *string   `json:"description,omitempty" yaml:"description,omitempty"`
	OwnerID     string    `json:"owner_id"              yaml:"owner_id"`
	CreatedAt   time.Time `json:"created_at"            yaml:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"            yaml:"updated_at"`
}

// ProjectCreate holds the fields of a new project.
type ProjectCreate struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// ProjectUpdate holds the fields to change on a project.
type ProjectUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ListParams holds the pagination parameters of list calls.
type ListParams struct {
	Limit  int
	Cursor string
}

// Values encodes the parameters as query values.
func (p *ListParams) Values() url.Values {
	values := url.Values{}
	if p == nil {
		return values
	}

	if p.Limit > 0 {
		values.Set("limit", fmt.Sprintf("%d", p.Limit))
	}

	if p.Cursor != "" {
		values.Set("cursor", p.Cursor)
	}

	return values
}

// Validate checks the page limit.
func (p *ListParams) Validate() error {
	if p == nil || p.Limit == 0 {
		return nil
	}

	if p.Limit < 1 || p.Limit > constants.MaxPageLimit {
		return constants.ErrInvalidPageLimit
	}

	return nil
}

type requestIDKey struct{}

// WithRequestID attaches a caller-chosen request ID to ctx. Calls made with the
// returned context send it instead of a generated one.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request ID attached with WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDKey{}).(string)

	return requestID
}
