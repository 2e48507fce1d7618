package luna

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/constants"
)

// Kind is the category of a failed call. The set is closed.
type Kind int

// Error kinds.
const (
	KindUnknown Kind = iota
	KindAuthentication
	KindAuthorization
	KindValidation
	KindNotFound
	KindConflict
	KindRateLimit
	KindNetwork
	KindServer
)

var kindNames = map[Kind]string{
	KindUnknown:        "unknown",
	KindAuthentication: "authentication",
	KindAuthorization:  "authorization",
	KindValidation:     "validation",
	KindNotFound:       "not_found",
	KindConflict:       "conflict",
	KindRateLimit:      "rate_limit",
	KindNetwork:        "network",
	KindServer:         "server",
}

// String returns the snake_case name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return kindNames[KindUnknown]
}

// Retryable reports whether errors of this kind may succeed when retried.
func (k Kind) Retryable() bool {
	switch k {
	case KindRateLimit, KindNetwork, KindServer:
		return true
	case KindUnknown, KindAuthentication, KindAuthorization, KindValidation, KindNotFound, KindConflict:
		return false
	}

	return false
}

// Stable error codes.
const (
	CodeAuthInvalidKey        = "LUNA_ERR_AUTH_INVALID_KEY"
	CodeAuthTokenExpired      = "LUNA_ERR_AUTH_TOKEN_EXPIRED"
	CodeAuthInsufficientScope = "LUNA_ERR_AUTH_INSUFFICIENT_SCOPE"
	CodeValidationFailed      = "LUNA_ERR_VALIDATION_FAILED"
	CodeResourceNotFound      = "LUNA_ERR_RESOURCE_NOT_FOUND"
	CodeResourceConflict      = "LUNA_ERR_RESOURCE_CONFLICT"
	CodeRateLimitExceeded     = "LUNA_ERR_RATE_LIMIT_EXCEEDED"
	CodeNetworkConnection     = "LUNA_ERR_NETWORK_CONNECTION"
	CodeNetworkTimeout        = "LUNA_ERR_NETWORK_TIMEOUT"
	CodeServerInternal        = "LUNA_ERR_SERVER_INTERNAL"
	CodeRequestCanceled       = "LUNA_ERR_REQUEST_CANCELED"
	CodeUnknown               = "LUNA_ERR_UNKNOWN"
)

// Static errors for err113 compliance.
var (
	ErrNoMoreItems             = errors.New("no more items")
	ErrPaginationCursorMissing = errors.New("page reported more results without a next cursor")
	ErrPaginationStalled       = errors.New("empty page repeated the same cursor")
	ErrConfigRequired          = errors.New("config is required")
	ErrInvalidRetryPolicy      = errors.New("invalid retry policy")
	ErrInvalidRequest          = errors.New("invalid request")
)

// Error is the classified failure of an API call.
type Error struct {
	// Kind is the category the failure was classified into.
	Kind Kind
	// Code is a stable, machine-readable identifier such as LUNA_ERR_RESOURCE_NOT_FOUND.
	Code string
	// Message is a human-readable description.
	Message string
	// Status is the HTTP status code, or 0 when no response was received.
	Status int
	// RequestID correlates the failure with server-side logs.
	RequestID string
	// Details carries structured context from the error envelope.
	Details map[string]interface{}
	// RetryAfter is the server-advised wait for rate limited calls.
	RetryAfter time.Duration
	// Timeout is set when the failure was caused by a deadline.
	Timeout bool
	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var builder strings.Builder

	builder.WriteString("[")
	builder.WriteString(e.Code)
	builder.WriteString("] ")
	builder.WriteString(e.Message)

	if e.RequestID != "" {
		builder.WriteString(" (Request ID: ")
		builder.WriteString(e.RequestID)
		builder.WriteString(")")
	}

	return builder.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the call may succeed if retried.
func (e *Error) Retryable() bool {
	return e.Kind.Retryable()
}

// WithRequestID returns a copy of e that carries requestID. The receiver is
// left untouched, so an error shared between calls can be attributed to each.
func (e *Error) WithRequestID(requestID string) *Error {
	clone := *e
	clone.RequestID = requestID

	return &clone
}

// DocsURL links to the reference page of the error code.
func (e *Error) DocsURL() string {
	return DocsURL(constants.DocsDomain, e.Code)
}

// DocsURL builds the documentation link for an error code on the given domain.
func DocsURL(domain, code string) string {
	return fmt.Sprintf("https://docs.%s/errors#%s", domain, code)
}

// NewError creates an error of the given kind.
func NewError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// NewAuthenticationError wraps cause as an authentication failure.
func NewAuthenticationError(code, message string, cause error) *Error {
	return &Error{Kind: KindAuthentication, Code: code, Message: message, Err: cause}
}

// NewCanceledError reports a call abandoned because its context ended.
func NewCanceledError(cause error, requestID string) *Error {
	return &Error{
		Kind:      KindUnknown,
		Code:      CodeRequestCanceled,
		Message:   fmt.Sprintf("request canceled: %v", cause),
		RequestID: requestID,
		Timeout:   errors.Is(cause, context.DeadlineExceeded),
		Err:       cause,
	}
}

// AsError extracts a classified error from err.
func AsError(err error) (*Error, bool) {
	var lunaErr *Error
	if errors.As(err, &lunaErr) {
		return lunaErr, true
	}

	return nil, false
}

func isKind(err error, kind Kind) bool {
	lunaErr, ok := AsError(err)

	return ok && lunaErr.Kind == kind
}

// IsAuthentication checks if the error is an authentication failure.
func IsAuthentication(err error) bool {
	return isKind(err, KindAuthentication)
}

// IsAuthorization checks if the error is an authorization failure.
func IsAuthorization(err error) bool {
	return isKind(err, KindAuthorization)
}

// IsValidation checks if the error is a validation failure.
func IsValidation(err error) bool {
	return isKind(err, KindValidation)
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return isKind(err, KindNotFound)
}

// IsConflict checks if the error is a conflict error.
func IsConflict(err error) bool {
	return isKind(err, KindConflict)
}

// IsRateLimit checks if the error is a rate limit error.
func IsRateLimit(err error) bool {
	return isKind(err, KindRateLimit)
}

// IsNetwork checks if the error is a network error.
func IsNetwork(err error) bool {
	return isKind(err, KindNetwork)
}

// IsServer checks if the error is a server error.
func IsServer(err error) bool {
	return isKind(err, KindServer)
}

// IsRetryable checks if the error is classified and retryable.
func IsRetryable(err error) bool {
	lunaErr, ok := AsError(err)

	return ok && lunaErr.Retryable()
}

// IsCanceled checks if the call was abandoned because its context ended.
func IsCanceled(err error) bool {
	lunaErr, ok := AsError(err)

	return ok && lunaErr.Code == CodeRequestCanceled
}
