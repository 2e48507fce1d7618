package luna

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/constants"
)

// ClassifyResponse maps a completed HTTP exchange to an error. It returns nil
// for statuses below 400. The response body may use either the flat
// {code, message, details} envelope or the nested {error: {...}} form; a body
// that cannot be parsed falls back to the status text and CodeUnknown.
func ClassifyResponse(status int, header http.Header, body []byte, requestID string) *Error {
	if status < http.StatusBadRequest {
		return nil
	}

	if id := header.Get(constants.HeaderRequestID); id != "" {
		requestID = id
	}

	code, message, details := parseEnvelope(body)
	if code == "" {
		code = CodeUnknown
	}

	if message == "" {
		message = statusText(status)
	}

	classified := &Error{
		Kind:      kindForStatus(status),
		Code:      code,
		Message:   message,
		Status:    status,
		RequestID: requestID,
		Details:   details,
	}

	switch status {
	case http.StatusTooManyRequests:
		classified.RetryAfter = ParseRetryAfter(header.Get(constants.HeaderRetryAfter), time.Now())
	case http.StatusRequestTimeout:
		classified.Timeout = true
	}

	return classified
}

// ClassifyTransport maps a failure that produced no HTTP response. An already
// classified error is returned as a copy when it needs the request ID filled in.
func ClassifyTransport(err error, requestID string) *Error {
	if lunaErr, ok := AsError(err); ok {
		if lunaErr.RequestID == "" {
			return lunaErr.WithRequestID(requestID)
		}

		return lunaErr
	}

	if errors.Is(err, context.Canceled) {
		return NewCanceledError(err, requestID)
	}

	if isTimeout(err) {
		return &Error{
			Kind:      KindNetwork,
			Code:      CodeNetworkTimeout,
			Message:   "request timed out",
			RequestID: requestID,
			Timeout:   true,
			Err:       err,
		}
	}

	return &Error{
		Kind:      KindNetwork,
		Code:      CodeNetworkConnection,
		Message:   fmt.Sprintf("network error: %v", err),
		RequestID: requestID,
		Err:       err,
	}
}

// ParseRetryAfter reads a Retry-After header given either as whole seconds or
// as an HTTP date. Missing, malformed, or past values yield zero.
func ParseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds <= 0 {
			return 0
		}

		return time.Duration(seconds) * time.Second
	}

	if at, err := http.ParseTime(value); err == nil {
		if wait := at.Sub(now); wait > 0 {
			return wait
		}
	}

	return 0
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusBadRequest:
		return KindValidation
	case status == http.StatusUnauthorized:
		return KindAuthentication
	case status == http.StatusForbidden:
		return KindAuthorization
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusRequestTimeout:
		return KindNetwork
	case status == http.StatusConflict:
		return KindConflict
	case status == http.StatusTooManyRequests:
		return KindRateLimit
	case status >= http.StatusInternalServerError:
		return KindServer
	default:
		return KindUnknown
	}
}

func parseEnvelope(body []byte) (string, string, map[string]interface{}) {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return "", "", nil
	}

	envelope := gjson.ParseBytes(body)
	if !envelope.IsObject() {
		return "", "", nil
	}

	if nested := envelope.Get("error"); nested.IsObject() {
		envelope = nested
	}

	var details map[string]interface{}
	if raw := envelope.Get("details"); raw.IsObject() {
		details, _ = raw.Value().(map[string]interface{})
	}

	return envelope.Get("code").String(), envelope.Get("message").String(), details
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}

func statusText(status int) string {
	if text := http.StatusText(status); text != "" {
		return text
	}

	return "HTTP " + strconv.Itoa(status)
}
