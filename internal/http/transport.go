package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/auth"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/constants"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/pkg/luna"
)

// authTransport asks the provider for headers on every attempt, so a token
// refreshed between attempts is picked up by the next one.
type authTransport struct {
	base     http.RoundTripper
	provider auth.Provider
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.provider == nil {
		return t.base.RoundTrip(req)
	}

	headers, err := t.provider.GetHeaders(req.Context())
	if err != nil {
		if req.Body != nil {
			_ = req.Body.Close()
		}

		return nil, authFailure(err, req.Header.Get(constants.HeaderRequestID))
	}

	authorized := req.Clone(req.Context())
	for name, value := range headers {
		authorized.Header.Set(name, value)
	}

	return t.base.RoundTrip(authorized)
}

// authFailure attributes a credential failure to the call that hit it. A
// refresh failure is shared by every caller that waited on it, so it is
// copied rather than stamped in place.
func authFailure(err error, requestID string) error {
	if lunaErr, ok := luna.AsError(err); ok {
		return lunaErr.WithRequestID(requestID)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	failure := luna.NewAuthenticationError(luna.CodeAuthInvalidKey, "obtaining credentials: "+err.Error(), err)
	failure.RequestID = requestID

	return failure
}
