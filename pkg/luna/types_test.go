package luna_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eclipse-Softworks/Luna-SDK-sub001/pkg/luna"
)

func TestRetryPolicy_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, luna.DefaultRetryPolicy().Validate())

	zeroRetries := luna.DefaultRetryPolicy()
	zeroRetries.MaxRetries = 0
	require.NoError(t, zeroRetries.Validate())

	tests := map[string]func(*luna.RetryPolicy){
		"negative retries":     func(p *luna.RetryPolicy) { p.MaxRetries = -1 },
		"zero initial delay":   func(p *luna.RetryPolicy) { p.InitialDelay = 0 },
		"max below initial":    func(p *luna.RetryPolicy) { p.MaxDelay = p.InitialDelay - time.Millisecond },
		"shrinking multiplier": func(p *luna.RetryPolicy) { p.Multiplier = 0.5 },
		"constant multiplier":  func(p *luna.RetryPolicy) { p.Multiplier = 1 },
		"jitter above one":     func(p *luna.RetryPolicy) { p.JitterFraction = 1.5 },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			policy := luna.DefaultRetryPolicy()
			mutate(&policy)
			require.ErrorIs(t, policy.Validate(), luna.ErrInvalidRetryPolicy)
		})
	}
}

func TestRequest_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, (&luna.Request{Path: "/v1/users"}).Validate())
	require.NoError(t, (&luna.Request{Method: "PATCH", Path: "/v1/users/usr_1"}).Validate())
	require.ErrorIs(t, (&luna.Request{Method: "FETCH"}).Validate(), luna.ErrInvalidRequest)
	require.ErrorIs(t, (&luna.Request{Method: "HEAD"}).Validate(), luna.ErrInvalidRequest)
	require.ErrorIs(t, (&luna.Request{Method: "OPTIONS"}).Validate(), luna.ErrInvalidRequest)
	require.ErrorIs(t, (&luna.Request{Timeout: -time.Second}).Validate(), luna.ErrInvalidRequest)

	var nilRequest *luna.Request
	require.ErrorIs(t, nilRequest.Validate(), luna.ErrInvalidRequest)
}

func TestListParams(t *testing.T) {
	t.Parallel()

	var nilParams *luna.ListParams
	assert.Empty(t, nilParams.Values())
	require.NoError(t, nilParams.Validate())

	params := &luna.ListParams{Limit: 50, Cursor: "abc"}
	assert.Equal(t, "cursor=abc&limit=50", params.Values().Encode())
	require.NoError(t, params.Validate())

	require.Error(t, (&luna.ListParams{Limit: 101}).Validate())
	require.Error(t, (&luna.ListParams{Limit: -1}).Validate())
}

func TestRequestIDContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Empty(t, luna.RequestIDFromContext(ctx))

	ctx = luna.WithRequestID(ctx, "req_custom")
	assert.Equal(t, "req_custom", luna.RequestIDFromContext(ctx))
}

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]luna.LogLevel{
		"trace":   luna.LogLevelTrace,
		"DEBUG":   luna.LogLevelDebug,
		"info":    luna.LogLevelInfo,
		"":        luna.LogLevelInfo,
		"warning": luna.LogLevelWarn,
		"error":   luna.LogLevelError,
	}

	for name, want := range tests {
		got, err := luna.ParseLogLevel(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := luna.ParseLogLevel("verbose")
	require.Error(t, err)
	assert.Equal(t, "warn", luna.LogLevelWarn.String())

	text, err := luna.LogLevelDebug.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "debug", string(text))

	var level luna.LogLevel
	require.NoError(t, level.UnmarshalText([]byte("ERROR")))
	assert.Equal(t, luna.LogLevelError, level)
	require.Error(t, level.UnmarshalText([]byte("loud")))
}
