package auth_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/auth"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/constants"
)

const testAPIKey = "lk_test_abcdefghijklmnopqrstuvwxyz012345"

func TestNewAPIKeyProvider(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		key     string
		env     string
		wantErr error
	}{
		{name: "test key", key: testAPIKey, env: "test"},
		{name: "live key", key: "lk_live_" + strings.Repeat("A", 32), env: "live"},
		{name: "dev key with whitespace", key: "  lk_dev_" + strings.Repeat("9", 32) + "\n", env: "dev"},
		{name: "empty", key: "", wantErr: constants.ErrAPIKeyRequired},
		{name: "blank", key: "   ", wantErr: constants.ErrAPIKeyRequired},
		{name: "unknown environment", key: "lk_prod_" + strings.Repeat("a", 32), wantErr: constants.ErrInvalidAPIKeyFormat},
		{name: "short body", key: "lk_test_abc", wantErr: constants.ErrInvalidAPIKeyFormat},
		{name: "symbols in body", key: "lk_test_" + strings.Repeat("-", 32), wantErr: constants.ErrInvalidAPIKeyFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			provider, err := auth.NewAPIKeyProvider(tt.key)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, provider)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.env, provider.Environment())
		})
	}
}

func TestAPIKeyProvider_GetHeaders(t *testing.T) {
	t.Parallel()

	provider, err := auth.NewAPIKeyProvider(testAPIKey)
	require.NoError(t, err)

	for range 3 {
		headers, err := provider.GetHeaders(context.Background())
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"Authorization": "Bearer " + testAPIKey}, headers)
	}
}

func TestValidAPIKey(t *testing.T) {
	t.Parallel()

	assert.True(t, auth.ValidAPIKey(testAPIKey))
	assert.False(t, auth.ValidAPIKey(testAPIKey+"x"))
	assert.False(t, auth.ValidAPIKey("Bearer "+testAPIKey))
}
