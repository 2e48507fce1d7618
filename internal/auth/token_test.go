package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/auth"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/constants"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/pkg/luna"
)

func TestTokenStore(t *testing.T) {
	t.Parallel()
	t.Run("new store is empty", testNewStoreEmpty)
	t.Run("set and get pair", testSetAndGetPair)
	t.Run("returned pair is a copy", testReturnedPairIsCopy)
	t.Run("clear pair", testClearPair)
	t.Run("concurrent access", testConcurrentPairAccess)
}

func testNewStoreEmpty(t *testing.T) {
	t.Parallel()

	store := auth.NewTokenStore()
	assert.Nil(t, store.Get())
}

func testSetAndGetPair(t *testing.T) {
	t.Parallel()

	expiresAt := time.Now().Add(time.Hour)
	store := auth.NewTokenStore()
	store.Set(luna.TokenPair{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    &expiresAt,
	})

	retrieved := store.Get()
	require.NotNil(t, retrieved)
	assert.Equal(t, "access", retrieved.AccessToken)
	assert.Equal(t, "refresh", retrieved.RefreshToken)
	require.NotNil(t, retrieved.ExpiresAt)
	assert.True(t, expiresAt.Equal(*retrieved.ExpiresAt))
}

func testReturnedPairIsCopy(t *testing.T) {
	t.Parallel()

	expiresAt := time.Now().Add(time.Hour)
	store := auth.NewTokenStore()
	store.Set(luna.TokenPair{AccessToken: "access", ExpiresAt: &expiresAt})

	first := store.Get()
	first.AccessToken = "changed"
	*first.ExpiresAt = time.Time{}

	second := store.Get()
	assert.Equal(t, "access", second.AccessToken)
	assert.True(t, expiresAt.Equal(*second.ExpiresAt))
}

func testClearPair(t *testing.T) {
	t.Parallel()

	store := auth.NewTokenStore()
	store.Set(luna.TokenPair{AccessToken: "access"})
	assert.NotNil(t, store.Get())

	store.Clear()
	assert.Nil(t, store.Get())
}

func testConcurrentPairAccess(t *testing.T) {
	t.Parallel()

	store := auth.NewTokenStore()
	done := make(chan bool)

	startPairSetters(store, done)
	startPairGetters(store, done)

	for range 4 {
		<-done
	}

	final := store.Get()
	require.NotNil(t, final)
	assert.True(t, final.AccessToken == "token-1" || final.AccessToken == "token-2")
}

func startPairSetters(store *auth.TokenStore, done chan bool) {
	for _, token := range []string{"token-1", "token-2"} {
		go func() {
			for range 100 {
				store.Set(luna.TokenPair{AccessToken: token})
			}

			done <- true
		}()
	}
}

func startPairGetters(store *auth.TokenStore, done chan bool) {
	for range 2 {
		go func() {
			for range 100 {
				_ = store.Get()
			}

			done <- true
		}()
	}
}

func signedJWT(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	return token
}

func TestExpiryFromJWT(t *testing.T) {
	t.Parallel()

	expiresAt := time.Now().Add(30 * time.Minute).Truncate(time.Second)

	tests := []struct {
		name    string
		token   string
		want    time.Time
		wantErr error
	}{
		{
			name:  "exp claim",
			token: signedJWT(t, jwt.MapClaims{"sub": "usr_1", "exp": expiresAt.Unix()}),
			want:  expiresAt,
		},
		{
			name:    "no exp claim",
			token:   signedJWT(t, jwt.MapClaims{"sub": "usr_1"}),
			wantErr: constants.ErrNoExpirationClaim,
		},
		{
			name:    "opaque token",
			token:   "opaque-access-token",
			wantErr: constants.ErrInvalidJWTFormat,
		},
		{
			name:    "garbage segments",
			token:   "a.b.c",
			wantErr: constants.ErrInvalidJWTFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := auth.ExpiryFromJWT(tt.token)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
		})
	}
}
