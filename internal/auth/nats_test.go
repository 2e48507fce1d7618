package auth_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/auth"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/constants"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/pkg/luna"
)

var errBucketUnavailable = errors.New("bucket unavailable")

type MockEntry struct {
	key      string
	value    []byte
	revision uint64
}

func (e *MockEntry) Bucket() string             { return constants.DefaultTokenBucket }
func (e *MockEntry) Key() string                { return e.key }
func (e *MockEntry) Value() []byte              { return e.value }
func (e *MockEntry) Revision() uint64           { return e.revision }
func (e *MockEntry) Created() time.Time         { return time.Time{} }
func (e *MockEntry) Delta() uint64              { return 0 }
func (e *MockEntry) Operation() nats.KeyValueOp { return nats.KeyValuePut }

type MockKeyValue struct {
	mu       sync.Mutex
	entries  map[string][]byte
	revision uint64
	err      error
}

func NewMockKeyValue() *MockKeyValue {
	return &MockKeyValue{entries: make(map[string][]byte)}
}

func (kv *MockKeyValue) Get(key string) (nats.KeyValueEntry, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	if kv.err != nil {
		return nil, kv.err
	}

	value, ok := kv.entries[key]
	if !ok {
		return nil, nats.ErrKeyNotFound
	}

	return &MockEntry{key: key, value: value, revision: kv.revision}, nil
}

func (kv *MockKeyValue) Put(key string, value []byte) (uint64, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	if kv.err != nil {
		return 0, kv.err
	}

	kv.revision++
	kv.entries[key] = append([]byte(nil), value...)

	return kv.revision, nil
}

func TestNATSTokenStore(t *testing.T) {
	t.Parallel()

	t.Run("load before save", func(t *testing.T) {
		t.Parallel()

		store := auth.NewNATSTokenStore(NewMockKeyValue(), "")

		_, err := store.Load()
		require.ErrorIs(t, err, constants.ErrNoStoredTokens)
	})

	t.Run("save then load", func(t *testing.T) {
		t.Parallel()

		kv := NewMockKeyValue()
		store := auth.NewNATSTokenStore(kv, "cli")
		expiresAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

		require.NoError(t, store.Save(luna.TokenPair{
			AccessToken:  "access",
			RefreshToken: "refresh",
			ExpiresAt:    &expiresAt,
		}))
		assert.Contains(t, kv.entries, "cli")

		pair, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, "access", pair.AccessToken)
		assert.Equal(t, "refresh", pair.RefreshToken)
		require.NotNil(t, pair.ExpiresAt)
		assert.True(t, expiresAt.Equal(*pair.ExpiresAt))
	})

	t.Run("bucket errors are wrapped", func(t *testing.T) {
		t.Parallel()

		kv := NewMockKeyValue()
		kv.err = errBucketUnavailable
		store := auth.NewNATSTokenStore(kv, "")

		require.ErrorIs(t, store.Save(luna.TokenPair{AccessToken: "a"}), errBucketUnavailable)

		_, err := store.Load()
		require.ErrorIs(t, err, errBucketUnavailable)
	})

	t.Run("persists refreshed pairs", func(t *testing.T) {
		t.Parallel()

		kv := NewMockKeyValue()
		store := auth.NewNATSTokenStore(kv, "")

		provider, err := auth.NewTokenProvider(expiringPair(time.Hour),
			auth.WithRefresher(&countingRefresher{}),
			auth.WithRefreshCallback(store.Save),
		)
		require.NoError(t, err)

		_, err = provider.Refresh(t.Context())
		require.NoError(t, err)

		pair, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, "new-access-1", pair.AccessToken)
		assert.Equal(t, "new-refresh", pair.RefreshToken)
	})
}
