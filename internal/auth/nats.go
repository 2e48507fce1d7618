package auth

import (
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/constants"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/json"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/pkg/luna"
)

// KeyValue is the subset of a NATS JetStream key-value bucket used to persist tokens.
type KeyValue interface {
	Get(key string) (nats.KeyValueEntry, error)
	Put(key string, value []byte) (uint64, error)
}

// NATSTokenStore persists token pairs in a NATS key-value bucket so that a
// refreshed pair survives restarts and can be shared between processes. Its
// Save method fits the refresh callback of TokenProvider.
type NATSTokenStore struct {
	kv  KeyValue
	key string
}

// NewNATSTokenStore creates a store over kv. An empty key uses the default.
func NewNATSTokenStore(kv KeyValue, key string) *NATSTokenStore {
	if key == "" {
		key = constants.DefaultTokenKey
	}

	return &NATSTokenStore{kv: kv, key: key}
}

// ConnectNATSTokenStore connects to the NATS server at url and opens, or
// creates, bucket. Call the returned function to close the connection.
func ConnectNATSTokenStore(url, bucket, key string) (*NATSTokenStore, func(), error) {
	if bucket == "" {
		bucket = constants.DefaultTokenBucket
	}

	conn, err := nats.Connect(url, nats.Name(constants.SDKName))
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()

		return nil, nil, fmt.Errorf("opening JetStream context: %w", err)
	}

	kv, err := js.KeyValue(bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket:      bucket,
			Description: "Luna SDK token pairs",
			History:     1,
		})
	}

	if err != nil {
		conn.Close()

		return nil, nil, fmt.Errorf("opening token bucket %q: %w", bucket, err)
	}

	return NewNATSTokenStore(kv, key), conn.Close, nil
}

// Save stores pair.
func (s *NATSTokenStore) Save(pair luna.TokenPair) error {
	data, err := json.Marshal(pair)
	if err != nil {
		return fmt.Errorf("encoding token pair: %w", err)
	}

	_, err = s.kv.Put(s.key, data)
	if err != nil {
		return fmt.Errorf("storing token pair: %w", err)
	}

	return nil
}

// Load returns the stored pair.
func (s *NATSTokenStore) Load() (luna.TokenPair, error) {
	entry, err := s.kv.Get(s.key)
	if errors.Is(err, nats.ErrKeyNotFound) {
		return luna.TokenPair{}, constants.ErrNoStoredTokens
	}

	if err != nil {
		return luna.TokenPair{}, fmt.Errorf("loading token pair: %w", err)
	}

	var pair luna.TokenPair

	err = json.Unmarshal(entry.Value(), &pair)
	if err != nil {
		return luna.TokenPair{}, fmt.Errorf("decoding token pair: %w", err)
	}

	if pair.AccessToken == "" {
		return luna.TokenPair{}, constants.ErrNoStoredTokens
	}

	return pair, nil
}
