// Package kvstore provides a NATS JetStream key-value storage backend.
//
// Payloads live in one KV bucket, keyed by the decimal message id. The bucket
// is created on construction when absent, so a live Store always has a
// usable bucket behind it. Transient NATS errors are retried with backoff;
// not-found is definitive and never retried.
package kvstore

import (
	"context"
	stderrors "errors"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360/messagestore/errors"
	"github.com/c360/messagestore/natsclient"
	"github.com/c360/messagestore/pkg/retry"
	"github.com/c360/messagestore/storage"
)

// keyValue is the slice of the KV wrapper the store uses.
// *natsclient.KVStore satisfies it.
type keyValue interface {
	Get(ctx context.Context, key string) (*natsclient.KVEntry, error)
	Put(ctx context.Context, key string, value []byte) (uint64, error)
}

// Config holds configuration for the KV-backed store.
type Config struct {
	// Bucket is the JetStream KV bucket name holding all payloads.
	Bucket string `json:"bucket"`

	// Description is stored on the bucket when this store creates it.
	Description string `json:"description"`
}

// DefaultConfig returns the default KV store configuration.
func DefaultConfig() Config {
	return Config{
		Bucket:      "messages",
		Description: "message payloads keyed by id",
	}
}

// Validate checks that the configuration names a bucket.
func (c Config) Validate() error {
	if c.Bucket == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "kvstore", "Validate",
			"bucket name must not be empty")
	}
	return nil
}

// Store is a NATS JetStream KV backend with one bucket for all payloads.
type Store struct {
	kv     keyValue
	bucket string
	retry  retry.Config
}

// New binds a store to its bucket on the given client, creating the bucket
// when it does not exist yet. The client must already be connected.
func New(ctx context.Context, client *natsclient.Client, cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if client == nil {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "kvstore", "New",
			"client must not be nil")
	}

	bucket, err := client.CreateKeyValueBucket(ctx, jetstream.KeyValueConfig{
		Bucket:      cfg.Bucket,
		Description: cfg.Description,
	})
	if err != nil {
		return nil, errors.WrapTransient(err, "kvstore", "New", "bind bucket "+cfg.Bucket)
	}

	return &Store{
		kv:     client.NewKVStore(bucket),
		bucket: cfg.Bucket,
		retry:  errors.DefaultRetryConfig().ToRetryConfig(),
	}, nil
}

// Locate maps an id to its bucket key. Pure and injective: the key is the
// decimal form of the id.
func (s *Store) Locate(id storage.ID) storage.Location {
	return storage.Location{Key: id.String()}
}

// Read returns the payload at loc, or a not-found error when the key is
// absent from the bucket. Transient errors are retried with backoff;
// not-found short-circuits the retry loop.
func (s *Store) Read(ctx context.Context, loc storage.Location) ([]byte, error) {
	payload, err := retry.DoWithResult(ctx, s.retry, func() ([]byte, error) {
		entry, getErr := s.kv.Get(ctx, loc.Key)
		if getErr != nil {
			if stderrors.Is(getErr, natsclient.ErrKVKeyNotFound) {
				return nil, retry.NonRetryable(errors.ErrKeyNotFound)
			}
			return nil, getErr
		}
		return entry.Value, nil
	})
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.ErrKeyNotFound
		}
		return nil, errors.WrapTransient(err, "kvstore", "Read", "get "+loc.Key)
	}

	return payload, nil
}

// Write fully replaces the payload at loc. KV puts are atomic per key, so a
// concurrent read observes either the prior payload or the new one.
// Transient errors are retried with backoff.
func (s *Store) Write(ctx context.Context, loc storage.Location, payload []byte) error {
	err := retry.Do(ctx, s.retry, func() error {
		_, putErr := s.kv.Put(ctx, loc.Key, payload)
		return putErr
	})
	if err != nil {
		return errors.WrapTransient(err, "kvstore", "Write", "put "+loc.Key)
	}
	return nil
}

// Bucket returns the bucket name this store is bound to.
func (s *Store) Bucket() string {
	return s.bucket
}

var _ storage.Backend = (*Store)(nil)
