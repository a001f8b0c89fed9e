// Package boltstore provides a bbolt-backed storage backend.
//
// Payloads live in one bucket of a single database file, keyed by the decimal
// message id. bbolt gives single-writer/multi-reader transactions, so writes
// are atomic and a concurrent read observes either the prior payload or the
// new one, never a torn write.
package boltstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/c360/messagestore/errors"
	"github.com/c360/messagestore/storage"
)

const (
	boltFileMode os.FileMode = 0o600
	bucketName               = "messages"
)

var defaultBoltOptions = &bbolt.Options{Timeout: 5 * time.Second, NoGrowSync: true}

// Config holds configuration for the bbolt-backed store.
type Config struct {
	// Path is the database file location. Its parent directory must exist;
	// the file itself is created on first open.
	Path string `json:"path"`
}

// Validate checks that the configuration names a usable database path.
func (c Config) Validate() error {
	if c.Path == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "boltstore", "Validate",
			"database path must not be empty")
	}

	dir := filepath.Dir(c.Path)
	info, err := os.Stat(dir)
	if err != nil {
		return errors.WrapInvalid(errors.ErrStorageRoot, "boltstore", "Validate",
			fmt.Sprintf("stat %s: %v", dir, err))
	}
	if !info.IsDir() {
		return errors.WrapInvalid(errors.ErrStorageRoot, "boltstore", "Validate",
			fmt.Sprintf("%s is not a directory", dir))
	}

	return nil
}

// Store is a bbolt-backed backend with one bucket for all payloads.
type Store struct {
	db     *bbolt.DB
	bucket []byte
}

// New opens (or creates) the database at cfg.Path and ensures the payload
// bucket exists. Construction fails when the path is invalid or the file
// cannot be opened, so a live Store is guaranteed usable.
func New(cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	optionsCopy := *defaultBoltOptions
	db, err := bbolt.Open(cfg.Path, boltFileMode, &optionsCopy)
	if err != nil {
		return nil, errors.WrapInvalid(err, "boltstore", "New", "open database")
	}

	bucket := []byte(bucketName)
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists(bucket)
		return e
	}); err != nil {
		_ = db.Close()
		return nil, errors.WrapFatal(err, "boltstore", "New", "initialize bucket")
	}

	return &Store{db: db, bucket: bucket}, nil
}

// Locate maps an id to its bucket key. Pure and injective: the key is the
// decimal form of the id.
func (s *Store) Locate(id storage.ID) storage.Location {
	return storage.Location{Key: id.String()}
}

// Read returns the payload at loc, or a not-found error when absent.
func (s *Store) Read(ctx context.Context, loc storage.Location) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapTransient(err, "boltstore", "Read", "context check")
	}

	var payload []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		value := tx.Bucket(s.bucket).Get([]byte(loc.Key))
		if value == nil {
			return errors.ErrKeyNotFound
		}
		// The slice is only valid inside the transaction
		payload = append([]byte(nil), value...)
		return nil
	})
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, err
		}
		return nil, errors.WrapTransient(err, "boltstore", "Read", "view transaction")
	}

	return payload, nil
}

// Write fully replaces the payload at loc inside one write transaction.
func (s *Store) Write(ctx context.Context, loc storage.Location, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return errors.WrapTransient(err, "boltstore", "Write", "context check")
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(loc.Key), payload)
	})
	if err != nil {
		return errors.WrapTransient(err, "boltstore", "Write", "update transaction")
	}

	return nil
}

// Close closes the underlying database. The store is unusable afterwards.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return errors.WrapTransient(err, "boltstore", "Close", "close database")
	}
	return nil
}

var _ storage.Backend = (*Store)(nil)
