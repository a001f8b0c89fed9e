// Package filestore provides a file-backed storage backend.
//
// Each message id maps to one file under a working directory:
// {root}/{id}.txt. The working directory is validated once at construction
// and trusted thereafter; writes are atomic via a temp file and rename, so a
// concurrent read observes either the prior payload or the new one, never a
// partial write.
package filestore

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/c360/messagestore/errors"
	"github.com/c360/messagestore/storage"
)

// Config holds configuration for the file-backed store.
type Config struct {
	// WorkingDirectory is the storage root. It must exist and be a
	// directory; the store never creates it.
	WorkingDirectory string `json:"working_directory"`

	// Extension is appended to the id to form the file name.
	Extension string `json:"extension"`
}

// DefaultConfig returns the default file store configuration rooted at dir.
func DefaultConfig(dir string) Config {
	return Config{
		WorkingDirectory: dir,
		Extension:        ".txt",
	}
}

// Validate checks that the configuration names an existing, accessible
// storage root.
func (c Config) Validate() error {
	if c.WorkingDirectory == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "filestore", "Validate",
			"working directory must not be empty")
	}

	info, err := os.Stat(c.WorkingDirectory)
	if err != nil {
		return errors.WrapInvalid(errors.ErrStorageRoot, "filestore", "Validate",
			fmt.Sprintf("stat %s: %v", c.WorkingDirectory, err))
	}
	if !info.IsDir() {
		return errors.WrapInvalid(errors.ErrStorageRoot, "filestore", "Validate",
			fmt.Sprintf("%s is not a directory", c.WorkingDirectory))
	}

	return nil
}

// Store is a file-backed backend with one file per message id.
type Store struct {
	root      string
	extension string
}

// New creates a file store rooted at cfg.WorkingDirectory. It fails at
// construction when the root is absent or inaccessible, so a live Store is
// guaranteed usable without per-operation existence checks.
func New(cfg Config) (*Store, error) {
	if cfg.Extension == "" {
		cfg.Extension = ".txt"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Store{
		root:      cfg.WorkingDirectory,
		extension: cfg.Extension,
	}, nil
}

// Locate maps an id to its file location: {id}{extension} relative to the
// root. Pure and injective: distinct ids never share a file.
func (s *Store) Locate(id storage.ID) storage.Location {
	return storage.Location{Key: id.String() + s.extension}
}

// path resolves a location to its absolute file path.
func (s *Store) path(loc storage.Location) string {
	return filepath.Join(s.root, loc.Key)
}

// Read returns the payload stored at loc, or a not-found error when no file
// exists there.
func (s *Store) Read(ctx context.Context, loc storage.Location) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapTransient(err, "filestore", "Read", "context check")
	}

	data, err := os.ReadFile(s.path(loc))
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.ErrKeyNotFound
		}
		return nil, errors.WrapTransient(err, "filestore", "Read", "read file")
	}

	return data, nil
}

// Write fully replaces the payload at loc. The payload is written to a temp
// file in the same directory and renamed over the target, so readers never
// observe a partial write.
func (s *Store) Write(ctx context.Context, loc storage.Location, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return errors.WrapTransient(err, "filestore", "Write", "context check")
	}

	target := s.path(loc)

	tmp, err := os.CreateTemp(s.root, loc.Key+".tmp-*")
	if err != nil {
		return errors.WrapTransient(err, "filestore", "Write", "create temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.WrapTransient(err, "filestore", "Write", "write temp file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.WrapTransient(err, "filestore", "Write", "sync temp file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.WrapTransient(err, "filestore", "Write", "close temp file")
	}

	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return errors.WrapTransient(err, "filestore", "Write", "rename into place")
	}

	return nil
}

// Root returns the validated storage root.
func (s *Store) Root() string {
	return s.root
}

var _ storage.Backend = (*Store)(nil)
