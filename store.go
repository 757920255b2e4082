package tagxml

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store persists whole documents under a key. Put must replace any previous
// document atomically: a reader sees either the old or the new content.
// Get must wrap ErrNotFound when no document exists under key.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// DirStore keeps documents as files below a root directory.
type DirStore struct {
	root string
	perm fs.FileMode
}

// NewDirStore creates a store rooted at dir. The directory is created on
// first write if it does not exist.
func NewDirStore(dir string) *DirStore {
	if dir == "" {
		dir = DefaultDir
	}
	return &DirStore{root: dir, perm: 0o644}
}

// Root returns the directory documents are stored in.
func (s *DirStore) Root() string {
	return s.root
}

// Put writes data to a uniquely named temporary file and renames it over the
// target, so a failed write never leaves a truncated document behind.
func (s *DirStore) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target := s.path(key)
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: failed to create directory %s: %w", ErrIO, dir, err)
	}

	tmp := filepath.Join(dir, ".tagxml-"+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, s.perm); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: failed to write %s: %w", ErrIO, target, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: failed to replace %s: %w", ErrIO, target, err)
	}
	return nil
}

// Get reads the whole document stored under key.
func (s *DirStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	target := s.path(key)
	info, err := os.Stat(target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, target)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to stat %s: %w", ErrIO, target, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrNotFound, target)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %w", ErrIO, target, err)
	}
	return data, nil
}

func (s *DirStore) path(key string) string {
	if filepath.IsAbs(key) {
		return key
	}
	return filepath.Join(s.root, key)
}
