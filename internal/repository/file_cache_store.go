package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/timmy/bookrec/internal/domain"
)

// FileCacheStore keeps the snapshot in a single JSON file on local disk.
type FileCacheStore struct {
	path  string
	model string
}

// NewFileCacheStore creates a file-backed cache store.
// Parameters:
//   - path: location of the JSON artifact.
//   - model: embedding model recorded in the artifact.
// Returns:
//   - *FileCacheStore: store bound to path.
func NewFileCacheStore(path, model string) *FileCacheStore {
	return &FileCacheStore{path: path, model: model}
}

// Name implements CacheStore.
func (s *FileCacheStore) Name() string {
	return "file"
}

// Load implements CacheStore.
func (s *FileCacheStore) Load(ctx context.Context) ([]domain.Vector, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrCacheNotFound
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}
	return decodeArtifact(data)
}

// Save writes to a temporary file in the same directory and renames it over
// the previous snapshot, so readers never observe a half-written artifact.
func (s *FileCacheStore) Save(ctx context.Context, vectors []domain.Vector) error {
	data, err := encodeArtifact(s.model, vectors)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close cache file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}
