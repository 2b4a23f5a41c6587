package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/timmy/bookrec/internal/domain"
	"github.com/timmy/bookrec/internal/storage"
)

// ObjectCacheStore keeps the snapshot as one JSON object in S3-compatible storage.
type ObjectCacheStore struct {
	storage storage.ObjectStorage
	key     string
	model   string
}

// NewObjectCacheStore creates an object-storage-backed cache store.
// Parameters:
//   - store: object storage client.
//   - key: object key of the artifact.
//   - model: embedding model recorded in the artifact.
// Returns:
//   - *ObjectCacheStore: store bound to key.
func NewObjectCacheStore(store storage.ObjectStorage, key, model string) *ObjectCacheStore {
	return &ObjectCacheStore{storage: store, key: key, model: model}
}

// Name implements CacheStore.
func (s *ObjectCacheStore) Name() string {
	return "s3"
}

// Load implements CacheStore.
func (s *ObjectCacheStore) Load(ctx context.Context) ([]domain.Vector, error) {
	body, err := s.storage.Download(ctx, s.key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrCacheNotFound
		}
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache object: %w", err)
	}
	return decodeArtifact(data)
}

// Save implements CacheStore. A single PutObject replaces the object whole.
func (s *ObjectCacheStore) Save(ctx context.Context, vectors []domain.Vector) error {
	data, err := encodeArtifact(s.model, vectors)
	if err != nil {
		return err
	}
	return s.storage.Upload(ctx, s.key, bytes.NewReader(data), int64(len(data)), "application/json")
}
