package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/timmy/bookrec/internal/domain"
)

// ErrCacheNotFound is returned by a CacheStore that holds no snapshot yet.
var ErrCacheNotFound = errors.New("embedding cache not found")

// CacheStore persists one embedding snapshot: an ordered sequence of vectors
// addressed by catalog position, with nil marking a book that could not be embedded.
type CacheStore interface {
	// Name identifies the backend in logs.
	Name() string

	// Load returns the persisted snapshot, or ErrCacheNotFound.
	Load(ctx context.Context) ([]domain.Vector, error)

	// Save replaces the persisted snapshot.
	Save(ctx context.Context, vectors []domain.Vector) error
}

const artifactVersion = 1

// cacheArtifact is the serialized form used by the file and object stores.
type cacheArtifact struct {
	Version int             `json:"version"`
	Model   string          `json:"model,omitempty"`
	Size    int             `json:"size"`
	Vectors []domain.Vector `json:"vectors"`
}

func encodeArtifact(model string, vectors []domain.Vector) ([]byte, error) {
	if vectors == nil {
		vectors = []domain.Vector{}
	}
	data, err := json.Marshal(cacheArtifact{
		Version: artifactVersion,
		Model:   model,
		Size:    len(vectors),
		Vectors: vectors,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode cache artifact: %w", err)
	}
	return data, nil
}

func decodeArtifact(data []byte) ([]domain.Vector, error) {
	var artifact cacheArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to decode cache artifact: %w", err)
	}
	if artifact.Version != artifactVersion {
		return nil, fmt.Errorf("unsupported cache artifact version %d", artifact.Version)
	}
	if artifact.Size != len(artifact.Vectors) {
		return nil, fmt.Errorf("cache artifact truncated: size %d, %d vectors", artifact.Size, len(artifact.Vectors))
	}
	return artifact.Vectors, nil
}
