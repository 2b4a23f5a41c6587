package repository

import (
	"context"
	"fmt"

	"github.com/timmy/bookrec/internal/domain"
	"gorm.io/gorm"
)

const cacheInsertBatchSize = 200

// EmbeddingCacheRepository stores the snapshot as one row per catalog position.
type EmbeddingCacheRepository struct {
	db    *gorm.DB
	model string
}

// NewEmbeddingCacheRepository creates a new EmbeddingCacheRepository.
// Parameters:
//   - db: GORM database handle used for queries.
//   - model: embedding model recorded on every row.
// Returns:
//   - *EmbeddingCacheRepository: repository instance bound to db.
func NewEmbeddingCacheRepository(db *gorm.DB, model string) *EmbeddingCacheRepository {
	return &EmbeddingCacheRepository{db: db, model: model}
}

// Name implements CacheStore.
func (r *EmbeddingCacheRepository) Name() string {
	return "database"
}

// Load reads every row ordered by position. Rows that disagree about the
// snapshot size, or leave a gap, mean an interrupted save and are rejected.
func (r *EmbeddingCacheRepository) Load(ctx context.Context) ([]domain.Vector, error) {
	var entries []domain.EmbeddingCacheEntry
	if err := r.db.WithContext(ctx).Order("position ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load embedding cache: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrCacheNotFound
	}

	vectors := make([]domain.Vector, len(entries))
	for i, entry := range entries {
		if entry.Position != i || entry.SnapshotSize != len(entries) {
			return nil, fmt.Errorf("inconsistent embedding cache at position %d (snapshot size %d, %d rows)",
				entry.Position, entry.SnapshotSize, len(entries))
		}
		vectors[i] = entry.Vector.Vector
	}
	return vectors, nil
}

// Save replaces all rows in a single transaction.
func (r *EmbeddingCacheRepository) Save(ctx context.Context, vectors []domain.Vector) error {
	entries := make([]domain.EmbeddingCacheEntry, len(vectors))
	for i, vec := range vectors {
		entries[i] = domain.EmbeddingCacheEntry{
			Position:     i,
			Vector:       domain.NullableVector{Vector: vec},
			SnapshotSize: len(vectors),
			Model:        r.model,
		}
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&domain.EmbeddingCacheEntry{}).Error; err != nil {
			return fmt.Errorf("failed to clear embedding cache: %w", err)
		}
		if len(entries) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(&entries, cacheInsertBatchSize).Error; err != nil {
			return fmt.Errorf("failed to write embedding cache: %w", err)
		}
		return nil
	})
}
