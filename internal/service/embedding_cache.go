package service

import (
	"context"
	"errors"
	"time"

	"github.com/timmy/bookrec/internal/domain"
	"github.com/timmy/bookrec/internal/logger"
	"github.com/timmy/bookrec/internal/repository"
)

const (
	defaultRequestDelay  = 100 * time.Millisecond
	progressDetailLimit  = 10
	progressDetailEvery  = 50
	progressSummaryEvery = 100
)

// Embedder is the part of EmbeddingClient the cache and the ranker need.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// EmbeddingCacheConfig configures EmbeddingCacheService.
type EmbeddingCacheConfig struct {
	Store        repository.CacheStore
	Embedder     Embedder
	Sleeper      Sleeper
	RequestDelay time.Duration
}

// EmbeddingCacheService attaches a vector to every catalog book, reusing the
// persisted snapshot when it was built for a catalog of the same size.
type EmbeddingCacheService struct {
	store        repository.CacheStore
	embedder     Embedder
	sleeper      Sleeper
	requestDelay time.Duration
}

// CacheLoadResult summarises a LoadOrBuild call.
type CacheLoadResult struct {
	// Searchable holds the books that carry an embedding, in catalog order.
	Searchable []domain.Book
	Total      int
	Embedded   int
	// Excluded counts books dropped because no vector could be generated.
	Excluded  int
	FromCache bool
	// Persisted is false when saving a rebuilt snapshot failed.
	Persisted bool
}

// NewEmbeddingCacheService creates a new EmbeddingCacheService.
func NewEmbeddingCacheService(cfg *EmbeddingCacheConfig) *EmbeddingCacheService {
	sleeper := cfg.Sleeper
	if sleeper == nil {
		sleeper = RealSleeper
	}
	delay := cfg.RequestDelay
	if delay < 0 {
		delay = defaultRequestDelay
	}
	return &EmbeddingCacheService{
		store:        cfg.Store,
		embedder:     cfg.Embedder,
		sleeper:      sleeper,
		requestDelay: delay,
	}
}

// LoadOrBuild attaches embeddings to books in place and returns the
// searchable subset. Only context cancellation during a rebuild is returned
// as an error; a corrupt or mismatched snapshot is rebuilt and a failed save
// is logged.
func (s *EmbeddingCacheService) LoadOrBuild(ctx context.Context, books []domain.Book) (*CacheLoadResult, error) {
	ctx = logger.SetComponent(ctx, "embedding_cache")
	log := logger.With(logger.Fields{logger.FieldCacheBackend: s.store.Name()})

	vectors, err := s.store.Load(ctx)
	switch {
	case err == nil && len(vectors) == len(books):
		attachVectors(books, vectors)
		log.With(logger.Fields{logger.FieldTotal: len(books)}).
			Info(ctx, "Loaded embeddings from cache")
		return newCacheLoadResult(books, true, true), nil
	case err == nil:
		log.Info(ctx, "Cache holds %d embeddings for %d books, rebuilding", len(vectors), len(books))
	case errors.Is(err, repository.ErrCacheNotFound):
		log.Info(ctx, "No embedding cache found, building")
	default:
		log.Warn(ctx, "Embedding cache unreadable, rebuilding: %v", err)
	}

	start := time.Now()
	vectors, err = s.build(ctx, books)
	if err != nil {
		return nil, err
	}
	attachVectors(books, vectors)

	persisted := true
	if err := s.store.Save(ctx, vectors); err != nil {
		persisted = false
		log.Warn(ctx, "Failed to persist embedding cache: %v", err)
	}

	result := newCacheLoadResult(books, false, persisted)
	log.With(logger.Fields{
		logger.FieldTotal: result.Total,
		logger.FieldCount: result.Embedded,
		"excluded":        result.Excluded,
	}).WithDuration(time.Since(start).Milliseconds()).
		Info(ctx, "Built embedding cache")
	return result, nil
}

func (s *EmbeddingCacheService) build(ctx context.Context, books []domain.Book) ([]domain.Vector, error) {
	vectors := make([]domain.Vector, len(books))
	embedded := 0

	for i := range books {
		if i > 0 {
			if err := s.sleeper.Sleep(ctx, s.requestDelay); err != nil {
				return nil, err
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		vec, err := s.embedder.Embed(ctx, bookEmbeddingText(&books[i]))
		if err == nil {
			vectors[i] = vec
			embedded++
		}

		n := i + 1
		if n <= progressDetailLimit || n%progressDetailEvery == 0 {
			logger.CtxDebug(ctx, "Embedded %d/%d: %s (ok=%t)", n, len(books), books[i].Title, err == nil)
		}
		if n%progressSummaryEvery == 0 {
			logger.With(logger.Fields{logger.FieldCount: embedded, logger.FieldTotal: len(books)}).
				Info(ctx, "Embedding progress %d/%d", n, len(books))
		}
	}
	return vectors, nil
}

func attachVectors(books []domain.Book, vectors []domain.Vector) {
	for i := range books {
		books[i].Embedding = vectors[i]
	}
}

func newCacheLoadResult(books []domain.Book, fromCache, persisted bool) *CacheLoadResult {
	result := &CacheLoadResult{
		Searchable: make([]domain.Book, 0, len(books)),
		Total:      len(books),
		FromCache:  fromCache,
		Persisted:  persisted,
	}
	for _, book := range books {
		if book.HasEmbedding() {
			result.Searchable = append(result.Searchable, book)
		}
	}
	result.Embedded = len(result.Searchable)
	result.Excluded = result.Total - result.Embedded
	return result
}
