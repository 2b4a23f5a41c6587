package app

import (
	"context"
	"fmt"
	"time"

	"github.com/timmy/bookrec/internal/config"
	"github.com/timmy/bookrec/internal/domain"
	"github.com/timmy/bookrec/internal/logger"
	"github.com/timmy/bookrec/internal/repository"
	"github.com/timmy/bookrec/internal/service"
	"github.com/timmy/bookrec/internal/source"
	"github.com/timmy/bookrec/internal/source/csvbooks"
)

// Engine is the fully wired recommendation stack shared by the API server
// and the CLI.
type Engine struct {
	Config      *config.Config
	Source      source.Source
	Cache       *service.CacheLoadResult
	Recommender *service.RecommendService

	closeStore func() error
}

// Bootstrap loads the catalog, attaches embeddings from the configured cache
// backend (building them when needed) and returns a ready Engine.
// Cancelling ctx during a rebuild aborts it without saving anything.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Engine, error) {
	ctx = logger.SetComponent(ctx, "bootstrap")
	start := time.Now()

	src := csvbooks.NewAdapter(cfg.Catalog.Path)
	books, err := src.LoadBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	loaded := len(books)
	books = source.LimitByRating(books, cfg.Catalog.MaxBooks)

	logger.With(logger.Fields{
		logger.FieldSource: src.GetSourceID(),
		logger.FieldTotal:  loaded,
		logger.FieldCount:  len(books),
	}).Info(ctx, "Loaded catalog")

	embedder, err := service.NewEmbeddingClientFromConfig(&cfg.Embedding)
	if err != nil {
		return nil, err
	}

	store, closeStore, err := repository.NewCacheStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s cache: %w", cfg.Cache.Backend, err)
	}

	cacheSvc := service.NewEmbeddingCacheService(&service.EmbeddingCacheConfig{
		Store:        store,
		Embedder:     embedder,
		RequestDelay: cfg.Cache.RequestDelay,
	})
	result, err := cacheSvc.LoadOrBuild(ctx, books)
	if err != nil {
		_ = closeStore()
		return nil, err
	}

	recommender := service.NewRecommendService(&service.RecommendConfig{
		Books:        result.Searchable,
		Embedder:     embedder,
		DefaultCount: cfg.Search.DefaultCount,
		MaxCount:     cfg.Search.MaxCount,
	})

	logger.With(logger.Fields{
		logger.FieldCount: len(result.Searchable),
		"from_cache":      result.FromCache,
	}).WithDuration(time.Since(start).Milliseconds()).
		Info(ctx, "Recommendation engine ready")

	return &Engine{
		Config:      cfg,
		Source:      src,
		Cache:       result,
		Recommender: recommender,
		closeStore:  closeStore,
	}, nil
}

// Books returns the searchable catalog.
func (e *Engine) Books() []domain.Book {
	return e.Recommender.Books()
}

// BookCount returns the number of searchable books.
func (e *Engine) BookCount() int {
	return len(e.Recommender.Books())
}

// Close releases the cache backend.
func (e *Engine) Close() error {
	if e.closeStore == nil {
		return nil
	}
	return e.closeStore()
}
