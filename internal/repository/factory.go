package repository

import (
	"context"
	"fmt"

	"github.com/timmy/bookrec/internal/config"
	"github.com/timmy/bookrec/internal/storage"
)

// NewCacheStore builds the CacheStore selected by cfg.Cache.Backend.
// Parameters:
//   - ctx: context used for backend setup calls such as bucket creation.
//   - cfg: full application configuration.
// Returns:
//   - CacheStore: the configured store.
//   - func() error: releases backend resources; never nil.
//   - error: non-nil if the backend cannot be initialised.
func NewCacheStore(ctx context.Context, cfg *config.Config) (CacheStore, func() error, error) {
	noop := func() error { return nil }
	model := cfg.Embedding.Provider + "/" + cfg.Embedding.Model

	switch cfg.Cache.Backend {
	case "file":
		return NewFileCacheStore(cfg.Cache.Path, model), noop, nil

	case "database":
		db, err := InitDB(&cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}
		return NewEmbeddingCacheRepository(db, model), closeFn, nil

	case "s3":
		objStore, err := storage.NewStorage(&storage.S3Config{
			Type:      storage.StorageType(cfg.Storage.Type),
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create object storage: %w", err)
		}
		if err := objStore.EnsureBucket(ctx); err != nil {
			return nil, nil, err
		}
		return NewObjectCacheStore(objStore, cfg.Cache.ObjectKey, model), noop, nil

	case "qdrant":
		store, err := NewQdrantCacheStore(&QdrantConnectionConfig{
			Host:       cfg.Qdrant.Host,
			Port:       cfg.Qdrant.Port,
			Collection: cfg.Cache.Collection,
			APIKey:     cfg.Qdrant.APIKey,
			UseTLS:     cfg.Qdrant.UseTLS,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
}
