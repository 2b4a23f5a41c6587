package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/timmy/bookrec/internal/config"
)

const testCatalog = `Book Name,Author Name,Genre,Description,Rating
The Hobbit,J.R.R. Tolkien,"Fantasy, Adventure",A hobbit and a dragon,4.7
Good Omens,Terry Pratchett,"Comedy, Fantasy",The end of the world is funny,4.3
Gone Girl,Gillian Flynn,"Mystery, Thriller",A marriage and a murder,4.1
`

// fakeGemini answers every request with the same vector and counts requests.
func fakeGemini(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"embedding":{"values":[1,0.5]}}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func testConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "books.csv")
	if err := os.WriteFile(catalogPath, []byte(testCatalog), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	return &config.Config{
		Catalog: config.CatalogConfig{Path: catalogPath},
		Embedding: config.EmbeddingConfig{
			Provider:      "gemini",
			Model:         "text-embedding-004",
			APIKey:        "test-key",
			BaseURL:       baseURL,
			Timeout:       time.Second,
			MaxAttempts:   1,
			MaxInputChars: 1500,
		},
		Cache: config.CacheConfig{
			Backend: "file",
			Path:    filepath.Join(dir, "cache.json"),
		},
		Search: config.SearchConfig{DefaultCount: 10, MaxCount: 20},
	}
}

func TestBootstrap_BuildsThenReusesCache(t *testing.T) {
	var hits atomic.Int32
	server := fakeGemini(t, &hits)
	cfg := testConfig(t, server.URL)

	engine, err := Bootstrap(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	defer engine.Close()

	if engine.Cache.FromCache {
		t.Error("first bootstrap should build the cache")
	}
	if engine.BookCount() != 3 {
		t.Errorf("BookCount() = %d, want 3", engine.BookCount())
	}
	if got := hits.Load(); got != 3 {
		t.Errorf("embedding requests = %d, want 3", got)
	}

	again, err := Bootstrap(context.Background(), cfg)
	if err != nil {
		t.Fatalf("second Bootstrap() error = %v", err)
	}
	defer again.Close()

	if !again.Cache.FromCache {
		t.Error("second bootstrap should reuse the cache")
	}
	if got := hits.Load(); got != 3 {
		t.Errorf("embedding requests after reuse = %d, want 3", got)
	}

	rec, err := again.Recommender.Recommend(context.Background(), nil, "funny fantasy books")
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	// comedy and fantasy both match, the mystery title is filtered out
	if len(rec.Results) != 2 {
		t.Fatalf("len(Results) = %d, want 2", len(rec.Results))
	}
	for _, r := range rec.Results {
		if strings.Contains(r.Book.Genre, "Mystery") {
			t.Errorf("unexpected result %q", r.Book.Title)
		}
	}
}

func TestBootstrap_MaxBooksLimitsCatalog(t *testing.T) {
	var hits atomic.Int32
	server := fakeGemini(t, &hits)
	cfg := testConfig(t, server.URL)
	cfg.Catalog.MaxBooks = 2

	engine, err := Bootstrap(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	defer engine.Close()

	if engine.Cache.Total != 2 {
		t.Errorf("Total = %d, want 2", engine.Cache.Total)
	}
	for _, book := range engine.Books() {
		if book.Title == "Gone Girl" {
			t.Error("lowest rated book should have been dropped")
		}
	}
}

func TestBootstrap_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *config.Config)
	}{
		{name: "missing catalog", mutate: func(cfg *config.Config) { cfg.Catalog.Path = filepath.Join(t.TempDir(), "nope.csv") }},
		{name: "missing api key", mutate: func(cfg *config.Config) { cfg.Embedding.APIKey = "" }},
		{name: "unknown backend", mutate: func(cfg *config.Config) { cfg.Cache.Backend = "redis" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			cfg := testConfig(t, fakeGemini(t, &hits).URL)
			tt.mutate(cfg)

			if _, err := Bootstrap(context.Background(), cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}
