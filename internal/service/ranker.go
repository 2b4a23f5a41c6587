package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/timmy/bookrec/internal/domain"
)

// MinScore is assigned to candidates without an embedding.
const MinScore = -1.0

var (
	// ErrQueryEmbedding means the query itself could not be embedded, as
	// opposed to a query that simply matched nothing.
	ErrQueryEmbedding = errors.New("could not embed query")

	// ErrDimensionMismatch means a book vector and the query vector differ
	// in length, which indicates a cache built with another model.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// SimilarityRanker scores candidates against a query by cosine similarity.
// It keeps no state between calls.
type SimilarityRanker struct {
	embedder Embedder
}

// NewSimilarityRanker creates a new SimilarityRanker.
func NewSimilarityRanker(embedder Embedder) *SimilarityRanker {
	return &SimilarityRanker{embedder: embedder}
}

// Rank embeds query and returns at most limit candidates ordered by score,
// highest first, ties kept in candidate order. A non-positive limit keeps
// every candidate.
func (r *SimilarityRanker) Rank(ctx context.Context, candidates []domain.Book, query string, limit int) ([]domain.RankedResult, error) {
	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryEmbedding, err)
	}
	return rankByVector(candidates, queryVec, limit)
}

func rankByVector(candidates []domain.Book, queryVec []float32, limit int) ([]domain.RankedResult, error) {
	results := make([]domain.RankedResult, len(candidates))
	for i, book := range candidates {
		score := MinScore
		if book.HasEmbedding() {
			if len(book.Embedding) != len(queryVec) {
				return nil, fmt.Errorf("%w: book %q has %d dimensions, query has %d",
					ErrDimensionMismatch, book.Title, len(book.Embedding), len(queryVec))
			}
			score = CosineSimilarity(book.Embedding, queryVec)
		}
		results[i] = domain.RankedResult{Book: book, Score: score}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0 when
// either vector has zero norm. a and b must have the same length.
func CosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Max(-1, math.Min(1, cos))
}
