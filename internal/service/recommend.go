package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/timmy/bookrec/internal/domain"
	"github.com/timmy/bookrec/internal/logger"
)

// Session is the per-user conversation state. It is passed into each call
// rather than kept by the service.
type Session struct {
	ID    string
	Turns int
}

// NewSession starts a session with a fresh id.
func NewSession() *Session {
	return &Session{ID: uuid.New().String()}
}

// Recommendation is the outcome of one query.
type Recommendation struct {
	QueryID string                `json:"query_id"`
	Query   string                `json:"query"`
	Intent  QueryIntent           `json:"intent"`
	Filter  FilterReport          `json:"filter"`
	Results []domain.RankedResult `json:"results"`
}

// RecommendService answers queries against the embedded catalog.
// The catalog is fixed for the lifetime of the service.
type RecommendService struct {
	books  []domain.Book
	parser *QueryIntentParser
	ranker *SimilarityRanker
}

// RecommendConfig configures RecommendService.
type RecommendConfig struct {
	// Books is the searchable catalog, normally CacheLoadResult.Searchable.
	Books        []domain.Book
	Embedder     Embedder
	DefaultCount int
	MaxCount     int
}

// NewRecommendService creates a new RecommendService.
func NewRecommendService(cfg *RecommendConfig) *RecommendService {
	return &RecommendService{
		books:  cfg.Books,
		parser: NewQueryIntentParser(cfg.DefaultCount, cfg.MaxCount),
		ranker: NewSimilarityRanker(cfg.Embedder),
	}
}

// Books returns the searchable catalog.
func (s *RecommendService) Books() []domain.Book {
	return s.books
}

// Stats summarises the searchable catalog.
func (s *RecommendService) Stats() CollectionStats {
	return ComputeCollectionStats(s.books)
}

// Recommend parses query, filters the catalog and ranks the candidates.
// It returns ErrEmptyInput for a blank query and an error wrapping
// ErrQueryEmbedding when the query could not be embedded. A nil sess is allowed.
func (s *RecommendService) Recommend(ctx context.Context, sess *Session, query string) (*Recommendation, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyInput
	}

	queryID := uuid.New().String()
	ctx = logger.SetQueryID(ctx, queryID)
	if sess != nil {
		sess.Turns++
		ctx = logger.SetSessionID(ctx, sess.ID)
	}

	start := time.Now()
	intent := s.parser.Parse(query)
	candidates, report := FilterCandidates(s.books, intent)

	logger.With(logger.Fields{
		"count":        intent.Count,
		"genres":       intent.Genres,
		"rating_floor": intent.RatingFloor,
		"candidates":   report.Candidates,
	}).Debug(ctx, "Parsed query intent")
	if report.ResetToCatalog {
		logger.CtxInfo(ctx, "No books match the filters, searching the whole catalog")
	}

	results, err := s.ranker.Rank(ctx, candidates, query, intent.Count)
	if err != nil {
		logger.CtxWarn(ctx, "Recommendation failed: %v", err)
		return nil, err
	}

	logger.With(logger.Fields{logger.FieldCount: len(results)}).
		WithDuration(time.Since(start).Milliseconds()).
		Info(ctx, "Recommendation completed")

	return &Recommendation{
		QueryID: queryID,
		Query:   query,
		Intent:  intent,
		Filter:  report,
		Results: results,
	}, nil
}
