package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/timmy/bookrec/internal/logger"
	"github.com/timmy/bookrec/internal/service"
)

// Recommender is the part of service.RecommendService the handler needs.
type Recommender interface {
	Recommend(ctx context.Context, sess *service.Session, query string) (*service.Recommendation, error)
	Stats() service.CollectionStats
}

// RecommendHandler handles recommendation endpoints.
type RecommendHandler struct {
	recommender Recommender
}

// NewRecommendHandler creates a new recommend handler.
// Parameters:
//   - recommender: recommendation service instance.
// Returns:
//   - *RecommendHandler: initialized handler.
func NewRecommendHandler(recommender Recommender) *RecommendHandler {
	return &RecommendHandler{recommender: recommender}
}

// RecommendRequest is the body of POST /api/v1/recommend.
type RecommendRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

// BookResult is one ranked book in a response.
type BookResult struct {
	Rank         int     `json:"rank"`
	Title        string  `json:"title"`
	Author       string  `json:"author"`
	Genre        string  `json:"genre"`
	Rating       float64 `json:"rating"`
	Description  string  `json:"description"`
	Score        float64 `json:"score"`
	MatchPercent int     `json:"match_percent"`
}

// RecommendResponse is the body of a successful recommendation.
type RecommendResponse struct {
	QueryID string               `json:"query_id"`
	Query   string               `json:"query"`
	Intent  service.QueryIntent  `json:"intent"`
	Filter  service.FilterReport `json:"filter"`
	Results []BookResult         `json:"results"`
	Total   int                  `json:"total"`
}

// Recommend handles POST /api/v1/recommend.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *RecommendHandler) Recommend(c *gin.Context) {
	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}
	h.recommend(c, req)
}

// RecommendGet handles GET /api/v1/recommend?q=...
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *RecommendHandler) RecommendGet(c *gin.Context) {
	h.recommend(c, RecommendRequest{
		Query:     c.Query("q"),
		SessionID: c.Query("session_id"),
	})
}

func (h *RecommendHandler) recommend(c *gin.Context, req RecommendRequest) {
	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Query is required",
		})
		return
	}

	var sess *service.Session
	if req.SessionID != "" {
		sess = &service.Session{ID: req.SessionID}
	}

	ctx := c.Request.Context()
	rec, err := h.recommender.Recommend(ctx, sess, req.Query)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyInput):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Query is required",
			})
		case errors.Is(err, service.ErrQueryEmbedding):
			c.JSON(http.StatusBadGateway, gin.H{
				"error":     "Could not process the query, please try again",
				"retryable": true,
			})
		default:
			logger.CtxError(ctx, "Recommendation failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Recommendation failed: " + err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, newRecommendResponse(rec))
}

func newRecommendResponse(rec *service.Recommendation) RecommendResponse {
	results := make([]BookResult, len(rec.Results))
	for i, r := range rec.Results {
		results[i] = BookResult{
			Rank:         i + 1,
			Title:        r.Book.Title,
			Author:       r.Book.Author,
			Genre:        r.Book.Genre,
			Rating:       r.Book.Rating,
			Description:  r.Book.Description,
			Score:        r.Score,
			MatchPercent: r.MatchPercent(),
		}
	}
	return RecommendResponse{
		QueryID: rec.QueryID,
		Query:   rec.Query,
		Intent:  rec.Intent,
		Filter:  rec.Filter,
		Results: results,
		Total:   len(results),
	}
}

// GetStats handles GET /api/v1/stats.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *RecommendHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.recommender.Stats())
}
