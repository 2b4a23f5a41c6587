package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/timmy/bookrec/internal/api/handler"
	"github.com/timmy/bookrec/internal/config"
	"github.com/timmy/bookrec/internal/domain"
	"github.com/timmy/bookrec/internal/service"
)

type staticEmbedder map[string][]float32

func (e staticEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := e[text]; ok {
		return vec, nil
	}
	return nil, service.ErrEmbeddingUnavailable
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	books := []domain.Book{
		{Index: 0, Title: "A", Author: "Ann", Genre: "fantasy", Rating: 4.5, Description: "dragons", Embedding: domain.Vector{1, 0}},
		{Index: 1, Title: "B", Author: "Bob", Genre: "comedy", Rating: 3.0, Description: "jokes", Embedding: domain.Vector{0, 1}},
	}
	svc := service.NewRecommendService(&service.RecommendConfig{
		Books:    books,
		Embedder: staticEmbedder{"top 1 fantasy books": {1, 0}},
	})
	return SetupRouter(RouterDeps{
		Recommender: svc,
		BookCount:   func() int { return len(svc.Books()) },
	}, config.ServerConfig{Mode: "test", CORS: config.CORSConfig{AllowAllOrigins: true}})
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["books"] != float64(2) {
		t.Errorf("body = %v", body)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestRouter_Recommend(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name       string
		req        *http.Request
		wantStatus int
		wantTitles []string
	}{
		{
			name:       "post",
			req:        httptest.NewRequest(http.MethodPost, "/api/v1/recommend", strings.NewReader(`{"query":"top 1 fantasy books"}`)),
			wantStatus: http.StatusOK,
			wantTitles: []string{"A"},
		},
		{
			name:       "get",
			req:        httptest.NewRequest(http.MethodGet, "/api/v1/recommend?q=top+1+fantasy+books", nil),
			wantStatus: http.StatusOK,
			wantTitles: []string{"A"},
		},
		{
			name:       "empty query",
			req:        httptest.NewRequest(http.MethodPost, "/api/v1/recommend", strings.NewReader(`{"query":"  "}`)),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid json",
			req:        httptest.NewRequest(http.MethodPost, "/api/v1/recommend", strings.NewReader(`{`)),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "query cannot be embedded",
			req:        httptest.NewRequest(http.MethodGet, "/api/v1/recommend?q=unknown", nil),
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, tt.req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus == http.StatusBadGateway {
				var body map[string]interface{}
				if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if body["retryable"] != true {
					t.Errorf("retryable = %v, want true", body["retryable"])
				}
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp handler.RecommendResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Total != len(tt.wantTitles) {
				t.Fatalf("total = %d, want %d", resp.Total, len(tt.wantTitles))
			}
			for i, title := range tt.wantTitles {
				if resp.Results[i].Title != title || resp.Results[i].Rank != i+1 {
					t.Errorf("results[%d] = %+v", i, resp.Results[i])
				}
			}
			if resp.Results[0].MatchPercent != 100 {
				t.Errorf("match_percent = %d, want 100", resp.Results[0].MatchPercent)
			}
			if resp.Intent.Count != 1 {
				t.Errorf("intent.count = %d, want 1", resp.Intent.Count)
			}
		})
	}
}

func TestRouter_Stats(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var stats service.CollectionStats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.TotalBooks != 2 || stats.UniqueAuthors != 2 || len(stats.TopRated) != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/recommend", nil)
	req.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}
}
