package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/timmy/bookrec/internal/domain"
	"github.com/timmy/bookrec/internal/service"
)

func TestPreviewText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxChars int
		want     string
	}{
		{name: "short text unchanged", input: "hello", maxChars: 10, want: "hello"},
		{name: "exact length unchanged", input: "hello", maxChars: 5, want: "hello"},
		{name: "long text cut", input: "hello world", maxChars: 5, want: "hello..."},
		{name: "multibyte runes kept whole", input: "día de campo", maxChars: 3, want: "día..."},
		{name: "empty", input: "", maxChars: 5, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := previewText(tt.input, tt.maxChars); got != tt.want {
				t.Errorf("previewText(%q, %d) = %q, want %q", tt.input, tt.maxChars, got, tt.want)
			}
		})
	}
}

func TestWriteRecommendation(t *testing.T) {
	floor := 4.0
	rec := &service.Recommendation{
		Query: "highly rated fantasy",
		Intent: service.QueryIntent{
			Query:       "highly rated fantasy",
			Count:       2,
			Genres:      []string{"fantasy"},
			RatingFloor: &floor,
		},
		Filter: service.FilterReport{RatingApplied: true, GenreApplied: true, Candidates: 2},
		Results: []domain.RankedResult{
			{
				Book: domain.Book{
					Title:       "The Hobbit",
					Author:      "J.R.R. Tolkien",
					Genre:       "Fantasy, Adventure",
					Description: strings.Repeat("a", 250),
					Rating:      4.7,
				},
				Score: 0.876,
			},
		},
	}

	var buf bytes.Buffer
	writeRecommendation(&buf, rec)
	out := buf.String()

	for _, want := range []string{
		"Only books rated 4.0 or higher",
		"Genres: fantasy",
		`Found 1 recommendations for "highly rated fantasy"`,
		"#1: The Hobbit",
		"Author: J.R.R. Tolkien",
		"Rating: 4.7/5",
		"Match: 87%",
		strings.Repeat("a", 200) + "...",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, strings.Repeat("a", 201)) {
		t.Error("description was not truncated to 200 characters")
	}
}

func TestWriteRecommendation_Fallbacks(t *testing.T) {
	rec := &service.Recommendation{
		Query:  "romance about dragons",
		Intent: service.QueryIntent{Genres: []string{"romance"}},
		Filter: service.FilterReport{GenreSkipped: true, ResetToCatalog: true},
	}

	var buf bytes.Buffer
	writeRecommendation(&buf, rec)
	out := buf.String()

	for _, want := range []string{
		"No books found for romance, searching all genres",
		"showing general recommendations",
		"No matches found",
		"'top 5 comedy books'",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestWriteStats(t *testing.T) {
	stats := service.CollectionStats{
		TotalBooks:    3,
		UniqueAuthors: 2,
		AverageRating: 4.25,
		TopGenres:     []service.GenreCount{{Genre: "Fantasy", Count: 2}},
		TopRated:      []domain.Book{{Title: "Dune", Author: "Frank Herbert", Rating: 4.9}},
	}

	var buf bytes.Buffer
	writeStats(&buf, stats)
	out := buf.String()

	for _, want := range []string{"Total books:", "3", "4.25/5", "Fantasy: 2 books", "Dune by Frank Herbert - 4.9"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}
