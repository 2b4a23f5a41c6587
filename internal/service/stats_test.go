package service

import (
	"math"
	"reflect"
	"testing"

	"github.com/timmy/bookrec/internal/domain"
)

func TestComputeCollectionStats(t *testing.T) {
	books := []domain.Book{
		{Title: "A", Author: "Ann", Genre: "Fantasy, Adventure", Rating: 4.5},
		{Title: "B", Author: "Bob", Genre: "Comedy", Rating: 3.0},
		{Title: "C", Author: "Ann", Genre: "Adventure,Fantasy", Rating: 4.5},
		{Title: "D", Author: "Cid", Genre: "Romance, Comedy, Drama", Rating: 4.8},
		{Title: "E", Author: "Dee", Genre: "Horror, Mystery", Rating: 2.2},
	}

	stats := ComputeCollectionStats(books)

	if stats.TotalBooks != 5 || stats.UniqueAuthors != 4 {
		t.Errorf("totals = %d books / %d authors", stats.TotalBooks, stats.UniqueAuthors)
	}
	if math.Abs(stats.AverageRating-3.8) > 1e-9 {
		t.Errorf("AverageRating = %v, want 3.8", stats.AverageRating)
	}

	wantGenres := []GenreCount{
		{Genre: "Fantasy", Count: 2},
		{Genre: "Adventure", Count: 2},
		{Genre: "Comedy", Count: 2},
		{Genre: "Romance", Count: 1},
		{Genre: "Drama", Count: 1},
	}
	if !reflect.DeepEqual(stats.TopGenres, wantGenres) {
		t.Errorf("TopGenres = %v, want %v", stats.TopGenres, wantGenres)
	}

	if got := titles(stats.TopRated); !reflect.DeepEqual(got, []string{"D", "A", "C"}) {
		t.Errorf("TopRated = %v, want [D A C]", got)
	}
}

func TestComputeCollectionStats_Empty(t *testing.T) {
	stats := ComputeCollectionStats(nil)
	if stats.TotalBooks != 0 || stats.AverageRating != 0 || stats.TopGenres != nil {
		t.Errorf("stats = %+v", stats)
	}
}

func TestTopRatedBooks(t *testing.T) {
	books := []domain.Book{
		{Title: "low", Rating: 1},
		{Title: "high", Rating: 5},
		{Title: "mid-1", Rating: 3},
		{Title: "mid-2", Rating: 3},
	}

	if got := titles(TopRatedBooks(books, 3)); !reflect.DeepEqual(got, []string{"high", "mid-1", "mid-2"}) {
		t.Errorf("TopRatedBooks(3) = %v", got)
	}
	if got := titles(TopRatedBooks(books, 0)); len(got) != 4 {
		t.Errorf("TopRatedBooks(0) = %v, want all", got)
	}
	if books[0].Title != "low" {
		t.Error("input reordered")
	}
}
