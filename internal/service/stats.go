package service

import (
	"sort"
	"strings"

	"github.com/timmy/bookrec/internal/domain"
)

const (
	statsTopGenres = 5
	statsTopRated  = 3
)

// GenreCount is one row of the genre histogram.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// CollectionStats describes a catalog at a glance.
type CollectionStats struct {
	TotalBooks    int           `json:"total_books"`
	UniqueAuthors int           `json:"unique_authors"`
	AverageRating float64       `json:"average_rating"`
	TopGenres     []GenreCount  `json:"top_genres"`
	TopRated      []domain.Book `json:"top_rated"`
}

// ComputeCollectionStats counts authors, genres and ratings of books.
// Genre fields are split on commas; ties keep first-seen order.
func ComputeCollectionStats(books []domain.Book) CollectionStats {
	stats := CollectionStats{TotalBooks: len(books)}
	if len(books) == 0 {
		return stats
	}

	authors := make(map[string]struct{})
	genreIndex := make(map[string]int)
	var genres []GenreCount
	var ratingSum float64

	for _, book := range books {
		authors[book.Author] = struct{}{}
		ratingSum += book.Rating

		for _, genre := range strings.Split(book.Genre, ",") {
			genre = strings.TrimSpace(genre)
			if genre == "" {
				continue
			}
			if idx, ok := genreIndex[genre]; ok {
				genres[idx].Count++
				continue
			}
			genreIndex[genre] = len(genres)
			genres = append(genres, GenreCount{Genre: genre, Count: 1})
		}
	}

	stats.UniqueAuthors = len(authors)
	stats.AverageRating = ratingSum / float64(len(books))

	sort.SliceStable(genres, func(i, j int) bool {
		return genres[i].Count > genres[j].Count
	})
	if len(genres) > statsTopGenres {
		genres = genres[:statsTopGenres]
	}
	stats.TopGenres = genres

	stats.TopRated = TopRatedBooks(books, statsTopRated)
	return stats
}

// TopRatedBooks returns the n highest-rated books, ties in catalog order.
// A non-positive n returns every book sorted by rating.
func TopRatedBooks(books []domain.Book, n int) []domain.Book {
	sorted := make([]domain.Book, len(books))
	copy(sorted, books)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rating > sorted[j].Rating
	})
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
