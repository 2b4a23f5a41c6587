package service

import (
	"regexp"
	"strings"

	"github.com/timmy/bookrec/internal/domain"
)

// FilterReport records which filters narrowed the candidates and which
// fallbacks fired, so callers can explain a broader-than-asked result.
type FilterReport struct {
	RatingApplied bool `json:"rating_applied"`
	GenreApplied  bool `json:"genre_applied"`
	// GenreSkipped is set when the genre filter would have left nothing.
	GenreSkipped bool `json:"genre_skipped"`
	// ResetToCatalog is set when even the rating filter left nothing.
	ResetToCatalog bool `json:"reset_to_catalog"`
	Candidates     int  `json:"candidates"`
}

// FilterCandidates narrows books by the intent's rating floor and genres.
// It never returns an empty set for a non-empty catalog: a genre filter that
// empties the set is skipped, and an empty result after that falls back to
// the full catalog. The input slice is not modified.
func FilterCandidates(books []domain.Book, intent QueryIntent) ([]domain.Book, FilterReport) {
	var report FilterReport
	candidates := books

	if intent.RatingFloor != nil {
		floor := *intent.RatingFloor
		candidates = filterBooks(candidates, func(b *domain.Book) bool {
			return b.Rating >= floor
		})
		report.RatingApplied = true
	}

	if pattern := genrePattern(intent.Genres); pattern != nil {
		byGenre := filterBooks(candidates, func(b *domain.Book) bool {
			return pattern.MatchString(b.Genre)
		})
		if len(byGenre) > 0 {
			candidates = byGenre
			report.GenreApplied = true
		} else {
			report.GenreSkipped = true
		}
	}

	if len(candidates) == 0 {
		candidates = books
		report.RatingApplied = false
		report.ResetToCatalog = true
	}

	report.Candidates = len(candidates)
	return candidates, report
}

// genrePattern builds a case-insensitive alternation of the genre tags.
func genrePattern(genres []string) *regexp.Regexp {
	if len(genres) == 0 {
		return nil
	}
	quoted := make([]string, len(genres))
	for i, genre := range genres {
		quoted[i] = regexp.QuoteMeta(genre)
	}
	return regexp.MustCompile("(?i)" + strings.Join(quoted, "|"))
}

func filterBooks(books []domain.Book, keep func(b *domain.Book) bool) []domain.Book {
	result := make([]domain.Book, 0, len(books))
	for i := range books {
		if keep(&books[i]) {
			result = append(result, books[i])
		}
	}
	return result
}
