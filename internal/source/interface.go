package source

import (
	"context"
	"sort"

	"github.com/timmy/bookrec/internal/domain"
)

// Source defines the interface for book catalog sources.
type Source interface {
	// GetSourceID returns the unique identifier for this source.
	// Parameters: none.
	// Returns:
	//   - string: stable source identifier.
	GetSourceID() string

	// GetDisplayName returns a human-readable name for this source.
	// Parameters: none.
	// Returns:
	//   - string: display-friendly source name.
	GetDisplayName() string

	// LoadBooks reads the whole catalog with every field defaulted.
	// Parameters:
	//   - ctx: context for cancellation and deadlines.
	// Returns:
	//   - []domain.Book: catalog in source order, Index set to the position.
	//   - error: non-nil if the catalog cannot be read.
	LoadBooks(ctx context.Context) ([]domain.Book, error)
}

// LimitByRating keeps the maxBooks highest-rated books when the catalog is
// larger than that, ordered by rating with ties in source order, and
// renumbers Index. A catalog within the limit, or maxBooks <= 0, is returned as is.
func LimitByRating(books []domain.Book, maxBooks int) []domain.Book {
	if maxBooks <= 0 || len(books) <= maxBooks {
		return books
	}

	limited := make([]domain.Book, len(books))
	copy(limited, books)
	sort.SliceStable(limited, func(i, j int) bool {
		return limited[i].Rating > limited[j].Rating
	})
	limited = limited[:maxBooks]

	for i := range limited {
		limited[i].Index = i
	}
	return limited
}
