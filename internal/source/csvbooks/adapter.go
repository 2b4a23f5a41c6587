package csvbooks

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/timmy/bookrec/internal/domain"
	"github.com/timmy/bookrec/internal/source"
)

// Defaults for missing or unparsable cells.
const (
	DefaultTitle       = "Unknown Title"
	DefaultAuthor      = "Unknown Author"
	DefaultGenre       = "Fiction"
	DefaultDescription = "No description available"
	DefaultRating      = 4.0
	DefaultPages       = 300
	DefaultReleaseYear = 2000
)

// columnAliases lists the accepted headers for each field, canonical name first.
var columnAliases = map[string][]string{
	"title":        {"Book Name", "title"},
	"author":       {"Author Name", "author"},
	"genre":        {"Genre", "genres"},
	"description":  {"Description", "description"},
	"rating":       {"Rating", "rating"},
	"pages":        {"Length", "pages"},
	"release_year": {"Release Year", "release_year"},
}

// Adapter implements source.Source for a CSV catalog with a header row.
type Adapter struct {
	path string
}

var _ source.Source = (*Adapter)(nil)

// NewAdapter creates a new CSV catalog adapter.
// Parameters:
//   - path: path to the CSV file.
// Returns:
//   - *Adapter: initialized adapter.
func NewAdapter(path string) *Adapter {
	return &Adapter{path: path}
}

// GetSourceID returns the unique identifier for this source.
func (a *Adapter) GetSourceID() string {
	return "csv:" + filepath.Base(a.path)
}

// GetDisplayName returns a human-readable name for this source.
func (a *Adapter) GetDisplayName() string {
	return "CSV catalog " + a.path
}

// LoadBooks reads and normalises every row of the file.
func (a *Adapter) LoadBooks(ctx context.Context) ([]domain.Book, error) {
	f, err := os.Open(a.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	return ReadBooks(ctx, f)
}

// ReadBooks parses a CSV catalog from r.
func ReadBooks(ctx context.Context, r io.Reader) ([]domain.Book, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("catalog is empty")
		}
		return nil, fmt.Errorf("failed to read catalog header: %w", err)
	}
	columns := resolveColumns(header)

	var books []domain.Book
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog line %d: %w", line, err)
		}

		cell := func(field string) string {
			idx, ok := columns[field]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		books = append(books, domain.Book{
			Index:       len(books),
			Title:       stringOr(cell("title"), DefaultTitle),
			Author:      stringOr(cell("author"), DefaultAuthor),
			Genre:       stringOr(cell("genre"), DefaultGenre),
			Description: stringOr(cell("description"), DefaultDescription),
			Rating:      floatOr(cell("rating"), DefaultRating),
			Pages:       int(floatOr(cell("pages"), DefaultPages)),
			ReleaseYear: int(floatOr(cell("release_year"), DefaultReleaseYear)),
		})
	}

	return books, nil
}

// resolveColumns maps each field to the first header that matches one of its aliases.
func resolveColumns(header []string) map[string]int {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, seen := positions[name]; !seen {
			positions[name] = i
		}
	}

	columns := make(map[string]int, len(columnAliases))
	for field, aliases := range columnAliases {
		for _, alias := range aliases {
			if idx, ok := positions[alias]; ok {
				columns[field] = idx
				break
			}
		}
	}
	return columns
}

func stringOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func floatOr(value string, fallback float64) float64 {
	if value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) {
		return fallback
	}
	return f
}
