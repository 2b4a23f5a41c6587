package service

import (
	"strings"

	"github.com/timmy/bookrec/internal/domain"
)

const (
	defaultMaxInputChars    = 1500
	maxDescriptionRunes     = 300
	descriptionEllipsis     = "..."
	embeddingFieldSeparator = " | "
)

// prepareEmbeddingInput flattens line breaks, truncates to maxChars runes and
// trims. An empty result means there is nothing to embed.
func prepareEmbeddingInput(text string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = defaultMaxInputChars
	}
	text = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(text)
	text = truncateRunes(text, maxChars)
	return strings.TrimSpace(text)
}

// bookEmbeddingText describes a book for the embedding provider.
func bookEmbeddingText(book *domain.Book) string {
	segments := []string{
		"Title: " + book.Title,
		"Author: " + book.Author,
		"Genre: " + book.Genre,
		"Description: " + truncateRunes(book.Description, maxDescriptionRunes) + descriptionEllipsis,
	}
	return strings.Join(segments, embeddingFieldSeparator)
}

func truncateRunes(text string, limit int) string {
	if limit < 0 || len(text) <= limit {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
