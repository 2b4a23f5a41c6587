package domain

// Vector is an embedding produced by the configured provider.
// All non-nil vectors of one provider configuration share the same length.
type Vector []float32

// Book is one catalog item. Index is its position in the loaded catalog
// snapshot and doubles as its identity for the embedding cache.
type Book struct {
	Index       int     `json:"index"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Genre       string  `json:"genre"` // comma-joined tags
	Description string  `json:"description"`
	Rating      float64 `json:"rating"`
	Pages       int     `json:"pages,omitempty"`
	ReleaseYear int     `json:"release_year,omitempty"`

	// Embedding is nil when no vector could be generated for this book.
	Embedding Vector `json:"-"`
}

// HasEmbedding reports whether a vector is attached.
func (b *Book) HasEmbedding() bool {
	return len(b.Embedding) > 0
}

// RankedResult pairs a book with its cosine similarity to the query.
type RankedResult struct {
	Book  Book    `json:"book"`
	Score float64 `json:"score"`
}

// MatchPercent is the score rendered as a whole percentage, truncated toward zero.
func (r RankedResult) MatchPercent() int {
	return int(r.Score * 100)
}
