package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/timmy/bookrec/internal/service"
)

const descriptionPreviewChars = 200

var exampleQueries = []string{
	"I like books with murder and magic",
	"top 5 comedy books",
	"fantasy books with dragons",
	"highly rated romance novels",
}

// previewText cuts s to maxChars runes and marks the cut with "...".
func previewText(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars]) + "..."
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Fprintf(w, "%s\n", data)
	return nil
}

// filterNotes explains how the catalog was narrowed before ranking.
func filterNotes(rec *service.Recommendation) []string {
	var notes []string
	report := rec.Filter
	if report.RatingApplied && rec.Intent.RatingFloor != nil {
		notes = append(notes, fmt.Sprintf("Only books rated %.1f or higher", *rec.Intent.RatingFloor))
	}
	if report.GenreApplied {
		notes = append(notes, "Genres: "+strings.Join(rec.Intent.Genres, ", "))
	}
	if report.GenreSkipped {
		notes = append(notes, fmt.Sprintf("No books found for %s, searching all genres", strings.Join(rec.Intent.Genres, ", ")))
	}
	if report.ResetToCatalog {
		notes = append(notes, "No books match your filters, showing general recommendations")
	}
	return notes
}

func writeRecommendation(w io.Writer, rec *service.Recommendation) {
	for _, note := range filterNotes(rec) {
		fmt.Fprintf(w, "%s\n", note)
	}

	if len(rec.Results) == 0 {
		fmt.Fprintln(w, "No matches found. Try a different request?")
		writeExamples(w)
		return
	}

	fmt.Fprintf(w, "Found %d recommendations for %q\n", len(rec.Results), rec.Query)
	fmt.Fprintln(w, strings.Repeat("=", 80))

	for i, result := range rec.Results {
		book := result.Book
		fmt.Fprintf(w, "\n#%d: %s\n", i+1, book.Title)
		fmt.Fprintf(w, "   Author: %s\n", book.Author)
		fmt.Fprintf(w, "   Rating: %.1f/5\n", book.Rating)
		fmt.Fprintf(w, "   Genre: %s\n", book.Genre)
		fmt.Fprintf(w, "   Description: %s\n", previewText(book.Description, descriptionPreviewChars))
		fmt.Fprintf(w, "   Match: %d%%\n", result.MatchPercent())
		fmt.Fprintf(w, "   %s\n", strings.Repeat("-", 70))
	}
}

func writeStats(w io.Writer, stats service.CollectionStats) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Total books:\t%d\n", stats.TotalBooks)
	fmt.Fprintf(tw, "Unique authors:\t%d\n", stats.UniqueAuthors)
	fmt.Fprintf(tw, "Average rating:\t%.2f/5\n", stats.AverageRating)
	tw.Flush()

	if len(stats.TopGenres) > 0 {
		fmt.Fprintln(w, "\nTop genres:")
		for _, genre := range stats.TopGenres {
			fmt.Fprintf(w, "   %s: %d books\n", genre.Genre, genre.Count)
		}
	}
	if len(stats.TopRated) > 0 {
		fmt.Fprintln(w, "\nHighest rated:")
		for _, book := range stats.TopRated {
			fmt.Fprintf(w, "   • %s by %s - %.1f\n", book.Title, book.Author, book.Rating)
		}
	}
}

func writeExamples(w io.Writer) {
	fmt.Fprintln(w, "Try requests like:")
	for _, q := range exampleQueries {
		fmt.Fprintf(w, "   • '%s'\n", q)
	}
}

func writeChatHelp(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintln(w, "Describe what you'd like to read, for example:")
	fmt.Fprintln(w, "   'I like books with murder and magic'")
	fmt.Fprintln(w, "   'top 10 comedy books', 'best 5 fantasy novels'")
	fmt.Fprintln(w, "   'highly rated mystery books'")
	fmt.Fprintln(w, "Type 'stats' for catalog statistics, 'help' for examples, 'quit' to leave.")
	fmt.Fprintln(w, strings.Repeat("=", 70))
}
