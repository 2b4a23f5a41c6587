package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewEmbedCmd creates the embed command.
func NewEmbedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "embed",
		Short: "Build the embedding cache for the catalog",
		Long: `Embed every catalog book and persist the vectors to the configured
cache backend. A cache that already matches the catalog size is reused.

Examples:
  bookrec embed
  bookrec embed --catalog books.csv --max-books 500`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{logLevelAnnotation: "info"},
		RunE:        runEmbed,
	}
}

type embedSummary struct {
	Backend   string `json:"backend"`
	Total     int    `json:"total"`
	Embedded  int    `json:"embedded"`
	Excluded  int    `json:"excluded"`
	FromCache bool   `json:"from_cache"`
	Persisted bool   `json:"persisted"`
}

func runEmbed(cmd *cobra.Command, args []string) error {
	engine, err := loadEngine(cmd)
	if err != nil {
		return err
	}
	defer engine.Close()

	result := engine.Cache
	summary := embedSummary{
		Backend:   engine.Config.Cache.Backend,
		Total:     result.Total,
		Embedded:  result.Embedded,
		Excluded:  result.Excluded,
		FromCache: result.FromCache,
		Persisted: result.Persisted,
	}

	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		return writeJSON(out, summary)
	}

	if summary.FromCache {
		fmt.Fprintf(out, "Cache is up to date: %d of %d books embedded (%s)\n",
			summary.Embedded, summary.Total, summary.Backend)
		return nil
	}
	fmt.Fprintf(out, "Embedded %d of %d books (%d excluded)\n",
		summary.Embedded, summary.Total, summary.Excluded)
	if summary.Persisted {
		fmt.Fprintf(out, "Saved to %s cache\n", summary.Backend)
	} else {
		fmt.Fprintf(out, "Warning: could not save the %s cache, the next run will rebuild it\n", summary.Backend)
	}
	return nil
}
