package commands

import (
	"github.com/spf13/cobra"
)

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show catalog statistics",
		Long: `Summarise the searchable catalog: book and author counts, average
rating, most common genres and the highest-rated books.`,
		Args: cobra.NoArgs,
		RunE: runStats,
	}
}

func runStats(cmd *cobra.Command, args []string) error {
	engine, err := loadEngine(cmd)
	if err != nil {
		return err
	}
	defer engine.Close()

	stats := engine.Recommender.Stats()
	if outputFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), stats)
	}
	writeStats(cmd.OutOrStdout(), stats)
	return nil
}
