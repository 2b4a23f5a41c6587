package commands

import (
	"strings"

	"github.com/spf13/cobra"
)

// NewAskCmd creates the ask command.
func NewAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <query>",
		Short: "Recommend books for a single request",
		Long: `Answer one request and exit.

Examples:
  bookrec ask "I like books with murder and magic"
  bookrec ask top 5 comedy books
  bookrec ask --format json "highly rated romance novels"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAsk,
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	engine, err := loadEngine(cmd)
	if err != nil {
		return err
	}
	defer engine.Close()

	rec, err := engine.Recommender.Recommend(cmd.Context(), nil, strings.Join(args, " "))
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), rec)
	}
	writeRecommendation(cmd.OutOrStdout(), rec)
	return nil
}
