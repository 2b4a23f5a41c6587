package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/timmy/bookrec/internal/app"
	"github.com/timmy/bookrec/internal/config"
	"github.com/timmy/bookrec/internal/logger"
)

// annotation read by the root pre-run hook to pick a default log level
const logLevelAnnotation = "log_level"

var (
	configPath   string
	catalogPath  string
	maxBooks     int
	outputFormat string
	verbose      bool
)

// NewRootCmd creates the bookrec root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookrec",
		Short: "Semantic book recommendations from a CSV catalog",
		Long: `bookrec recommends books from a CSV catalog by comparing the meaning
of your request with each book's title, author, genre and description.

Requests can ask for a number of results ("top 5"), genres ("fantasy",
"funny") and well-rated books ("highly rated").

Examples:
  bookrec embed --catalog books.csv
  bookrec ask "top 5 comedy books"
  bookrec chat --max-books 500
  bookrec stats --format json`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setupCommand,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to config file (default: ./configs/config.yaml)")
	pf.StringVar(&catalogPath, "catalog", "", "Path to the book catalog CSV, overrides catalog.path")
	pf.IntVar(&maxBooks, "max-books", 0, "Keep only the N highest-rated books, overrides catalog.max_books (0 keeps all)")
	pf.StringVar(&outputFormat, "format", "text", "Output format: text or json")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(
		NewEmbedCmd(),
		NewAskCmd(),
		NewChatCmd(),
		NewStatsCmd(),
	)

	return cmd
}

// ExecuteContext runs the root command; ctx is cancelled on interrupt.
func ExecuteContext(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func setupCommand(cmd *cobra.Command, args []string) error {
	switch outputFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported format %q (use text or json)", outputFormat)
	}
	if maxBooks < 0 {
		return fmt.Errorf("max-books must not be negative, got %d", maxBooks)
	}

	setupLogger(cmd.ErrOrStderr(), cmd.Annotations[logLevelAnnotation])
	return nil
}

// setupLogger sends logs to w so they never mix with command output.
// LOG_LEVEL and LOG_FORMAT still win when set.
func setupLogger(w io.Writer, defaultLevel string) {
	envCfg := logger.LoadFromEnv()
	envCfg.Output = w

	if os.Getenv("LOG_FORMAT") == "" {
		envCfg.Format = "text"
	}
	switch {
	case verbose:
		envCfg.Level = "debug"
	case os.Getenv("LOG_LEVEL") != "":
	case defaultLevel != "":
		envCfg.Level = defaultLevel
	default:
		envCfg.Level = "warn"
	}

	logger.SetDefaultLogger(logger.NewFromEnv(envCfg))
}

// loadEngine loads configuration, applies flag overrides and bootstraps the
// recommendation engine. The caller must Close the engine.
func loadEngine(cmd *cobra.Command) (*app.Engine, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if catalogPath != "" {
		cfg.Catalog.Path = catalogPath
	}
	if cmd.Flags().Changed("max-books") {
		cfg.Catalog.MaxBooks = maxBooks
	}

	engine, err := app.Bootstrap(cmd.Context(), cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing recommender: %w", err)
	}
	return engine, nil
}
