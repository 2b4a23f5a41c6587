package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/timmy/bookrec/internal/service"
)

// NewChatCmd creates the interactive chat command.
func NewChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Ask for recommendations interactively",
		Long: `Start an interactive session. Type a request to get recommendations,
"stats" for catalog statistics, "help" for examples and "quit" to leave.`,
		Args: cobra.NoArgs,
		RunE: runChat,
	}
}

// chatRecommender is the part of RecommendService the chat loop needs.
type chatRecommender interface {
	Recommend(ctx context.Context, sess *service.Session, query string) (*service.Recommendation, error)
	Stats() service.CollectionStats
}

type chatAction int

const (
	chatQuery chatAction = iota
	chatEmpty
	chatQuit
	chatStats
	chatHelp
)

var chatKeywords = map[string]chatAction{
	"quit":       chatQuit,
	"exit":       chatQuit,
	"bye":        chatQuit,
	"q":          chatQuit,
	"stop":       chatQuit,
	"stats":      chatStats,
	"statistics": chatStats,
	"info":       chatStats,
	"collection": chatStats,
	"help":       chatHelp,
	"?":          chatHelp,
}

func classifyChatInput(line string) chatAction {
	line = strings.ToLower(strings.TrimSpace(line))
	if line == "" {
		return chatEmpty
	}
	if action, ok := chatKeywords[line]; ok {
		return action
	}
	return chatQuery
}

func runChat(cmd *cobra.Command, args []string) error {
	engine, err := loadEngine(cmd)
	if err != nil {
		return err
	}
	defer engine.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "Ready with %d books.\n", engine.BookCount())
	return chatLoop(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), engine.Recommender, outputFormat == "json")
}

// chatLoop reads one request per line until a quit command, end of input or
// cancellation of ctx. A failed request is reported and the loop continues.
func chatLoop(ctx context.Context, in io.Reader, out io.Writer, rec chatRecommender, jsonOutput bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sess := service.NewSession()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	writeChatHelp(out)

	for {
		fmt.Fprint(out, "\n> ")

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "\nGoodbye!")
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out, "\nGoodbye!")
				return nil
			}
			line = l
		}

		switch classifyChatInput(line) {
		case chatEmpty:
			fmt.Fprintln(out, "Please tell me what you're looking for.")
		case chatQuit:
			fmt.Fprintln(out, "Happy reading!")
			return nil
		case chatHelp:
			writeExamples(out)
		case chatStats:
			stats := rec.Stats()
			if jsonOutput {
				if err := writeJSON(out, stats); err != nil {
					return err
				}
				continue
			}
			writeStats(out, stats)
		case chatQuery:
			result, err := rec.Recommend(ctx, sess, line)
			if err != nil {
				if ctx.Err() != nil {
					fmt.Fprintln(out, "\nGoodbye!")
					return nil
				}
				writeChatError(out, err)
				continue
			}
			if jsonOutput {
				if err := writeJSON(out, result); err != nil {
					return err
				}
				continue
			}
			writeRecommendation(out, result)
		}
	}
}

func writeChatError(out io.Writer, err error) {
	switch {
	case errors.Is(err, service.ErrQueryEmbedding):
		fmt.Fprintln(out, "Could not process your request right now. Please try again.")
	default:
		fmt.Fprintf(out, "Something went wrong: %v\n", err)
	}
}
