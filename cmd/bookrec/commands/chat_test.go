package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/timmy/bookrec/internal/domain"
	"github.com/timmy/bookrec/internal/service"
)

type fakeRecommender struct {
	queries  []string
	sessions []*service.Session
	err      error
}

func (f *fakeRecommender) Recommend(ctx context.Context, sess *service.Session, query string) (*service.Recommendation, error) {
	f.queries = append(f.queries, query)
	f.sessions = append(f.sessions, sess)
	if f.err != nil {
		return nil, f.err
	}
	return &service.Recommendation{
		Query: query,
		Results: []domain.RankedResult{
			{Book: domain.Book{Title: "Dune", Author: "Frank Herbert", Rating: 4.6}, Score: 0.5},
		},
	}, nil
}

func (f *fakeRecommender) Stats() service.CollectionStats {
	return service.CollectionStats{TotalBooks: 42}
}

func TestClassifyChatInput(t *testing.T) {
	tests := []struct {
		input string
		want  chatAction
	}{
		{"", chatEmpty},
		{"   ", chatEmpty},
		{"quit", chatQuit},
		{"EXIT", chatQuit},
		{" bye ", chatQuit},
		{"q", chatQuit},
		{"stop", chatQuit},
		{"stats", chatStats},
		{"Statistics", chatStats},
		{"info", chatStats},
		{"collection", chatStats},
		{"help", chatHelp},
		{"?", chatHelp},
		{"stop the war books", chatQuery},
		{"top 5 comedy books", chatQuery},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := classifyChatInput(tt.input); got != tt.want {
				t.Errorf("classifyChatInput(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestChatLoop(t *testing.T) {
	rec := &fakeRecommender{}
	in := strings.NewReader("\nstats\ntop 2 fantasy books\nhelp\nfunny books\nquit\nnever read\n")

	var out bytes.Buffer
	if err := chatLoop(context.Background(), in, &out, rec, false); err != nil {
		t.Fatalf("chatLoop() error = %v", err)
	}

	if len(rec.queries) != 2 {
		t.Fatalf("got %d queries, want 2: %v", len(rec.queries), rec.queries)
	}
	if rec.queries[0] != "top 2 fantasy books" || rec.queries[1] != "funny books" {
		t.Errorf("queries = %v", rec.queries)
	}
	if rec.sessions[0] == nil || rec.sessions[0] != rec.sessions[1] {
		t.Error("expected every turn to share one session")
	}

	text := out.String()
	for _, want := range []string{
		"Please tell me what you're looking for.",
		"Total books:",
		"#1: Dune",
		"'fantasy books with dragons'",
		"Happy reading!",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestChatLoop_ContinuesAfterError(t *testing.T) {
	rec := &fakeRecommender{err: fmt.Errorf("%w: upstream down", service.ErrQueryEmbedding)}
	in := strings.NewReader("dragons\nmagic\n")

	var out bytes.Buffer
	if err := chatLoop(context.Background(), in, &out, rec, false); err != nil {
		t.Fatalf("chatLoop() error = %v", err)
	}

	if len(rec.queries) != 2 {
		t.Errorf("got %d queries, want 2", len(rec.queries))
	}
	if got := strings.Count(out.String(), "Please try again."); got != 2 {
		t.Errorf("error message printed %d times, want 2", got)
	}
	if !strings.Contains(out.String(), "Goodbye!") {
		t.Error("expected goodbye at end of input")
	}
}

func TestChatLoop_JSONOutput(t *testing.T) {
	rec := &fakeRecommender{}
	in := strings.NewReader("dragons\nq\n")

	var out bytes.Buffer
	if err := chatLoop(context.Background(), in, &out, rec, true); err != nil {
		t.Fatalf("chatLoop() error = %v", err)
	}
	if !strings.Contains(out.String(), `"title": "Dune"`) {
		t.Errorf("expected JSON result, got:\n%s", out.String())
	}
}

func TestChatLoop_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &fakeRecommender{err: errors.New("should not be called")}
	var out bytes.Buffer
	if err := chatLoop(ctx, blockingReader{}, &out, rec, false); err != nil {
		t.Fatalf("chatLoop() error = %v", err)
	}
	if len(rec.queries) != 0 {
		t.Errorf("got %d queries after cancellation", len(rec.queries))
	}
}

// blockingReader never returns, like an idle terminal.
type blockingReader struct{}

func (blockingReader) Read(p []byte) (int, error) {
	select {}
}
