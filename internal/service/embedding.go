package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/timmy/bookrec/internal/config"
	"github.com/timmy/bookrec/internal/logger"
)

var (
	// ErrEmptyInput is returned for blank text; no request is made.
	ErrEmptyInput = errors.New("embedding input is empty")

	// ErrEmbeddingUnavailable is returned once every attempt has failed.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

	// ErrMalformedResponse is returned when the provider answered without a vector.
	// It is not retried.
	ErrMalformedResponse = errors.New("malformed embedding response")
)

// EmbeddingProvider performs a single embedding request.
// Implementations must not retry; EmbeddingClient owns the retry policy.
type EmbeddingProvider interface {
	Name() string
	EmbedOnce(ctx context.Context, text string) ([]float32, error)
}

// Sleeper abstracts the delay between attempts and between cache-build calls.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to the Sleeper interface.
type SleeperFunc func(ctx context.Context, d time.Duration) error

// Sleep implements Sleeper.
func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

type timerSleeper struct{}

func (timerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RealSleeper waits on a timer and returns early when the context ends.
var RealSleeper Sleeper = timerSleeper{}

// EmbeddingClient turns one text into one vector with a bounded retry policy:
// MaxAttempts attempts, each under its own timeout, separated by RetryDelay.
type EmbeddingClient struct {
	provider      EmbeddingProvider
	sleeper       Sleeper
	model         string
	timeout       time.Duration
	maxAttempts   int
	retryDelay    time.Duration
	maxInputChars int
}

// EmbeddingClientOption customises an EmbeddingClient.
type EmbeddingClientOption func(*EmbeddingClient)

// WithSleeper replaces the real timer, mainly for tests.
func WithSleeper(s Sleeper) EmbeddingClientOption {
	return func(c *EmbeddingClient) {
		c.sleeper = s
	}
}

// NewEmbeddingClient wraps provider with the retry policy from cfg.
func NewEmbeddingClient(provider EmbeddingProvider, cfg *config.EmbeddingConfig, opts ...EmbeddingClientOption) *EmbeddingClient {
	c := &EmbeddingClient{
		provider:      provider,
		sleeper:       RealSleeper,
		model:         cfg.Model,
		timeout:       cfg.Timeout,
		maxAttempts:   cfg.MaxAttempts,
		retryDelay:    cfg.RetryDelay,
		maxInputChars: cfg.MaxInputChars,
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = 1
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewEmbeddingClientFromConfig builds the configured provider and wraps it.
func NewEmbeddingClientFromConfig(cfg *config.EmbeddingConfig, opts ...EmbeddingClientOption) (*EmbeddingClient, error) {
	if err := cfg.ValidateWithAPIKey(); err != nil {
		return nil, err
	}
	provider, err := NewEmbeddingProvider(cfg)
	if err != nil {
		return nil, err
	}
	return NewEmbeddingClient(provider, cfg, opts...), nil
}

// Model returns the provider and model identifier.
func (c *EmbeddingClient) Model() string {
	return c.provider.Name() + "/" + c.model
}

// Embed returns the vector for text.
// A failure is an ordinary outcome: callers get ErrEmptyInput, ErrMalformedResponse
// or ErrEmbeddingUnavailable and are expected to carry on without a vector.
func (c *EmbeddingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	input := prepareEmbeddingInput(text, c.maxInputChars)
	if input == "" {
		return nil, ErrEmptyInput
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		vec, err := c.attempt(ctx, input)
		if err == nil {
			return vec, nil
		}
		lastErr = err

		if attempt == 1 {
			logger.With(logger.Fields{
				logger.FieldComponent: "embedding",
				"provider":            c.provider.Name(),
			}).Warn(ctx, "Embedding request failed, retrying up to %d attempts: %v", c.maxAttempts, err)
		}

		if errors.Is(err, ErrMalformedResponse) {
			return nil, err
		}
		if ctx.Err() != nil {
			break
		}
		if attempt < c.maxAttempts {
			if err := c.sleeper.Sleep(ctx, c.retryDelay); err != nil {
				break
			}
		}
	}

	return nil, fmt.Errorf("%w: %w", ErrEmbeddingUnavailable, lastErr)
}

func (c *EmbeddingClient) attempt(ctx context.Context, input string) ([]float32, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	vec, err := c.provider.EmbedOnce(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("%w: empty vector", ErrMalformedResponse)
	}
	return vec, nil
}
