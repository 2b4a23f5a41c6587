package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/timmy/bookrec/internal/domain"
	"github.com/timmy/bookrec/internal/repository"
)

var errTransport = errors.New("connection reset")

// scriptedProvider returns responses[i] for the i-th call, repeating the last one.
type scriptedProvider struct {
	mu        sync.Mutex
	responses []providerResponse
	inputs    []string
}

type providerResponse struct {
	vec []float32
	err error
}

func (p *scriptedProvider) Name() string { return "fake" }

func (p *scriptedProvider) EmbedOnce(ctx context.Context, text string) ([]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	idx := len(p.inputs)
	p.inputs = append(p.inputs, text)
	if idx >= len(p.responses) {
		idx = len(p.responses) - 1
	}
	r := p.responses[idx]
	return r.vec, r.err
}

func (p *scriptedProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.inputs)
}

// recordingSleeper returns immediately and remembers each requested delay.
type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()
	return ctx.Err()
}

// mapEmbedder answers from a fixed table; unknown texts fail.
type mapEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	calls   int
}

func (e *mapEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	vec, ok := e.vectors[text]
	if !ok {
		return nil, ErrEmbeddingUnavailable
	}
	return vec, nil
}

// funcEmbedder delegates to fn and counts calls.
type funcEmbedder struct {
	mu    sync.Mutex
	fn    func(text string) ([]float32, error)
	calls int
}

func (e *funcEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	return e.fn(text)
}

type memoryCacheStore struct {
	vectors []domain.Vector
	present bool
	loadErr error
	saveErr error
	saves   int
}

func (s *memoryCacheStore) Name() string { return "memory" }

func (s *memoryCacheStore) Load(ctx context.Context) ([]domain.Vector, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if !s.present {
		return nil, repository.ErrCacheNotFound
	}
	return s.vectors, nil
}

func (s *memoryCacheStore) Save(ctx context.Context, vectors []domain.Vector) error {
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.vectors = append([]domain.Vector(nil), vectors...)
	s.present = true
	return nil
}

func sampleCatalog() []domain.Book {
	return []domain.Book{
		{Index: 0, Title: "A", Author: "Ann", Genre: "fantasy", Rating: 4.5, Embedding: domain.Vector{1, 0}},
		{Index: 1, Title: "B", Author: "Bob", Genre: "comedy", Rating: 3.0, Embedding: domain.Vector{0, 1}},
	}
}

func floatPtr(v float64) *float64 { return &v }
