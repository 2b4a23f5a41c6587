package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	openai "github.com/sashabaranov/go-openai"
	"github.com/timmy/bookrec/internal/config"
)

const (
	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	jinaBaseURL   = "https://api.jina.ai"
)

// NewEmbeddingProvider creates the provider named by cfg.Provider.
func NewEmbeddingProvider(cfg *config.EmbeddingConfig) (EmbeddingProvider, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGeminiProvider(cfg), nil
	case "jina":
		return NewJinaProvider(cfg), nil
	case "openai":
		return NewOpenAIProvider(cfg), nil
	}
	return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
}

func trimBaseURL(baseURL, fallback string) string {
	if baseURL == "" {
		return fallback
	}
	return strings.TrimRight(baseURL, "/")
}

// GeminiProvider calls the Generative Language embedContent endpoint.
type GeminiProvider struct {
	client *resty.Client
	model  string
	apiKey string
}

// NewGeminiProvider creates a Gemini embedding provider.
func NewGeminiProvider(cfg *config.EmbeddingConfig) *GeminiProvider {
	client := resty.New()
	client.SetBaseURL(trimBaseURL(cfg.BaseURL, geminiBaseURL))
	client.SetHeader("Content-Type", "application/json")

	return &GeminiProvider{
		client: client,
		model:  strings.TrimPrefix(cfg.Model, "models/"),
		apiKey: cfg.APIKey,
	}
}

// Name implements EmbeddingProvider.
func (p *GeminiProvider) Name() string {
	return "gemini"
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiRequest struct {
	Model   string `json:"model"`
	Content struct {
		Parts []geminiPart `json:"parts"`
	} `json:"content"`
}

type geminiResponse struct {
	Embedding *struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// EmbedOnce implements EmbeddingProvider.
func (p *GeminiProvider) EmbedOnce(ctx context.Context, text string) ([]float32, error) {
	var req geminiRequest
	req.Model = "models/" + p.model
	req.Content.Parts = []geminiPart{{Text: text}}

	httpResp, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("key", p.apiKey).
		SetBody(req).
		Post("/models/" + p.model + ":embedContent")
	if err != nil {
		return nil, fmt.Errorf("failed to call Gemini API: %w", err)
	}

	var resp geminiResponse
	decodeErr := json.Unmarshal(httpResp.Body(), &resp)

	if httpResp.StatusCode() != http.StatusOK {
		if decodeErr == nil && resp.Error != nil && resp.Error.Message != "" {
			return nil, fmt.Errorf("Gemini API error: status %d: %s", httpResp.StatusCode(), resp.Error.Message)
		}
		return nil, fmt.Errorf("Gemini API error: status %d", httpResp.StatusCode())
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, decodeErr)
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("%w: embedding.values missing", ErrMalformedResponse)
	}

	return resp.Embedding.Values, nil
}

// JinaProvider calls the Jina embeddings API.
type JinaProvider struct {
	client *resty.Client
	model  string
}

// NewJinaProvider creates a Jina embedding provider.
func NewJinaProvider(cfg *config.EmbeddingConfig) *JinaProvider {
	client := resty.New()
	client.SetBaseURL(trimBaseURL(cfg.BaseURL, jinaBaseURL))
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")

	return &JinaProvider{
		client: client,
		model:  cfg.Model,
	}
}

// Name implements EmbeddingProvider.
func (p *JinaProvider) Name() string {
	return "jina"
}

type jinaRequest struct {
	Model         string   `json:"model"`
	Task          string   `json:"task,omitempty"`
	Input         []string `json:"input"`
	EmbeddingType string   `json:"embedding_type,omitempty"`
}

type jinaResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Detail string `json:"detail,omitempty"`
}

// EmbedOnce implements EmbeddingProvider.
// Books and queries share one embedding space, so the symmetric task is used.
func (p *JinaProvider) EmbedOnce(ctx context.Context, text string) ([]float32, error) {
	req := jinaRequest{
		Model:         p.model,
		Task:          "text-matching",
		Input:         []string{text},
		EmbeddingType: "float",
	}

	httpResp, err := p.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/v1/embeddings")
	if err != nil {
		return nil, fmt.Errorf("failed to call Jina API: %w", err)
	}

	var resp jinaResponse
	decodeErr := json.Unmarshal(httpResp.Body(), &resp)

	if httpResp.StatusCode() != http.StatusOK {
		if decodeErr == nil && resp.Detail != "" {
			return nil, fmt.Errorf("Jina API error: %s", resp.Detail)
		}
		return nil, fmt.Errorf("Jina API error: status %d", httpResp.StatusCode())
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, decodeErr)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", ErrMalformedResponse)
	}

	return resp.Data[0].Embedding, nil
}

// OpenAIProvider calls the OpenAI embeddings API, or any compatible gateway
// when a base URL is configured.
type OpenAIProvider struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// NewOpenAIProvider creates an OpenAI embedding provider.
func NewOpenAIProvider(cfg *config.EmbeddingConfig) *OpenAIProvider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientCfg),
		model:  openai.EmbeddingModel(cfg.Model),
	}
}

// Name implements EmbeddingProvider.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// EmbedOnce implements EmbeddingProvider.
func (p *OpenAIProvider) EmbedOnce(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: []string{text},
		Model: p.model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call OpenAI API: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", ErrMalformedResponse)
	}
	return resp.Data[0].Embedding, nil
}
