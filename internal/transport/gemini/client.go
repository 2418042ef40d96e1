// Package gemini talks to Google Gemini (AI Studio) through the official SDK
// for embeddings and answer generation.
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/yellowbooks/bizsearch/internal/domain"
	"github.com/yellowbooks/bizsearch/internal/metrics"
)

const providerName = "gemini"

const requestTimeout = 30 * time.Second

// Generation parameters, matching the OpenAI-side chat settings.
const (
	chatTemperature = 0.7
	chatMaxTokens   = 500
)

// systemPrompt frames every generation. The assistant answers in Mongolian
// about Ulaanbaatar businesses.
const systemPrompt = "Та Yellow Books-ийн туслах бөгөөд Улаанбаатар хотын " +
	"бизнесүүдийн талаар мэдээлэл өгдөг. Монгол хэлээр найрсаг байдлаар хариулна."

// Config holds the provider settings.
type Config struct {
	APIKey     string
	EmbedModel string
	ChatModel  string
	Logger     *zap.Logger
}

// Client implements domain.Embedder and domain.ChatModel via the Gemini SDK.
// With no API key the client is constructed degraded and every call returns
// ErrProviderConfig, so a misconfigured provider surfaces per request rather
// than blocking startup of unrelated features.
type Client struct {
	api        *genai.Client
	embedModel string
	chatModel  string
	logger     *zap.Logger
}

var (
	_ domain.Embedder  = (*Client)(nil)
	_ domain.ChatModel = (*Client)(nil)
)

// New creates a Gemini provider client.
func New(ctx context.Context, cfg *Config) (*Client, error) {
	embedModel := cfg.EmbedModel
	if embedModel == "" {
		embedModel = "text-embedding-004"
	}
	chatModel := cfg.ChatModel
	if chatModel == "" {
		chatModel = "gemini-2.0-flash"
	}

	c := &Client{
		embedModel: embedModel,
		chatModel:  chatModel,
		logger:     cfg.Logger,
	}

	if cfg.APIKey == "" {
		return c, nil
	}

	api, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: requestTimeout},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	c.api = api

	return c, nil
}

// Embed implements domain.Embedder.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if c.api == nil {
		return nil, fmt.Errorf(
			"gemini embeddings need ai.providers.gemini.api_key: %w", domain.ErrProviderConfig,
		)
	}

	start := time.Now()
	resp, err := c.api.Models.EmbedContent(ctx, c.embedModel, genai.Text(domain.CleanText(text)), nil)
	duration := time.Since(start)

	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(providerName, "embed", "error").Inc()
		return nil, fmt.Errorf("gemini embedding failed: %v: %w", err, domain.ErrProviderResponse)
	}

	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		metrics.ProviderRequestsTotal.WithLabelValues(providerName, "embed", "error").Inc()
		return nil, fmt.Errorf("empty gemini embedding response: %w", domain.ErrProviderResponse)
	}

	metrics.ProviderRequestsTotal.WithLabelValues(providerName, "embed", "success").Inc()
	metrics.ProviderRequestDuration.WithLabelValues(providerName, "embed").Observe(duration.Seconds())

	return resp.Embeddings[0].Values, nil
}

// Complete implements domain.ChatModel.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.api == nil {
		return "", fmt.Errorf(
			"gemini chat needs ai.providers.gemini.api_key: %w", domain.ErrProviderConfig,
		)
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr[float32](chatTemperature),
		MaxOutputTokens:   chatMaxTokens,
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}

	start := time.Now()
	resp, err := c.api.Models.GenerateContent(ctx, c.chatModel, genai.Text(prompt), genCfg)
	duration := time.Since(start)

	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(providerName, "chat", "error").Inc()
		return "", fmt.Errorf("gemini generation failed: %v: %w", err, domain.ErrProviderResponse)
	}

	text := resp.Text()
	if text == "" {
		metrics.ProviderRequestsTotal.WithLabelValues(providerName, "chat", "error").Inc()
		return "", fmt.Errorf("empty gemini chat response: %w", domain.ErrProviderResponse)
	}

	metrics.ProviderRequestsTotal.WithLabelValues(providerName, "chat", "success").Inc()
	metrics.ProviderRequestDuration.WithLabelValues(providerName, "chat").Observe(duration.Seconds())

	return text, nil
}
