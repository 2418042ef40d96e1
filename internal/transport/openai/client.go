// Package openai talks to OpenAI-compatible HTTP endpoints for embeddings
// and chat completions.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/yellowbooks/bizsearch/internal/domain"
	"github.com/yellowbooks/bizsearch/internal/metrics"
)

const providerName = "openai"

const requestTimeout = 30 * time.Second

// Chat generation parameters, matching what the directory assistant was
// tuned with.
const (
	chatTemperature = 0.7
	chatMaxTokens   = 500
)

// systemPrompt frames every chat completion. The assistant answers in
// Mongolian about Ulaanbaatar businesses.
const systemPrompt = "Та Yellow Books-ийн туслах бөгөөд Улаанбаатар хотын " +
	"бизнесүүдийн талаар мэдээлэл өгдөг. Монгол хэлээр найрсаг байдлаар хариулна."

// Config holds the provider settings.
type Config struct {
	APIKey     string
	BaseURL    string
	EmbedModel string
	ChatModel  string
	Logger     *zap.Logger
}

// Client implements domain.Embedder and domain.ChatModel over an
// OpenAI-compatible API. Requests post {input, model} and read
// data[0].embedding (embeddings) or choices[0].message.content (chat).
type Client struct {
	api        *openai.Client
	apiKey     string
	baseURL    string
	embedModel string
	chatModel  string
	logger     *zap.Logger
}

var (
	_ domain.Embedder  = (*Client)(nil)
	_ domain.ChatModel = (*Client)(nil)
)

// New creates an OpenAI-compatible provider client. Credentials are checked
// at call time so a misconfigured provider surfaces as a request error, not
// a startup crash of unrelated features.
func New(cfg *Config) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: requestTimeout}

	embedModel := cfg.EmbedModel
	if embedModel == "" {
		embedModel = "text-embedding-3-small"
	}
	chatModel := cfg.ChatModel
	if chatModel == "" {
		chatModel = "gpt-4o-mini"
	}

	return &Client{
		api:        openai.NewClientWithConfig(clientCfg),
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		embedModel: embedModel,
		chatModel:  chatModel,
		logger:     cfg.Logger,
	}
}

// Embed implements domain.Embedder.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if c.apiKey == "" || c.baseURL == "" {
		return nil, fmt.Errorf(
			"openai embeddings need ai.providers.openai.api_key and base_url: %w",
			domain.ErrProviderConfig,
		)
	}

	req := openai.EmbeddingRequest{
		Input: []string{domain.CleanText(text)},
		Model: openai.EmbeddingModel(c.embedModel),
	}

	start := time.Now()
	resp, err := c.api.CreateEmbeddings(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(providerName, "embed", "error").Inc()
		return nil, parseAPIError("embedding", err)
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		metrics.ProviderRequestsTotal.WithLabelValues(providerName, "embed", "error").Inc()
		return nil, fmt.Errorf("empty embedding response: %w", domain.ErrProviderResponse)
	}

	metrics.ProviderRequestsTotal.WithLabelValues(providerName, "embed", "success").Inc()
	metrics.ProviderRequestDuration.WithLabelValues(providerName, "embed").Observe(duration.Seconds())

	return resp.Data[0].Embedding, nil
}

// Complete implements domain.ChatModel.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" || c.baseURL == "" {
		return "", fmt.Errorf(
			"openai chat needs ai.providers.openai.api_key and base_url: %w",
			domain.ErrProviderConfig,
		)
	}

	req := openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: chatTemperature,
		MaxTokens:   chatMaxTokens,
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(providerName, "chat", "error").Inc()
		return "", parseAPIError("chat", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		metrics.ProviderRequestsTotal.WithLabelValues(providerName, "chat", "error").Inc()
		return "", fmt.Errorf("empty chat response: %w", domain.ErrProviderResponse)
	}

	metrics.ProviderRequestsTotal.WithLabelValues(providerName, "chat", "success").Inc()
	metrics.ProviderRequestDuration.WithLabelValues(providerName, "chat").Observe(duration.Seconds())

	return resp.Choices[0].Message.Content, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.apiKey == "" || c.baseURL == "" {
		return domain.ErrProviderConfig
	}
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrProviderResponse for correct 502 mapping.
func parseAPIError(kind string, err error) error {
	wrap := domain.ErrProviderResponse

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("%s API error %d: %s: %w",
				kind, reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("%s API error %d: %s: %w",
			kind, reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s API error %d: %s: %w",
			kind, apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("%s request failed: %w", kind, wrap)
}

// extractDetail extracts the "detail" field from a JSON error body, the
// shape some OpenAI-compatible gateways use.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
