package deepseek

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sciados/campaign-backend-sub004/internal/services"
)

const (
	defaultBaseURL     = "https://api.deepseek.com/v1"
	defaultModel       = "deepseek-chat"
	defaultHTTPTimeout = 30 * time.Second
)

// Client wraps the DeepSeek chat completion API (OpenAI-compatible schema).
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// Option customizes the DeepSeek client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the default API base (useful for tests/mocks).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(c *Client) {
		model = strings.TrimSpace(model)
		if model != "" {
			c.model = model
		}
	}
}

// WithTimeout overrides the default HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient constructs a DeepSeek API client.
func NewClient(apiKey string, opts ...Option) *Client {
	client := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Name identifies the adapter in routing logs and ledger entries.
func (c *Client) Name() string { return "deepseek" }

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateText issues a single chat completion attempt.
func (c *Client) GenerateText(ctx context.Context, req services.TextRequest) (services.TextResult, error) {
	var empty services.TextResult
	if strings.TrimSpace(req.Prompt) == "" {
		return empty, errors.New("deepseek generate: prompt required")
	}
	if c.apiKey == "" {
		return empty, fmt.Errorf("deepseek generate: %w: api key required", services.ErrAuth)
	}

	messages := make([]chatMessage, 0, 2)
	if system := strings.TrimSpace(req.SystemMessage); system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	endpoint, err := url.JoinPath(c.baseURL, "chat/completions")
	if err != nil {
		return empty, fmt.Errorf("deepseek generate: build url: %w", err)
	}
	body, err := services.PostJSON(ctx, c.httpClient, endpoint, map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	}, chatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return empty, fmt.Errorf("deepseek generate: %w", err)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return empty, fmt.Errorf("deepseek generate: decode response: %w", err)
	}
	if completion.Error != nil {
		return empty, fmt.Errorf("deepseek generate: api error: %s", strings.TrimSpace(completion.Error.Message))
	}
	if len(completion.Choices) == 0 {
		return empty, errors.New("deepseek generate: empty choices")
	}
	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return empty, errors.New("deepseek generate: empty content")
	}
	return services.TextResult{Content: content}, nil
}
