package groq

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
	defaultBaseURL     = "https://api.groq.com/openai/v1"
	defaultModel       = "llama-3.3-70b-versatile"
	defaultHTTPTimeout = 20 * time.Second
)

// Config captures the runtime settings required to talk to Groq.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// Client wraps the Groq chat completion API (OpenAI-compatible schema).
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a Groq client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:  strings.TrimSpace(cfg.APIKey),
			BaseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			Model:   strings.TrimSpace(cfg.Model),
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	if client.cfg.Model == "" {
		client.cfg.Model = defaultModel
	}
	return client
}

// Name identifies the adapter in routing logs and ledger entries.
func (c *Client) Name() string { return "groq" }

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
		return empty, errors.New("groq generate: prompt required")
	}
	if c.cfg.APIKey == "" {
		return empty, fmt.Errorf("groq generate: %w: api key required", services.ErrAuth)
	}

	messages := make([]chatMessage, 0, 2)
	if system := strings.TrimSpace(req.SystemMessage); system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	endpoint, err := url.JoinPath(c.cfg.BaseURL, "chat/completions")
	if err != nil {
		return empty, fmt.Errorf("groq generate: build url: %w", err)
	}
	body, err := services.PostJSON(ctx, c.httpClient, endpoint, map[string]string{
		"Authorization": "Bearer " + c.cfg.APIKey,
	}, chatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return empty, fmt.Errorf("groq generate: %w", err)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return empty, fmt.Errorf("groq generate: decode response: %w", err)
	}
	if completion.Error != nil {
		return empty, fmt.Errorf("groq generate: api error: %s", strings.TrimSpace(completion.Error.Message))
	}
	if len(completion.Choices) == 0 {
		return empty, errors.New("groq generate: empty choices")
	}
	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return empty, errors.New("groq generate: empty content")
	}
	return services.TextResult{Content: content}, nil
}
