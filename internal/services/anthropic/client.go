package anthropic

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
	defaultBaseURL     = "https://api.anthropic.com/v1"
	defaultModel       = "claude-sonnet-4-20250514"
	apiVersion         = "2023-06-01"
	defaultMaxTokens   = 1024
	defaultHTTPTimeout = 30 * time.Second
)

// Config captures the runtime settings required to talk to the Anthropic API.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// Client wraps the Anthropic messages API.
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

// NewClient constructs an Anthropic client using the supplied configuration.
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
func (c *Client) Name() string { return "anthropic" }

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateText issues a single messages API attempt.
func (c *Client) GenerateText(ctx context.Context, req services.TextRequest) (services.TextResult, error) {
	var empty services.TextResult
	if strings.TrimSpace(req.Prompt) == "" {
		return empty, errors.New("anthropic generate: prompt required")
	}
	if c.cfg.APIKey == "" {
		return empty, fmt.Errorf("anthropic generate: %w: api key required", services.ErrAuth)
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	endpoint, err := url.JoinPath(c.cfg.BaseURL, "messages")
	if err != nil {
		return empty, fmt.Errorf("anthropic generate: build url: %w", err)
	}
	body, err := services.PostJSON(ctx, c.httpClient, endpoint, map[string]string{
		"x-api-key":         c.cfg.APIKey,
		"anthropic-version": apiVersion,
	}, messagesRequest{
		Model:       c.cfg.Model,
		MaxTokens:   maxTokens,
		System:      strings.TrimSpace(req.SystemMessage),
		Messages:    []message{{Role: "user", Content: req.Prompt}},
		Temperature: req.Temperature,
	})
	if err != nil {
		return empty, fmt.Errorf("anthropic generate: %w", err)
	}

	var completion messagesResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return empty, fmt.Errorf("anthropic generate: decode response: %w", err)
	}
	if completion.Error != nil {
		return empty, fmt.Errorf("anthropic generate: api error: %s", strings.TrimSpace(completion.Error.Message))
	}
	for _, block := range completion.Content {
		if block.Type == "text" {
			if text := strings.TrimSpace(block.Text); text != "" {
				return services.TextResult{Content: text}, nil
			}
		}
	}
	return empty, errors.New("anthropic generate: empty content")
}
