package stability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sciados/campaign-backend-sub004/internal/services"
)

const (
	defaultBaseURL     = "https://api.stability.ai/v2beta"
	defaultModel       = "stable-image-core"
	defaultHTTPTimeout = 60 * time.Second
)

// Config captures the runtime settings required to talk to Stability AI.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// Client wraps the Stability stable-image generation API.
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

// NewClient constructs a Stability client using the supplied configuration.
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
func (c *Client) Name() string { return "stability" }

type generationResponse struct {
	Image        string `json:"image"`
	FinishReason string `json:"finish_reason"`
}

// GenerateImage issues a single stable-image generation attempt. The API takes
// multipart form fields and returns the image base64-encoded in a JSON body.
func (c *Client) GenerateImage(ctx context.Context, req services.ImageRequest) (services.ImageResult, error) {
	var empty services.ImageResult
	if strings.TrimSpace(req.Prompt) == "" {
		return empty, errors.New("stability generate: prompt required")
	}
	if c.cfg.APIKey == "" {
		return empty, fmt.Errorf("stability generate: %w: api key required", services.ErrAuth)
	}

	endpoint, err := url.JoinPath(c.cfg.BaseURL, "stable-image/generate/core")
	if err != nil {
		return empty, fmt.Errorf("stability generate: build url: %w", err)
	}

	var form bytes.Buffer
	writer := multipart.NewWriter(&form)
	fields := map[string]string{
		"prompt":        req.Prompt,
		"output_format": "png",
		"aspect_ratio":  platformAspectRatio(req.Platform),
	}
	if negative := strings.TrimSpace(req.NegativePrompt); negative != "" {
		fields["negative_prompt"] = negative
	}
	if style := strings.TrimSpace(req.Style); style != "" {
		fields["style_preset"] = style
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return empty, fmt.Errorf("stability generate: encode form: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return empty, fmt.Errorf("stability generate: close form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &form)
	if err != nil {
		return empty, fmt.Errorf("stability generate: new request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return empty, fmt.Errorf("stability generate: http error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return empty, fmt.Errorf("stability generate: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := services.ParseRetryAfter(resp.Header.Get("Retry-After"))
		return empty, fmt.Errorf("stability generate: %w", &services.StatusError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
			RetryAfter: retryAfter,
		})
	}

	var generation generationResponse
	if err := json.Unmarshal(body, &generation); err != nil {
		return empty, fmt.Errorf("stability generate: decode response: %w", err)
	}
	if generation.Image == "" {
		return empty, errors.New("stability generate: empty image payload")
	}
	return services.ImageResult{ImageB64: generation.Image}, nil
}

// platformAspectRatio maps a social platform hint to a supported aspect ratio.
func platformAspectRatio(platform string) string {
	switch strings.ToLower(strings.TrimSpace(platform)) {
	case "story", "instagram_story", "tiktok":
		return "9:16"
	case "banner", "linkedin", "twitter", "x":
		return "16:9"
	default:
		return "1:1"
	}
}
