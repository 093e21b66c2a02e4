package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sciados/campaign-backend-sub004/internal/services"
)

const defaultImageModel = "dall-e-3"

// ImageClient wraps the OpenAI image generation API.
type ImageClient struct {
	cfg        Config
	httpClient *http.Client
}

// NewImageClient constructs an OpenAI image client using the supplied configuration.
func NewImageClient(cfg Config, opts ...Option) *ImageClient {
	base := NewClient(cfg, opts...)
	if strings.TrimSpace(cfg.Model) == "" {
		base.cfg.Model = defaultImageModel
	}
	return &ImageClient{cfg: base.cfg, httpClient: base.httpClient}
}

// Name identifies the adapter in routing logs and ledger entries.
func (c *ImageClient) Name() string { return "openai_image" }

type imageGenerationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	Style          string `json:"style,omitempty"`
	ResponseFormat string `json:"response_format"`
}

type imageGenerationResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
		URL     string `json:"url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateImage issues a single image generation attempt.
func (c *ImageClient) GenerateImage(ctx context.Context, req services.ImageRequest) (services.ImageResult, error) {
	var empty services.ImageResult
	if strings.TrimSpace(req.Prompt) == "" {
		return empty, errors.New("openai image: prompt required")
	}
	if c.cfg.APIKey == "" {
		return empty, fmt.Errorf("openai image: %w: api key required", services.ErrAuth)
	}

	prompt := req.Prompt
	if negative := strings.TrimSpace(req.NegativePrompt); negative != "" {
		prompt += ". Avoid: " + negative
	}

	endpoint, err := url.JoinPath(c.cfg.BaseURL, "images/generations")
	if err != nil {
		return empty, fmt.Errorf("openai image: build url: %w", err)
	}
	body, err := services.PostJSON(ctx, c.httpClient, endpoint, map[string]string{
		"Authorization": "Bearer " + c.cfg.APIKey,
	}, imageGenerationRequest{
		Model:          c.cfg.Model,
		Prompt:         prompt,
		N:              1,
		Size:           platformSize(req.Platform),
		Style:          normalizeStyle(req.Style),
		ResponseFormat: "b64_json",
	})
	if err != nil {
		return empty, fmt.Errorf("openai image: %w", err)
	}

	var generation imageGenerationResponse
	if err := json.Unmarshal(body, &generation); err != nil {
		return empty, fmt.Errorf("openai image: decode response: %w", err)
	}
	if generation.Error != nil {
		return empty, fmt.Errorf("openai image: api error: %s", strings.TrimSpace(generation.Error.Message))
	}
	if len(generation.Data) == 0 {
		return empty, errors.New("openai image: empty data")
	}
	result := services.ImageResult{
		ImageB64: generation.Data[0].B64JSON,
		URL:      generation.Data[0].URL,
	}
	if result.ImageB64 == "" && result.URL == "" {
		return empty, errors.New("openai image: response carried neither payload nor url")
	}
	return result, nil
}

// platformSize maps a social platform hint to the closest supported dimension.
func platformSize(platform string) string {
	switch strings.ToLower(strings.TrimSpace(platform)) {
	case "instagram", "facebook":
		return "1024x1024"
	case "story", "instagram_story", "tiktok":
		return "1024x1792"
	case "banner", "linkedin", "twitter", "x":
		return "1792x1024"
	default:
		return "1024x1024"
	}
}

// normalizeStyle keeps only the styles the API accepts; anything else rides in
// the prompt instead.
func normalizeStyle(style string) string {
	switch strings.ToLower(strings.TrimSpace(style)) {
	case "vivid":
		return "vivid"
	case "natural":
		return "natural"
	default:
		return ""
	}
}
