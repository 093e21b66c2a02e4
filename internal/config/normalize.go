package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeProvider(&c.OpenAI, defaultOpenAIBaseURL, defaultOpenAIModel, "OPENAI_API_KEY")
	c.normalizeProvider(&c.Anthropic, defaultAnthropicBaseURL, defaultAnthropicModel, "ANTHROPIC_API_KEY")
	c.normalizeProvider(&c.DeepSeek, defaultDeepSeekBaseURL, defaultDeepSeekModel, "DEEPSEEK_API_KEY")
	c.normalizeProvider(&c.Groq, defaultGroqBaseURL, defaultGroqModel, "GROQ_API_KEY")
	c.normalizeProvider(&c.OpenAIImage, defaultOpenAIBaseURL, defaultOpenAIImageModel, "OPENAI_API_KEY")
	c.normalizeProvider(&c.Stability, defaultStabilityBaseURL, defaultStabilityModel, "STABILITY_API_KEY")
	c.normalizeRouter()
	c.normalizeCache()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeProvider(p *ProviderSettings, baseURL, model, envKey string) {
	p.APIKey = strings.TrimSpace(p.APIKey)
	if p.APIKey == "" {
		if value, ok := os.LookupEnv(envKey); ok {
			p.APIKey = strings.TrimSpace(value)
		}
	}
	p.BaseURL = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(p.BaseURL), "/"))
	if p.BaseURL == "" {
		p.BaseURL = baseURL
	}
	p.Model = strings.TrimSpace(p.Model)
	if p.Model == "" {
		p.Model = model
	}
	p.Tier = strings.ToLower(strings.TrimSpace(p.Tier))
	if p.TimeoutSeconds <= 0 {
		p.TimeoutSeconds = defaultProviderTimeoutSeconds
	}

	strengths := make([]string, 0, len(p.Strengths))
	seen := make(map[string]struct{}, len(p.Strengths))
	for _, strength := range p.Strengths {
		normalized := strings.ToLower(strings.TrimSpace(strength))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		strengths = append(strengths, normalized)
	}
	p.Strengths = strengths
}

func (c *Config) normalizeRouter() {
	if c.Router.TokenFactor <= 0 {
		c.Router.TokenFactor = defaultTokenFactor
	}
	if c.Router.RequestTimeoutSeconds <= 0 {
		c.Router.RequestTimeoutSeconds = defaultRequestTimeoutSeconds
	}
	if c.Router.RateLimitCooldownSeconds <= 0 {
		c.Router.RateLimitCooldownSeconds = defaultRateLimitCooldownSeconds
	}
	if c.Router.DisablePenaltySeconds <= 0 {
		c.Router.DisablePenaltySeconds = defaultDisablePenaltySeconds
	}
	if c.Router.FailureThreshold <= 0 {
		c.Router.FailureThreshold = defaultFailureThreshold
	}
	if c.Router.BaselineTextCostPer1K <= 0 {
		c.Router.BaselineTextCostPer1K = defaultBaselineTextCostPer1K
	}
	if c.Router.BaselineImageCost <= 0 {
		c.Router.BaselineImageCost = defaultBaselineImageCost
	}
}

func (c *Config) normalizeCache() {
	if c.Cache.ConfidenceThreshold <= 0 {
		c.Cache.ConfidenceThreshold = defaultCacheConfidenceThreshold
	}
	if c.Cache.FreshnessWindowDays <= 0 {
		c.Cache.FreshnessWindowDays = defaultCacheFreshnessWindowDays
	}
	if c.Cache.ReferenceGraceDays <= 0 {
		c.Cache.ReferenceGraceDays = defaultCacheReferenceGraceDays
	}
	if c.Cache.BaselineAnalysisCost <= 0 {
		c.Cache.BaselineAnalysisCost = defaultBaselineAnalysisCost
	}
	if c.Cache.SweepIntervalSeconds <= 0 {
		c.Cache.SweepIntervalSeconds = defaultCacheSweepSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
