package config

import (
	"errors"
	"fmt"
)

var validTiers = map[string]struct{}{
	"ultra-cheap": {},
	"cheap":       {},
	"fallback":    {},
	"emergency":   {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	providers := []struct {
		name     string
		settings *ProviderSettings
	}{
		{"openai", &c.OpenAI},
		{"anthropic", &c.Anthropic},
		{"deepseek", &c.DeepSeek},
		{"groq", &c.Groq},
		{"openai_image", &c.OpenAIImage},
		{"stability", &c.Stability},
	}
	for _, p := range providers {
		if err := validateProvider(p.name, p.settings); err != nil {
			return err
		}
	}
	if err := c.validateRouter(); err != nil {
		return err
	}
	return c.validateCache()
}

func validateProvider(name string, p *ProviderSettings) error {
	if !p.Enabled {
		return nil
	}
	if p.CostPerUnit <= 0 {
		return fmt.Errorf("%s.cost_per_unit must be positive", name)
	}
	if p.QualityScore < 0 || p.QualityScore > 100 {
		return fmt.Errorf("%s.quality_score must be between 0 and 100", name)
	}
	if p.Tier != "" {
		if _, ok := validTiers[p.Tier]; !ok {
			return fmt.Errorf("%s.tier must be one of ultra-cheap, cheap, fallback, emergency", name)
		}
	}
	return nil
}

func (c *Config) validateRouter() error {
	if c.Router.TokenFactor <= 0 {
		return errors.New("router.token_factor must be positive")
	}
	if c.Router.FailureThreshold < 1 {
		return errors.New("router.failure_threshold must be at least 1")
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.ConfidenceThreshold < 0 || c.Cache.ConfidenceThreshold > 1 {
		return errors.New("cache.confidence_threshold must be between 0 and 1")
	}
	if c.Cache.FreshnessWindowDays < 1 {
		return errors.New("cache.freshness_window_days must be at least 1")
	}
	if c.Cache.ReferenceGraceDays < 0 {
		return errors.New("cache.reference_grace_days must not be negative")
	}
	return nil
}
