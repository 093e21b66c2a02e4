package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if cfg.Router.TokenFactor != defaultTokenFactor {
		t.Fatalf("expected token factor %v, got %v", defaultTokenFactor, cfg.Router.TokenFactor)
	}
	if cfg.Cache.ConfidenceThreshold != defaultCacheConfidenceThreshold {
		t.Fatalf("expected confidence threshold %v, got %v", defaultCacheConfidenceThreshold, cfg.Cache.ConfidenceThreshold)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be reported as missing")
	}
	if resolved != path {
		t.Fatalf("expected resolved path %s, got %s", path, resolved)
	}
	if cfg.Groq.Tier != "ultra-cheap" {
		t.Fatalf("expected default groq tier, got %q", cfg.Groq.Tier)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
data_dir = "` + dir + `"

[groq]
enabled = true
cost_per_unit = 0.0005
quality_score = 80
tier = "ultra-cheap"
strengths = ["Short-Form", "short-form", " "]

[cache]
confidence_threshold = 0.85
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if cfg.Groq.CostPerUnit != 0.0005 {
		t.Fatalf("expected groq cost 0.0005, got %v", cfg.Groq.CostPerUnit)
	}
	if cfg.Cache.ConfidenceThreshold != 0.85 {
		t.Fatalf("expected confidence threshold 0.85, got %v", cfg.Cache.ConfidenceThreshold)
	}
	if len(cfg.Groq.Strengths) != 1 || cfg.Groq.Strengths[0] != "short-form" {
		t.Fatalf("expected deduplicated lowercase strengths, got %v", cfg.Groq.Strengths)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative cost", func(c *Config) { c.OpenAI.CostPerUnit = -1 }},
		{"quality out of range", func(c *Config) { c.OpenAI.QualityScore = 150 }},
		{"unknown tier", func(c *Config) { c.OpenAI.Tier = "premium" }},
		{"bad confidence", func(c *Config) { c.Cache.ConfidenceThreshold = 1.5 }},
		{"zero freshness", func(c *Config) { c.Cache.FreshnessWindowDays = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			if err := cfg.normalize(); err != nil {
				t.Fatalf("normalize: %v", err)
			}
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestProviderAPIKeyEnvFallback(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk-test")
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Groq.APIKey != "gsk-test" {
		t.Fatalf("expected env API key fallback, got %q", cfg.Groq.APIKey)
	}
}
