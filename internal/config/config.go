package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// ProviderSettings describes one vendor adapter: connection settings plus the
// static cost/quality metadata the router uses for candidate ordering.
type ProviderSettings struct {
	Enabled        bool     `toml:"enabled"`
	APIKey         string   `toml:"api_key"`
	BaseURL        string   `toml:"base_url"`
	Model          string   `toml:"model"`
	Tier           string   `toml:"tier"`
	CostPerUnit    float64  `toml:"cost_per_unit"`
	QualityScore   int      `toml:"quality_score"`
	SpeedRating    int      `toml:"speed_rating"`
	Strengths      []string `toml:"strengths"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

// Router contains failover and cost-accounting settings.
type Router struct {
	TokenFactor              float64 `toml:"token_factor"`
	RequestTimeoutSeconds    int     `toml:"request_timeout_seconds"`
	RateLimitCooldownSeconds int     `toml:"rate_limit_cooldown_seconds"`
	DisablePenaltySeconds    int     `toml:"disable_penalty_seconds"`
	FailureThreshold         int     `toml:"failure_threshold"`
	BaselineTextCostPer1K    float64 `toml:"baseline_text_cost_per_1k"`
	BaselineImageCost        float64 `toml:"baseline_image_cost"`
}

// Cache contains intelligence cache eligibility and cleanup settings.
type Cache struct {
	ConfidenceThreshold  float64 `toml:"confidence_threshold"`
	FreshnessWindowDays  int     `toml:"freshness_window_days"`
	ReferenceGraceDays   int     `toml:"reference_grace_days"`
	BaselineAnalysisCost float64 `toml:"baseline_analysis_cost"`
	SweepIntervalSeconds int     `toml:"sweep_interval_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates every setting the routing core and CLI need.
//
// Configuration sections by subsystem:
//   - Paths: data directory (intelligence store) and log directory
//   - openai / anthropic / deepseek / groq: text generation vendors
//   - openai_image / stability: image generation vendors
//   - Router: failover timing, cost estimation, and baselines
//   - Cache: confidence threshold, freshness window, cleanup grace
//   - Logging: log format and level
type Config struct {
	Paths       Paths            `toml:"paths"`
	OpenAI      ProviderSettings `toml:"openai"`
	Anthropic   ProviderSettings `toml:"anthropic"`
	DeepSeek    ProviderSettings `toml:"deepseek"`
	Groq        ProviderSettings `toml:"groq"`
	OpenAIImage ProviderSettings `toml:"openai_image"`
	Stability   ProviderSettings `toml:"stability"`
	Router      Router           `toml:"router"`
	Cache       Cache            `toml:"cache"`
	Logging     Logging          `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/campaignctl/config.toml")
}

// SampleConfig returns the annotated sample configuration shipped with the binary.
func SampleConfig() string {
	return sampleConfig
}

// ExpandPath resolves ~ prefixes and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

// CreateSample writes the embedded sample configuration to path.
func CreateSample(path string) error {
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories if they are missing.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the location of the intelligence store database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "intel.db")
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", trimmed, err)
	}
	return abs, nil
}
