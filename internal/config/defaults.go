package config

const (
	defaultDataDir = "~/.local/share/campaignctl"
	defaultLogDir  = "~/.local/share/campaignctl/logs"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"

	defaultTokenFactor              = 1.3
	defaultRequestTimeoutSeconds    = 30
	defaultRateLimitCooldownSeconds = 60
	defaultDisablePenaltySeconds    = 300
	defaultFailureThreshold         = 3
	defaultBaselineTextCostPer1K    = 0.06
	defaultBaselineImageCost        = 0.08

	defaultCacheConfidenceThreshold = 0.7
	defaultCacheFreshnessWindowDays = 30
	defaultCacheReferenceGraceDays  = 7
	defaultBaselineAnalysisCost     = 2.50
	defaultCacheSweepSeconds        = 3600

	defaultProviderTimeoutSeconds = 30

	defaultOpenAIBaseURL    = "https://api.openai.com/v1"
	defaultOpenAIModel      = "gpt-4o-mini"
	defaultAnthropicBaseURL = "https://api.anthropic.com/v1"
	defaultAnthropicModel   = "claude-sonnet-4-20250514"
	defaultDeepSeekBaseURL  = "https://api.deepseek.com/v1"
	defaultDeepSeekModel    = "deepseek-chat"
	defaultGroqBaseURL      = "https://api.groq.com/openai/v1"
	defaultGroqModel        = "llama-3.3-70b-versatile"
	defaultStabilityBaseURL = "https://api.stability.ai/v2beta"
	defaultStabilityModel   = "stable-image-core"
	defaultOpenAIImageModel = "dall-e-3"
)

// Default returns a Config populated with repository defaults. Unit costs and
// quality scores mirror each vendor's published pricing at the time the
// defaults were recorded; override them in config when pricing changes.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Groq: ProviderSettings{
			Enabled:      true,
			BaseURL:      defaultGroqBaseURL,
			Model:        defaultGroqModel,
			Tier:         "ultra-cheap",
			CostPerUnit:  0.0002,
			QualityScore: 78,
			SpeedRating:  5,
			Strengths:    []string{"short-form", "structured"},
		},
		DeepSeek: ProviderSettings{
			Enabled:      true,
			BaseURL:      defaultDeepSeekBaseURL,
			Model:        defaultDeepSeekModel,
			Tier:         "cheap",
			CostPerUnit:  0.0011,
			QualityScore: 84,
			SpeedRating:  3,
			Strengths:    []string{"long-form", "structured"},
		},
		OpenAI: ProviderSettings{
			Enabled:      true,
			BaseURL:      defaultOpenAIBaseURL,
			Model:        defaultOpenAIModel,
			Tier:         "fallback",
			CostPerUnit:  0.0060,
			QualityScore: 90,
			SpeedRating:  4,
			Strengths:    []string{"long-form", "creative", "structured"},
		},
		Anthropic: ProviderSettings{
			Enabled:      true,
			BaseURL:      defaultAnthropicBaseURL,
			Model:        defaultAnthropicModel,
			Tier:         "emergency",
			CostPerUnit:  0.0150,
			QualityScore: 94,
			SpeedRating:  3,
			Strengths:    []string{"long-form", "creative"},
		},
		Stability: ProviderSettings{
			Enabled:      true,
			BaseURL:      defaultStabilityBaseURL,
			Model:        defaultStabilityModel,
			Tier:         "cheap",
			CostPerUnit:  0.03,
			QualityScore: 85,
			SpeedRating:  4,
			Strengths:    []string{"photorealistic"},
		},
		OpenAIImage: ProviderSettings{
			Enabled:      true,
			BaseURL:      defaultOpenAIBaseURL,
			Model:        defaultOpenAIImageModel,
			Tier:         "fallback",
			CostPerUnit:  0.04,
			QualityScore: 90,
			SpeedRating:  3,
			Strengths:    []string{"creative", "text-in-image"},
		},
		Router: Router{
			TokenFactor:              defaultTokenFactor,
			RequestTimeoutSeconds:    defaultRequestTimeoutSeconds,
			RateLimitCooldownSeconds: defaultRateLimitCooldownSeconds,
			DisablePenaltySeconds:    defaultDisablePenaltySeconds,
			FailureThreshold:         defaultFailureThreshold,
			BaselineTextCostPer1K:    defaultBaselineTextCostPer1K,
			BaselineImageCost:        defaultBaselineImageCost,
		},
		Cache: Cache{
			ConfidenceThreshold:  defaultCacheConfidenceThreshold,
			FreshnessWindowDays:  defaultCacheFreshnessWindowDays,
			ReferenceGraceDays:   defaultCacheReferenceGraceDays,
			BaselineAnalysisCost: defaultBaselineAnalysisCost,
			SweepIntervalSeconds: defaultCacheSweepSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
