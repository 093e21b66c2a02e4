package main

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sciados/campaign-backend-sub004/internal/config"
	"github.com/sciados/campaign-backend-sub004/internal/intel"
	"github.com/sciados/campaign-backend-sub004/internal/ledger"
	"github.com/sciados/campaign-backend-sub004/internal/logging"
	"github.com/sciados/campaign-backend-sub004/internal/provider"
	"github.com/sciados/campaign-backend-sub004/internal/router"
	"github.com/sciados/campaign-backend-sub004/internal/services/anthropic"
	"github.com/sciados/campaign-backend-sub004/internal/services/deepseek"
	"github.com/sciados/campaign-backend-sub004/internal/services/groq"
	"github.com/sciados/campaign-backend-sub004/internal/services/openai"
	"github.com/sciados/campaign-backend-sub004/internal/services/stability"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	coreOnce sync.Once
	core     *core
	coreErr  error
}

// core bundles the routing components built once per invocation.
type core struct {
	logger   *slog.Logger
	registry *provider.Registry
	tracker  *provider.Tracker
	ledger   *ledger.Ledger
	router   *router.Router
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureCore() (*core, error) {
	c.coreOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.coreErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.coreErr = err
			return
		}
		c.core = buildCore(cfg, logger)
	})
	return c.core, c.coreErr
}

func buildCore(cfg *config.Config, logger *slog.Logger) *core {
	registry := provider.NewRegistry()
	tracker := provider.NewTracker(provider.TrackerConfig{
		RateLimitCooldown: time.Duration(cfg.Router.RateLimitCooldownSeconds) * time.Second,
		DisablePenalty:    time.Duration(cfg.Router.DisablePenaltySeconds) * time.Second,
		FailureThreshold:  cfg.Router.FailureThreshold,
	}, logger, nil)
	costs := ledger.New(nil)
	rt := router.New(registry, tracker, costs, router.Config{
		TokenFactor:       cfg.Router.TokenFactor,
		RequestTimeout:    time.Duration(cfg.Router.RequestTimeoutSeconds) * time.Second,
		BaselineTextPer1K: cfg.Router.BaselineTextCostPer1K,
		BaselineImageCost: cfg.Router.BaselineImageCost,
	}, logger, nil)

	registerProvider := func(name string, capability provider.Capability, settings config.ProviderSettings) bool {
		if !settings.Enabled {
			return false
		}
		registry.Register(provider.New(
			name,
			capability,
			provider.Tier(settings.Tier),
			settings.CostPerUnit,
			settings.QualityScore,
			settings.SpeedRating,
			settings.Strengths,
		))
		return true
	}

	if registerProvider("groq", provider.CapabilityText, cfg.Groq) {
		rt.RegisterTextAdapter(groq.NewClient(groq.Config{
			APIKey:         cfg.Groq.APIKey,
			BaseURL:        cfg.Groq.BaseURL,
			Model:          cfg.Groq.Model,
			TimeoutSeconds: cfg.Groq.TimeoutSeconds,
		}))
	}
	if registerProvider("deepseek", provider.CapabilityText, cfg.DeepSeek) {
		rt.RegisterTextAdapter(deepseek.NewClient(cfg.DeepSeek.APIKey,
			deepseek.WithBaseURL(cfg.DeepSeek.BaseURL),
			deepseek.WithModel(cfg.DeepSeek.Model),
			deepseek.WithTimeout(time.Duration(cfg.DeepSeek.TimeoutSeconds)*time.Second),
		))
	}
	if registerProvider("openai", provider.CapabilityText, cfg.OpenAI) {
		rt.RegisterTextAdapter(openai.NewClient(openai.Config{
			APIKey:         cfg.OpenAI.APIKey,
			BaseURL:        cfg.OpenAI.BaseURL,
			Model:          cfg.OpenAI.Model,
			TimeoutSeconds: cfg.OpenAI.TimeoutSeconds,
		}))
	}
	if registerProvider("anthropic", provider.CapabilityText, cfg.Anthropic) {
		rt.RegisterTextAdapter(anthropic.NewClient(anthropic.Config{
			APIKey:         cfg.Anthropic.APIKey,
			BaseURL:        cfg.Anthropic.BaseURL,
			Model:          cfg.Anthropic.Model,
			TimeoutSeconds: cfg.Anthropic.TimeoutSeconds,
		}))
	}
	if registerProvider("stability", provider.CapabilityImage, cfg.Stability) {
		rt.RegisterImageAdapter(stability.NewClient(stability.Config{
			APIKey:         cfg.Stability.APIKey,
			BaseURL:        cfg.Stability.BaseURL,
			Model:          cfg.Stability.Model,
			TimeoutSeconds: cfg.Stability.TimeoutSeconds,
		}))
	}
	if registerProvider("openai_image", provider.CapabilityImage, cfg.OpenAIImage) {
		rt.RegisterImageAdapter(openai.NewImageClient(openai.Config{
			APIKey:         cfg.OpenAIImage.APIKey,
			BaseURL:        cfg.OpenAIImage.BaseURL,
			Model:          cfg.OpenAIImage.Model,
			TimeoutSeconds: cfg.OpenAIImage.TimeoutSeconds,
		}))
	}

	return &core{
		logger:   logger,
		registry: registry,
		tracker:  tracker,
		ledger:   costs,
		router:   rt,
	}
}

// openStore opens the intelligence database for cache commands.
func (c *commandContext) openStore() (*intel.Store, *config.Config, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := intel.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return store, cfg, nil
}

func (c *commandContext) cacheConfig(cfg *config.Config) intel.CacheConfig {
	return intel.CacheConfig{
		ConfidenceThreshold: cfg.Cache.ConfidenceThreshold,
		FreshnessWindow:     time.Duration(cfg.Cache.FreshnessWindowDays) * 24 * time.Hour,
	}
}

func (c *commandContext) cleanupConfig(cfg *config.Config) intel.CleanupConfig {
	return intel.CleanupConfig{
		FreshnessWindow:     time.Duration(cfg.Cache.FreshnessWindowDays) * 24 * time.Hour,
		ConfidenceThreshold: cfg.Cache.ConfidenceThreshold,
		ReferenceGrace:      time.Duration(cfg.Cache.ReferenceGraceDays) * 24 * time.Hour,
	}
}
