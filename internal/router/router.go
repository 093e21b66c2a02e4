package router

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sciados/campaign-backend-sub004/internal/ledger"
	"github.com/sciados/campaign-backend-sub004/internal/logging"
	"github.com/sciados/campaign-backend-sub004/internal/provider"
	"github.com/sciados/campaign-backend-sub004/internal/services"
)

// TextAdapter is the single-attempt contract a text vendor client
// fulfills. Failover and retries are the router's job.
type TextAdapter interface {
	Name() string
	GenerateText(ctx context.Context, req services.TextRequest) (services.TextResult, error)
}

// ImageAdapter is the single-attempt contract an image vendor client
// fulfills.
type ImageAdapter interface {
	Name() string
	GenerateImage(ctx context.Context, req services.ImageRequest) (services.ImageResult, error)
}

// Config carries the router's timing and pricing knobs.
type Config struct {
	TokenFactor       float64
	RequestTimeout    time.Duration
	BaselineTextPer1K float64
	BaselineImageCost float64
}

// Router selects the cheapest healthy provider for each request and
// falls through the candidate list on failure. It owns no global state;
// construct one per process and pass it by reference.
type Router struct {
	registry *provider.Registry
	tracker  *provider.Tracker
	ledger   *ledger.Ledger
	cfg      Config
	now      func() time.Time
	logger   *slog.Logger

	textAdapters  map[string]TextAdapter
	imageAdapters map[string]ImageAdapter
}

// New constructs a router. A nil clock uses time.Now.
func New(registry *provider.Registry, tracker *provider.Tracker, costs *ledger.Ledger, cfg Config, logger *slog.Logger, clock func() time.Time) *Router {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Router{
		registry:      registry,
		tracker:       tracker,
		ledger:        costs,
		cfg:           cfg,
		now:           clock,
		logger:        logging.WithComponent(logger, "router"),
		textAdapters:  make(map[string]TextAdapter),
		imageAdapters: make(map[string]ImageAdapter),
	}
}

// RegisterTextAdapter binds a vendor client to the provider registered
// under the same name.
func (r *Router) RegisterTextAdapter(adapter TextAdapter) {
	r.textAdapters[adapter.Name()] = adapter
}

// RegisterImageAdapter binds an image vendor client to its provider.
func (r *Router) RegisterImageAdapter(adapter ImageAdapter) {
	r.imageAdapters[adapter.Name()] = adapter
}

// TextOptions are the caller-facing knobs for a text generation.
type TextOptions struct {
	Prompt           string
	SystemMessage    string
	MaxTokens        int
	Temperature      float64
	RequiredStrength string
}

// ImageOptions are the caller-facing knobs for an image generation.
type ImageOptions struct {
	Prompt         string
	Platform       string
	NegativePrompt string
	Style          string
}

// GenerationResult describes one successful routed generation. Created
// once per success and never mutated.
type GenerationResult struct {
	RequestID    string
	Content      string
	ImageB64     string
	ImageURL     string
	Provider     string
	Tier         provider.Tier
	QualityScore int
	Cost         float64
	Savings      float64
	Latency      time.Duration
}

// GenerateText attempts eligible text providers in ascending cost
// order and returns the first success.
func (r *Router) GenerateText(ctx context.Context, opts TextOptions) (*GenerationResult, error) {
	now := r.now()
	candidates := r.registry.Available(provider.CapabilityText, opts.RequiredStrength, now)
	if len(candidates) == 0 {
		return nil, ErrNoProvidersAvailable
	}

	req := services.TextRequest{
		Prompt:        opts.Prompt,
		SystemMessage: opts.SystemMessage,
		MaxTokens:     opts.MaxTokens,
		Temperature:   opts.Temperature,
	}
	units := estimateTextUnits(opts.Prompt, opts.MaxTokens, r.cfg.TokenFactor)

	var attempts []Attempt
	for _, candidate := range candidates {
		// Listing and calling are not atomic; a concurrent failure may
		// have knocked the candidate out since we listed it.
		if !candidate.Eligible(r.now()) {
			continue
		}
		adapter, ok := r.textAdapters[candidate.Name]
		if !ok {
			r.logger.Warn("provider has no registered adapter", slog.String("provider", candidate.Name))
			continue
		}

		started := r.now()
		result, err := r.callText(ctx, adapter, req)
		latency := r.now().Sub(started)
		if err != nil {
			class := services.Classify(err)
			r.tracker.RecordFailure(candidate, class)
			r.ledger.RecordFailure(candidate.Name, class)
			attempts = append(attempts, Attempt{
				Provider: candidate.Name,
				Class:    class,
				Err:      err,
				Latency:  latency,
			})
			r.logger.Warn("text attempt failed",
				slog.String("provider", candidate.Name),
				slog.String("class", string(class)),
				slog.String("error", err.Error()))
			continue
		}

		cost := textCost(units, candidate.CostPerUnit)
		savings := textCost(units, r.cfg.BaselineTextPer1K) - cost
		r.tracker.RecordSuccess(candidate, latency)
		r.ledger.RecordSuccess(candidate.Name, provider.CapabilityText, cost, savings, latency)
		r.logger.Info("text generated",
			slog.String("provider", candidate.Name),
			slog.Float64("cost", cost),
			slog.Duration("latency", latency))
		return &GenerationResult{
			RequestID:    uuid.NewString(),
			Content:      result.Content,
			Provider:     candidate.Name,
			Tier:         candidate.Tier,
			QualityScore: candidate.QualityScore,
			Cost:         cost,
			Savings:      savings,
			Latency:      latency,
		}, nil
	}
	return nil, &ExhaustedError{Capability: provider.CapabilityText, Attempts: attempts}
}

// GenerateImage attempts eligible image providers in ascending cost
// order and returns the first success. Image cost is the provider's
// flat per-image rate.
func (r *Router) GenerateImage(ctx context.Context, opts ImageOptions) (*GenerationResult, error) {
	now := r.now()
	candidates := r.registry.Available(provider.CapabilityImage, "", now)
	if len(candidates) == 0 {
		return nil, ErrNoProvidersAvailable
	}

	req := services.ImageRequest{
		Prompt:         opts.Prompt,
		Platform:       opts.Platform,
		NegativePrompt: opts.NegativePrompt,
		Style:          opts.Style,
	}

	var attempts []Attempt
	for _, candidate := range candidates {
		if !candidate.Eligible(r.now()) {
			continue
		}
		adapter, ok := r.imageAdapters[candidate.Name]
		if !ok {
			r.logger.Warn("provider has no registered adapter", slog.String("provider", candidate.Name))
			continue
		}

		started := r.now()
		result, err := r.callImage(ctx, adapter, req)
		latency := r.now().Sub(started)
		if err != nil {
			class := services.Classify(err)
			r.tracker.RecordFailure(candidate, class)
			r.ledger.RecordFailure(candidate.Name, class)
			attempts = append(attempts, Attempt{
				Provider: candidate.Name,
				Class:    class,
				Err:      err,
				Latency:  latency,
			})
			r.logger.Warn("image attempt failed",
				slog.String("provider", candidate.Name),
				slog.String("class", string(class)),
				slog.String("error", err.Error()))
			continue
		}

		cost := candidate.CostPerUnit
		savings := r.cfg.BaselineImageCost - cost
		r.tracker.RecordSuccess(candidate, latency)
		r.ledger.RecordSuccess(candidate.Name, provider.CapabilityImage, cost, savings, latency)
		r.logger.Info("image generated",
			slog.String("provider", candidate.Name),
			slog.Float64("cost", cost),
			slog.Duration("latency", latency))
		return &GenerationResult{
			RequestID:    uuid.NewString(),
			ImageB64:     result.ImageB64,
			ImageURL:     result.URL,
			Provider:     candidate.Name,
			Tier:         candidate.Tier,
			QualityScore: candidate.QualityScore,
			Cost:         cost,
			Savings:      savings,
			Latency:      latency,
		}, nil
	}
	return nil, &ExhaustedError{Capability: provider.CapabilityImage, Attempts: attempts}
}

func (r *Router) callText(ctx context.Context, adapter TextAdapter, req services.TextRequest) (services.TextResult, error) {
	if r.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.RequestTimeout)
		defer cancel()
	}
	return adapter.GenerateText(ctx, req)
}

func (r *Router) callImage(ctx context.Context, adapter ImageAdapter, req services.ImageRequest) (services.ImageResult, error) {
	if r.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.RequestTimeout)
		defer cancel()
	}
	return adapter.GenerateImage(ctx, req)
}
