package provider

import (
	"log/slog"
	"time"

	"github.com/sciados/campaign-backend-sub004/internal/logging"
	"github.com/sciados/campaign-backend-sub004/internal/services"
)

// TrackerConfig carries the health-state timing knobs.
type TrackerConfig struct {
	RateLimitCooldown time.Duration
	DisablePenalty    time.Duration
	FailureThreshold  int
}

// Tracker is the sole mutator of provider health state. All updates
// are applied under the provider's own lock so concurrent failures on
// one vendor never serialize calls to another.
type Tracker struct {
	cfg    TrackerConfig
	now    func() time.Time
	logger *slog.Logger
}

// NewTracker constructs a tracker. A nil clock uses time.Now.
func NewTracker(cfg TrackerConfig, logger *slog.Logger, clock func() time.Time) *Tracker {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	return &Tracker{cfg: cfg, now: clock, logger: logging.WithComponent(logger, "tracker")}
}

// RecordSuccess resets the consecutive-failure counter and folds the
// call latency into the provider's running totals.
func (t *Tracker) RecordSuccess(p *Provider, latency time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.totalRequests++
	p.totalLatency += latency
	p.consecutiveFailures = 0
	p.available = true
	p.rateLimitedUntil = time.Time{}
	p.disabledUntil = time.Time{}
}

// RecordFailure applies the classified outcome to the provider's state
// machine. Rate-limit failures open a cooldown window; other failures
// count toward the disable threshold.
func (t *Tracker) RecordFailure(p *Provider, class services.FailureClass) {
	now := t.now()

	p.mu.Lock()
	p.totalRequests++
	p.totalFailures++

	switch class {
	case services.ClassRateLimited:
		p.rateLimitedUntil = now.Add(t.cfg.RateLimitCooldown)
		until := p.rateLimitedUntil
		p.mu.Unlock()
		t.logger.Warn("provider rate limited",
			slog.String("provider", p.Name),
			slog.Time("until", until))
		return
	default:
		p.consecutiveFailures++
		if p.consecutiveFailures >= t.cfg.FailureThreshold {
			p.available = false
			p.disabledUntil = now.Add(t.cfg.DisablePenalty)
			until := p.disabledUntil
			p.mu.Unlock()
			t.logger.Warn("provider disabled after repeated failures",
				slog.String("provider", p.Name),
				slog.Int("failures", t.cfg.FailureThreshold),
				slog.Time("until", until))
			return
		}
		count := p.consecutiveFailures
		p.mu.Unlock()
		t.logger.Debug("provider failure recorded",
			slog.String("provider", p.Name),
			slog.String("class", string(class)),
			slog.Int("consecutive", count))
	}
}
