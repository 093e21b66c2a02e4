package provider

import (
	"sync"
	"time"
)

// Capability identifies the kind of generation a provider serves.
type Capability string

const (
	CapabilityText  Capability = "text"
	CapabilityImage Capability = "image"
)

// Tier is a coarse cost/quality bucket used for human-facing
// classification only. Routing order is by actual unit cost.
type Tier string

const (
	TierUltraCheap Tier = "ultra-cheap"
	TierCheap      Tier = "cheap"
	TierFallback   Tier = "fallback"
	TierEmergency  Tier = "emergency"
)

// HealthState labels the derived state of a provider at a point in time.
type HealthState string

const (
	StateAvailable   HealthState = "available"
	StateRateLimited HealthState = "rate-limited"
	StateDisabled    HealthState = "disabled"
)

// Provider holds a vendor's static routing metadata plus its mutable
// per-process health state. Health fields are guarded by the provider's
// own mutex so unrelated vendors never contend with each other.
type Provider struct {
	Name         string
	Capability   Capability
	Tier         Tier
	CostPerUnit  float64
	QualityScore int
	SpeedRating  int
	Strengths    []string

	mu                  sync.Mutex
	available           bool
	rateLimitedUntil    time.Time
	disabledUntil       time.Time
	consecutiveFailures int
	totalRequests       int64
	totalFailures       int64
	totalLatency        time.Duration
}

// New constructs a provider in the available state.
func New(name string, capability Capability, tier Tier, costPerUnit float64, qualityScore, speedRating int, strengths []string) *Provider {
	return &Provider{
		Name:         name,
		Capability:   capability,
		Tier:         tier,
		CostPerUnit:  costPerUnit,
		QualityScore: qualityScore,
		SpeedRating:  speedRating,
		Strengths:    strengths,
		available:    true,
	}
}

// Eligible reports whether the provider may serve a request at the
// given instant. Rate-limit and disable windows expire lazily; no
// explicit transition back to available is required.
func (p *Provider) Eligible(now time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.available {
		if now.Before(p.disabledUntil) {
			return false
		}
		// Penalty window expired; recover lazily.
		p.available = true
		p.consecutiveFailures = 0
	}
	if !p.rateLimitedUntil.IsZero() && now.Before(p.rateLimitedUntil) {
		return false
	}
	return true
}

// HasStrength reports whether the provider declares the given
// capability tag. Empty strength matches everything.
func (p *Provider) HasStrength(strength string) bool {
	if strength == "" {
		return true
	}
	for _, s := range p.Strengths {
		if s == strength {
			return true
		}
	}
	return false
}

// Snapshot is a point-in-time copy of a provider's health counters,
// safe to hand to display and summary code.
type Snapshot struct {
	Name                string
	Capability          Capability
	Tier                Tier
	CostPerUnit         float64
	QualityScore        int
	SpeedRating         int
	Strengths           []string
	State               HealthState
	RateLimitedUntil    time.Time
	DisabledUntil       time.Time
	ConsecutiveFailures int
	TotalRequests       int64
	TotalFailures       int64
	AvgLatency          time.Duration
}

// Snapshot copies the provider's current state under its lock.
func (p *Provider) Snapshot(now time.Time) Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	state := StateAvailable
	switch {
	case !p.available && now.Before(p.disabledUntil):
		state = StateDisabled
	case !p.rateLimitedUntil.IsZero() && now.Before(p.rateLimitedUntil):
		state = StateRateLimited
	}

	var avg time.Duration
	if succeeded := p.totalRequests - p.totalFailures; succeeded > 0 {
		avg = p.totalLatency / time.Duration(succeeded)
	}
	return Snapshot{
		Name:                p.Name,
		Capability:          p.Capability,
		Tier:                p.Tier,
		CostPerUnit:         p.CostPerUnit,
		QualityScore:        p.QualityScore,
		SpeedRating:         p.SpeedRating,
		Strengths:           append([]string(nil), p.Strengths...),
		State:               state,
		RateLimitedUntil:    p.rateLimitedUntil,
		DisabledUntil:       p.disabledUntil,
		ConsecutiveFailures: p.consecutiveFailures,
		TotalRequests:       p.totalRequests,
		TotalFailures:       p.totalFailures,
		AvgLatency:          avg,
	}
}
