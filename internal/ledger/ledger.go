package ledger

import (
	"sort"
	"sync"
	"time"

	"github.com/sciados/campaign-backend-sub004/internal/provider"
	"github.com/sciados/campaign-backend-sub004/internal/services"
)

// Ledger accumulates per-call cost and savings for the lifetime of the
// process. Counters are additive only; the ledger resets at process
// start and never deletes.
type Ledger struct {
	mu        sync.Mutex
	startedAt time.Time
	now       func() time.Time

	textRequests  int64
	imageRequests int64
	cacheReuses   int64
	totalCost     float64
	totalSavings  float64
	providers     map[string]*providerBucket
}

type providerBucket struct {
	requests     int64
	successes    int64
	failures     int64
	cost         float64
	savings      float64
	totalLatency time.Duration
}

// New constructs a ledger. A nil clock uses time.Now.
func New(clock func() time.Time) *Ledger {
	if clock == nil {
		clock = time.Now
	}
	return &Ledger{
		startedAt: clock(),
		now:       clock,
		providers: make(map[string]*providerBucket),
	}
}

func (l *Ledger) bucket(name string) *providerBucket {
	b := l.providers[name]
	if b == nil {
		b = &providerBucket{}
		l.providers[name] = b
	}
	return b
}

// RecordSuccess folds a completed generation into the running totals.
// Savings may be negative when the serving provider is costlier than
// the configured baseline; the signed value is kept as-is.
func (l *Ledger) RecordSuccess(name string, capability provider.Capability, cost, savings float64, latency time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch capability {
	case provider.CapabilityImage:
		l.imageRequests++
	default:
		l.textRequests++
	}
	l.totalCost += cost
	l.totalSavings += savings

	b := l.bucket(name)
	b.requests++
	b.successes++
	b.cost += cost
	b.savings += savings
	b.totalLatency += latency
}

// RecordFailure counts a failed attempt against the provider.
func (l *Ledger) RecordFailure(name string, _ services.FailureClass) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.bucket(name)
	b.requests++
	b.failures++
}

// RecordCacheReuse credits a cache-reference event: zero cost, full
// baseline savings, no provider involved.
func (l *Ledger) RecordCacheReuse(baseline float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cacheReuses++
	l.totalSavings += baseline
}

// ProviderStats is a point-in-time copy of one provider's counters.
type ProviderStats struct {
	Name        string
	Requests    int64
	Successes   int64
	Failures    int64
	SuccessRate float64
	Cost        float64
	Savings     float64
	AvgLatency  time.Duration
}

// Summary is a point-in-time view of the ledger.
type Summary struct {
	TextRequests         int64
	ImageRequests        int64
	CacheReuses          int64
	TotalCost            float64
	TotalSavings         float64
	Uptime               time.Duration
	ProjectedMonthlyCost float64
	Providers            []ProviderStats
}

const month = 30 * 24 * time.Hour

// Summary snapshots the totals and extrapolates the monthly cost from
// the spend rate observed so far.
func (l *Ledger) Summary() Summary {
	l.mu.Lock()
	defer l.mu.Unlock()

	uptime := l.now().Sub(l.startedAt)
	summary := Summary{
		TextRequests:  l.textRequests,
		ImageRequests: l.imageRequests,
		CacheReuses:   l.cacheReuses,
		TotalCost:     l.totalCost,
		TotalSavings:  l.totalSavings,
		Uptime:        uptime,
	}
	if uptime > 0 {
		summary.ProjectedMonthlyCost = l.totalCost / uptime.Seconds() * month.Seconds()
	}

	for name, b := range l.providers {
		stats := ProviderStats{
			Name:      name,
			Requests:  b.requests,
			Successes: b.successes,
			Failures:  b.failures,
			Cost:      b.cost,
			Savings:   b.savings,
		}
		if b.requests > 0 {
			stats.SuccessRate = float64(b.successes) / float64(b.requests)
		}
		if b.successes > 0 {
			stats.AvgLatency = b.totalLatency / time.Duration(b.successes)
		}
		summary.Providers = append(summary.Providers, stats)
	}
	sort.Slice(summary.Providers, func(i, j int) bool {
		return summary.Providers[i].Name < summary.Providers[j].Name
	})
	return summary
}
