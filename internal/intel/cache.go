package intel

import (
	"context"
	"log/slog"
	"time"

	"github.com/sciados/campaign-backend-sub004/internal/logging"
)

// CacheConfig carries the lookup eligibility knobs.
type CacheConfig struct {
	ConfidenceThreshold float64
	FreshnessWindow     time.Duration
}

// Cache answers "do we already have a good-enough analysis of this
// URL". It is read-only over the store and never calls a provider.
type Cache struct {
	store  *Store
	cfg    CacheConfig
	now    func() time.Time
	logger *slog.Logger
}

// NewCache constructs a cache front end. A nil clock uses time.Now.
func NewCache(store *Store, cfg CacheConfig, logger *slog.Logger, clock func() time.Time) *Cache {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Cache{store: store, cfg: cfg, now: clock, logger: logging.WithComponent(logger, "intel-cache")}
}

// LookupResult reports the outcome of a cache lookup. A miss is normal
// control flow, not an error.
type LookupResult struct {
	Hit        bool
	Entry      *Entry
	Analysis   Analysis
	Confidence float64
	CreatedAt  time.Time
}

// Lookup fingerprints the URL and returns the best qualifying entry:
// confidence at or above the threshold, age within the freshness
// window, highest confidence first with ties broken by recency. A
// corrupt payload is logged and skipped, never surfaced as an error.
func (c *Cache) Lookup(ctx context.Context, url string) (LookupResult, error) {
	now := c.now()
	fingerprint := Fingerprint(url)
	oldest := now.Add(-c.cfg.FreshnessWindow)

	entries, err := c.store.QueryByFingerprint(ctx, fingerprint, c.cfg.ConfidenceThreshold, oldest)
	if err != nil {
		return LookupResult{}, err
	}

	for _, entry := range entries {
		analysis, err := entry.Analysis()
		if err != nil {
			c.logger.Warn("corrupt cache payload, treating as miss",
				slog.Int64("entry_id", entry.ID),
				slog.String("fingerprint", fingerprint),
				slog.String("error", err.Error()))
			continue
		}
		return LookupResult{
			Hit:        true,
			Entry:      entry,
			Analysis:   analysis,
			Confidence: entry.Confidence,
			CreatedAt:  entry.CreatedAt,
		}, nil
	}
	return LookupResult{}, nil
}
