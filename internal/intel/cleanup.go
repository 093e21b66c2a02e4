package intel

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofrs/flock"

	"github.com/sciados/campaign-backend-sub004/internal/logging"
)

// CleanupConfig carries the eviction policy knobs.
type CleanupConfig struct {
	FreshnessWindow     time.Duration
	ConfidenceThreshold float64
	ReferenceGrace      time.Duration
}

// Cleanup evicts entries that are stale, low-confidence, and
// unreferenced. Entries touched by a reference within the grace period
// survive regardless of age or confidence, so active reuse chains are
// never invalidated.
type Cleanup struct {
	store  *Store
	cfg    CleanupConfig
	lock   *flock.Flock
	now    func() time.Time
	logger *slog.Logger
}

// NewCleanup constructs a cleanup sweeper. The flock guards against
// concurrent sweeps from multiple processes sharing the database.
func NewCleanup(store *Store, cfg CleanupConfig, logger *slog.Logger, clock func() time.Time) *Cleanup {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Cleanup{
		store:  store,
		cfg:    cfg,
		lock:   flock.New(store.Path() + ".cleanup.lock"),
		now:    clock,
		logger: logging.WithComponent(logger, "intel-cleanup"),
	}
}

// Sweep runs one eviction pass and returns the number of deleted
// entries. If another process holds the sweep lock, the pass is skipped
// and returns zero.
func (c *Cleanup) Sweep(ctx context.Context) (int64, error) {
	locked, err := c.lock.TryLock()
	if err != nil {
		return 0, err
	}
	if !locked {
		c.logger.Debug("sweep already running elsewhere, skipping")
		return 0, nil
	}
	defer func() { _ = c.lock.Unlock() }()

	now := c.now()
	evicted, err := c.store.DeleteStale(ctx,
		now.Add(-c.cfg.FreshnessWindow),
		c.cfg.ConfidenceThreshold,
		now.Add(-c.cfg.ReferenceGrace),
	)
	if err != nil {
		return 0, err
	}
	if evicted > 0 {
		c.logger.Info("evicted stale cache entries", slog.Int64("count", evicted))
	}
	return evicted, nil
}

// Run sweeps on the given interval until the context is cancelled.
func (c *Cleanup) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := c.Sweep(ctx); err != nil {
			c.logger.Error("sweep failed", slog.String("error", err.Error()))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
