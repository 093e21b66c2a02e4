package intel

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sciados/campaign-backend-sub004/internal/ledger"
	"github.com/sciados/campaign-backend-sub004/internal/logging"
)

// Referencer turns cache hits into attributed reuse records. It never
// touches a vendor adapter; reuse is free by definition.
type Referencer struct {
	store    *Store
	ledger   *ledger.Ledger
	baseline float64
	now      func() time.Time
	logger   *slog.Logger
}

// NewReferencer constructs a referencer. baseline is the configured
// full cost of a fresh analysis, credited as savings per reuse.
func NewReferencer(store *Store, costs *ledger.Ledger, baseline float64, logger *slog.Logger, clock func() time.Time) *Referencer {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Referencer{
		store:    store,
		ledger:   costs,
		baseline: baseline,
		now:      clock,
		logger:   logging.WithComponent(logger, "intel-reference"),
	}
}

// CreateReference copies the cached payload into a new record
// attributed to requester, marks its origin, logs the reference read,
// and reports a zero-cost full-baseline event to the ledger. Returns
// the reference id.
func (r *Referencer) CreateReference(ctx context.Context, entry *Entry, requester string) (string, error) {
	analysis, err := entry.Analysis()
	if err != nil {
		return "", fmt.Errorf("create reference: %w", err)
	}

	now := r.now().UTC()
	copied, err := r.store.InsertEntry(ctx, NewEntry{
		SourceURL:   entry.SourceURL,
		Requester:   requester,
		DerivedFrom: entry.ID,
		Confidence:  entry.Confidence,
		Analysis:    analysis,
		CreatedAt:   now,
	})
	if err != nil {
		return "", fmt.Errorf("create reference: %w", err)
	}

	referenceID := uuid.NewString()
	if err := r.store.InsertReference(ctx, referenceID, entry.ID, requester, now); err != nil {
		return "", fmt.Errorf("create reference: %w", err)
	}

	if r.ledger != nil {
		r.ledger.RecordCacheReuse(r.baseline)
	}
	r.logger.Info("cache entry reused",
		slog.Int64("entry_id", entry.ID),
		slog.Int64("copy_id", copied.ID),
		slog.String("requester", requester),
		slog.Float64("savings", r.baseline))
	return referenceID, nil
}
