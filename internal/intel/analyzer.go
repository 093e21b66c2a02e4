package intel

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sciados/campaign-backend-sub004/internal/logging"
)

// AnalyzeFunc performs one fresh, expensive analysis of a source URL.
// The heavy lifting lives outside this subsystem.
type AnalyzeFunc func(ctx context.Context, url string) (Analysis, float64, error)

// Analyzer is the cache front door. Lookups that miss fall through to
// a fresh analysis, with concurrent first-requests for the same
// fingerprint collapsed into a single in-flight call; the first writer
// wins and every waiter shares its result.
type Analyzer struct {
	cache   *Cache
	store   *Store
	analyze AnalyzeFunc
	group   singleflight.Group
	now     func() time.Time
	logger  *slog.Logger
}

// NewAnalyzer constructs an analyzer. A nil clock uses time.Now.
func NewAnalyzer(cache *Cache, store *Store, analyze AnalyzeFunc, logger *slog.Logger, clock func() time.Time) *Analyzer {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Analyzer{
		cache:   cache,
		store:   store,
		analyze: analyze,
		now:     clock,
		logger:  logging.WithComponent(logger, "intel-analyzer"),
	}
}

// Analyze returns a cached analysis when one qualifies, otherwise runs
// a fresh analysis and persists it. The returned LookupResult reports
// Hit=true only for genuine cache hits.
func (a *Analyzer) Analyze(ctx context.Context, url, requester string) (LookupResult, error) {
	result, err := a.cache.Lookup(ctx, url)
	if err != nil {
		return LookupResult{}, err
	}
	if result.Hit {
		return result, nil
	}

	fingerprint := Fingerprint(url)
	shared, err, _ := a.group.Do(fingerprint, func() (any, error) {
		// Re-check under the lease: a concurrent caller may have
		// persisted an entry while we waited for our turn.
		again, err := a.cache.Lookup(ctx, url)
		if err != nil {
			return LookupResult{}, err
		}
		if again.Hit {
			return again, nil
		}

		analysis, confidence, err := a.analyze(ctx, url)
		if err != nil {
			return LookupResult{}, err
		}
		entry, err := a.store.InsertEntry(ctx, NewEntry{
			SourceURL:  url,
			Requester:  requester,
			Confidence: confidence,
			Analysis:   analysis,
			CreatedAt:  a.now().UTC(),
		})
		if err != nil {
			return LookupResult{}, err
		}
		a.logger.Info("fresh analysis stored",
			slog.String("fingerprint", fingerprint),
			slog.Float64("confidence", confidence))
		return LookupResult{
			Hit:        false,
			Entry:      entry,
			Analysis:   analysis,
			Confidence: confidence,
			CreatedAt:  entry.CreatedAt,
		}, nil
	})
	if err != nil {
		return LookupResult{}, err
	}
	return shared.(LookupResult), nil
}
