package intel

import (
	"context"
	"testing"
	"time"
)

func newTestCache(t *testing.T, store *Store, now time.Time) *Cache {
	t.Helper()
	return NewCache(store, CacheConfig{
		ConfidenceThreshold: 0.7,
		FreshnessWindow:     30 * 24 * time.Hour,
	}, nil, func() time.Time { return now })
}

func TestLookupHit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if _, err := store.InsertEntry(ctx, NewEntry{
		SourceURL:  "example.com",
		Confidence: 0.9,
		Analysis:   sampleAnalysis(),
		CreatedAt:  now.Add(-5 * 24 * time.Hour),
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	cache := newTestCache(t, store, now)
	result, err := cache.Lookup(ctx, "https://Example.com/")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !result.Hit {
		t.Fatal("expected a hit through URL normalization")
	}
	if result.Confidence != 0.9 {
		t.Fatalf("unexpected confidence %v", result.Confidence)
	}
	if result.Analysis.Offer.PricingModel != "subscription" {
		t.Fatalf("unexpected payload %+v", result.Analysis)
	}
}

func TestLookupMissCases(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cache := newTestCache(t, store, now)

	// Unknown fingerprint.
	result, err := cache.Lookup(ctx, "never-seen.example.com")
	if err != nil || result.Hit {
		t.Fatalf("expected clean miss, got hit=%v err=%v", result.Hit, err)
	}

	// Confidence below threshold.
	if _, err := store.InsertEntry(ctx, NewEntry{
		SourceURL:  "lowconf.example.com",
		Confidence: 0.5,
		Analysis:   sampleAnalysis(),
		CreatedAt:  now.Add(-time.Hour),
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	result, err = cache.Lookup(ctx, "lowconf.example.com")
	if err != nil || result.Hit {
		t.Fatalf("low confidence must miss, got hit=%v err=%v", result.Hit, err)
	}

	// Age beyond the freshness window.
	if _, err := store.InsertEntry(ctx, NewEntry{
		SourceURL:  "stale.example.com",
		Confidence: 0.95,
		Analysis:   sampleAnalysis(),
		CreatedAt:  now.Add(-45 * 24 * time.Hour),
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	result, err = cache.Lookup(ctx, "stale.example.com")
	if err != nil || result.Hit {
		t.Fatalf("stale entry must miss, got hit=%v err=%v", result.Hit, err)
	}
}

func TestLookupPrefersHighestConfidenceThenRecency(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, e := range []struct {
		confidence float64
		age        time.Duration
	}{
		{0.8, 10 * 24 * time.Hour},
		{0.95, 20 * 24 * time.Hour},
		{0.95, 3 * 24 * time.Hour},
	} {
		if _, err := store.InsertEntry(ctx, NewEntry{
			SourceURL:  "example.com",
			Confidence: e.confidence,
			Analysis:   sampleAnalysis(),
			CreatedAt:  now.Add(-e.age),
		}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	cache := newTestCache(t, store, now)
	result, err := cache.Lookup(ctx, "example.com")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !result.Hit || result.Confidence != 0.95 {
		t.Fatalf("expected highest-confidence hit, got %+v", result)
	}
	if !result.CreatedAt.Equal(now.Add(-3 * 24 * time.Hour)) {
		t.Fatalf("expected most recent of the tied entries, got %v", result.CreatedAt)
	}
}

func TestLookupCorruptPayloadIsMiss(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	entry, err := store.InsertEntry(ctx, NewEntry{
		SourceURL:  "example.com",
		Confidence: 0.9,
		Analysis:   sampleAnalysis(),
		CreatedAt:  now.Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := store.db.ExecContext(ctx,
		`UPDATE intel_entries SET offer_json = 'not json' WHERE id = ?`, entry.ID); err != nil {
		t.Fatalf("corrupt entry: %v", err)
	}

	cache := newTestCache(t, store, now)
	result, err := cache.Lookup(ctx, "example.com")
	if err != nil {
		t.Fatalf("corrupt payload must not be a hard error: %v", err)
	}
	if result.Hit {
		t.Fatal("corrupt payload must be treated as a miss")
	}
}
