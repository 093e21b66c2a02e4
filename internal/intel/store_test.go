package intel

import (
	"context"
	"testing"
	"time"

	"github.com/sciados/campaign-backend-sub004/internal/testsupport"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(testsupport.NewConfig(t))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleAnalysis() Analysis {
	return Analysis{
		Offer: Offer{
			Products:     []string{"course", "coaching"},
			PricingModel: "subscription",
			ValueProps:   []string{"saves time"},
			Guarantees:   []string{"30-day refund"},
		},
		Competitive: Competitive{
			Advantages:  []string{"cheaper"},
			Gaps:        []string{"no mobile app"},
			Positioning: "budget leader",
		},
		Psychology: Psychology{
			EmotionalTriggers: []string{"fear of missing out"},
			PainPoints:        []string{"wasted ad spend"},
			Objections:        []string{"too good to be true"},
			PersuasionAngle:   "social proof",
		},
	}
}

func TestInsertAndRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	want := sampleAnalysis()
	entry, err := store.InsertEntry(ctx, NewEntry{
		SourceURL:  "https://example.com/offer",
		Requester:  "user-1",
		Confidence: 0.9,
		Analysis:   want,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if entry.ID == 0 || entry.Fingerprint != Fingerprint("example.com/offer") {
		t.Fatalf("unexpected entry %+v", entry)
	}

	got, err := entry.Analysis()
	if err != nil {
		t.Fatalf("reconstruct: %v", err)
	}
	if got.Offer.PricingModel != want.Offer.PricingModel ||
		len(got.Offer.Products) != 2 ||
		got.Competitive.Positioning != want.Competitive.Positioning ||
		got.Psychology.PersuasionAngle != want.Psychology.PersuasionAngle {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestQueryByFingerprintOrdering(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	insert := func(confidence float64, createdAt time.Time) {
		t.Helper()
		if _, err := store.InsertEntry(ctx, NewEntry{
			SourceURL:  "example.com",
			Confidence: confidence,
			Analysis:   sampleAnalysis(),
			CreatedAt:  createdAt,
		}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	insert(0.8, now.Add(-48*time.Hour))
	insert(0.95, now.Add(-24*time.Hour))
	insert(0.95, now.Add(-2*time.Hour))
	insert(0.5, now.Add(-time.Hour))

	entries, err := store.QueryByFingerprint(ctx, Fingerprint("example.com"), 0.7, now.Add(-30*24*time.Hour))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 qualifying entries, got %d", len(entries))
	}
	// Highest confidence first, ties broken by recency.
	if entries[0].Confidence != 0.95 || !entries[0].CreatedAt.Equal(now.Add(-2*time.Hour)) {
		t.Fatalf("unexpected best entry %+v", entries[0])
	}
	if entries[2].Confidence != 0.8 {
		t.Fatalf("unexpected last entry %+v", entries[2])
	}
}

func TestQueryExcludesStaleEntries(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if _, err := store.InsertEntry(ctx, NewEntry{
		SourceURL:  "example.com",
		Confidence: 0.9,
		Analysis:   sampleAnalysis(),
		CreatedAt:  now.Add(-40 * 24 * time.Hour),
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	entries, err := store.QueryByFingerprint(ctx, Fingerprint("example.com"), 0.7, now.Add(-30*24*time.Hour))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("stale entry should not qualify, got %d", len(entries))
	}
}

func TestDeleteStaleSparesReferencedEntries(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	old := now.Add(-60 * 24 * time.Hour)
	referenced, err := store.InsertEntry(ctx, NewEntry{
		SourceURL:  "example.com/kept",
		Confidence: 0.4,
		Analysis:   sampleAnalysis(),
		CreatedAt:  old,
	})
	if err != nil {
		t.Fatalf("insert kept: %v", err)
	}
	if err := store.InsertReference(ctx, "ref-1", referenced.ID, "user-1", now.Add(-2*24*time.Hour)); err != nil {
		t.Fatalf("insert reference: %v", err)
	}

	if _, err := store.InsertEntry(ctx, NewEntry{
		SourceURL:  "example.com/evicted",
		Confidence: 0.4,
		Analysis:   sampleAnalysis(),
		CreatedAt:  old,
	}); err != nil {
		t.Fatalf("insert evicted: %v", err)
	}

	// High confidence survives even when stale and unreferenced.
	if _, err := store.InsertEntry(ctx, NewEntry{
		SourceURL:  "example.com/confident",
		Confidence: 0.9,
		Analysis:   sampleAnalysis(),
		CreatedAt:  old,
	}); err != nil {
		t.Fatalf("insert confident: %v", err)
	}

	evicted, err := store.DeleteStale(ctx, now.Add(-30*24*time.Hour), 0.7, now.Add(-7*24*time.Hour))
	if err != nil {
		t.Fatalf("delete stale: %v", err)
	}
	if evicted != 1 {
		t.Fatalf("expected 1 eviction, got %d", evicted)
	}
	if _, err := store.GetByID(ctx, referenced.ID); err != nil {
		t.Fatalf("referenced entry should survive: %v", err)
	}
	count, err := store.EntryCount(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 surviving entries, got %d", count)
	}
}
