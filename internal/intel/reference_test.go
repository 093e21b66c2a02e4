package intel

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/sciados/campaign-backend-sub004/internal/ledger"
)

func TestCreateReferenceCopiesPayloadAndCreditsLedger(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	entry, err := store.InsertEntry(ctx, NewEntry{
		SourceURL:  "example.com/offer",
		Requester:  "user-1",
		Confidence: 0.9,
		Analysis:   sampleAnalysis(),
		CreatedAt:  now.Add(-2 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	costs := ledger.New(func() time.Time { return now })
	referencer := NewReferencer(store, costs, 2.50, nil, func() time.Time { return now })

	refID, err := referencer.CreateReference(ctx, entry, "user-2")
	if err != nil {
		t.Fatalf("create reference: %v", err)
	}
	if refID == "" {
		t.Fatal("expected a reference id")
	}

	// The copy is attributed to the new requester and marks its origin.
	copies, err := store.QueryByFingerprint(ctx, entry.Fingerprint, 0, now.Add(-30*24*time.Hour))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	var copied *Entry
	for _, e := range copies {
		if e.DerivedFrom == entry.ID {
			copied = e
		}
	}
	if copied == nil {
		t.Fatal("expected a derived copy of the cached entry")
	}
	if copied.Requester != "user-2" || copied.Confidence != 0.9 {
		t.Fatalf("unexpected copy %+v", copied)
	}

	refs, err := store.CountReferences(ctx, entry.ID)
	if err != nil {
		t.Fatalf("count references: %v", err)
	}
	if refs != 1 {
		t.Fatalf("expected 1 reference, got %d", refs)
	}

	summary := costs.Summary()
	if summary.CacheReuses != 1 {
		t.Fatalf("expected 1 cache reuse, got %d", summary.CacheReuses)
	}
	if summary.TotalCost != 0 {
		t.Fatalf("reuse must be zero cost, got %v", summary.TotalCost)
	}
	if math.Abs(summary.TotalSavings-2.50) > 1e-9 {
		t.Fatalf("expected full baseline savings 2.50, got %v", summary.TotalSavings)
	}
}
