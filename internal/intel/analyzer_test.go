package intel

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestAnalyzeReturnsCacheHitWithoutAnalyzing(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if _, err := store.InsertEntry(ctx, NewEntry{
		SourceURL:  "example.com",
		Confidence: 0.9,
		Analysis:   sampleAnalysis(),
		CreatedAt:  now.Add(-time.Hour),
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	var calls atomic.Int64
	analyzer := NewAnalyzer(newTestCache(t, store, now), store,
		func(context.Context, string) (Analysis, float64, error) {
			calls.Add(1)
			return Analysis{}, 0, errors.New("must not be called")
		}, nil, func() time.Time { return now })

	result, err := analyzer.Analyze(ctx, "https://Example.com/", "user-1")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !result.Hit || calls.Load() != 0 {
		t.Fatalf("expected pure cache hit, hit=%v calls=%d", result.Hit, calls.Load())
	}
}

func TestAnalyzeMissRunsAndPersists(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	analyzer := NewAnalyzer(newTestCache(t, store, now), store,
		func(context.Context, string) (Analysis, float64, error) {
			return sampleAnalysis(), 0.85, nil
		}, nil, func() time.Time { return now })

	result, err := analyzer.Analyze(ctx, "example.com/new", "user-1")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if result.Hit {
		t.Fatal("fresh analysis must not report a cache hit")
	}
	if result.Entry == nil || result.Confidence != 0.85 {
		t.Fatalf("unexpected result %+v", result)
	}

	// Second call now hits the cache.
	followUp, err := analyzer.Analyze(ctx, "example.com/new", "user-2")
	if err != nil {
		t.Fatalf("second analyze: %v", err)
	}
	if !followUp.Hit {
		t.Fatal("persisted analysis should serve the next lookup")
	}
}

func TestConcurrentFirstRequestsCollapseToOneAnalysis(t *testing.T) {
	store := openTestStore(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var calls atomic.Int64
	release := make(chan struct{})
	analyzer := NewAnalyzer(newTestCache(t, store, now), store,
		func(context.Context, string) (Analysis, float64, error) {
			calls.Add(1)
			<-release
			return sampleAnalysis(), 0.9, nil
		}, nil, func() time.Time { return now })

	const workers = 8
	var wg sync.WaitGroup
	results := make([]LookupResult, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = analyzer.Analyze(context.Background(), "example.com/contended", "user")
		}(i)
	}

	// Give every worker time to reach the lease before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("expected exactly one fresh analysis, got %d", got)
	}
	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		if results[i].Confidence != 0.9 {
			t.Fatalf("worker %d got unexpected result %+v", i, results[i])
		}
	}
	count, err := store.EntryCount(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single persisted entry, got %d", count)
	}
}
