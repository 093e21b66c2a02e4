package router

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/sciados/campaign-backend-sub004/internal/ledger"
	"github.com/sciados/campaign-backend-sub004/internal/provider"
	"github.com/sciados/campaign-backend-sub004/internal/services"
)

type fakeTextAdapter struct {
	name  string
	calls int
	fn    func() (services.TextResult, error)
}

func (f *fakeTextAdapter) Name() string { return f.name }

func (f *fakeTextAdapter) GenerateText(_ context.Context, _ services.TextRequest) (services.TextResult, error) {
	f.calls++
	return f.fn()
}

type fakeImageAdapter struct {
	name  string
	calls int
	fn    func() (services.ImageResult, error)
}

func (f *fakeImageAdapter) Name() string { return f.name }

func (f *fakeImageAdapter) GenerateImage(_ context.Context, _ services.ImageRequest) (services.ImageResult, error) {
	f.calls++
	return f.fn()
}

func succeedText(content string) func() (services.TextResult, error) {
	return func() (services.TextResult, error) {
		return services.TextResult{Content: content}, nil
	}
}

func failText(err error) func() (services.TextResult, error) {
	return func() (services.TextResult, error) {
		return services.TextResult{}, err
	}
}

type fixture struct {
	router   *Router
	registry *provider.Registry
	ledger   *ledger.Ledger
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		registry: provider.NewRegistry(),
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	f.ledger = ledger.New(clock)
	tracker := provider.NewTracker(provider.TrackerConfig{
		RateLimitCooldown: 60 * time.Second,
		DisablePenalty:    5 * time.Minute,
		FailureThreshold:  3,
	}, nil, clock)
	f.router = New(f.registry, tracker, f.ledger, Config{
		TokenFactor:       1.3,
		RequestTimeout:    30 * time.Second,
		BaselineTextPer1K: 0.06,
		BaselineImageCost: 0.08,
	}, nil, clock)
	return f
}

func (f *fixture) addText(name string, cost float64, quality int, fn func() (services.TextResult, error)) *fakeTextAdapter {
	f.registry.Register(provider.New(name, provider.CapabilityText, provider.TierCheap, cost, quality, 3, nil))
	adapter := &fakeTextAdapter{name: name, fn: fn}
	f.router.RegisterTextAdapter(adapter)
	return adapter
}

func TestCheapestEligibleProviderGoesFirst(t *testing.T) {
	f := newFixture(t)
	cheapest := f.addText("b", 0.0002, 78, succeedText("from b"))
	mid := f.addText("a", 0.002, 84, succeedText("from a"))
	costly := f.addText("c", 0.04, 90, succeedText("from c"))

	result, err := f.router.GenerateText(context.Background(), TextOptions{Prompt: "write ten words about savings", MaxTokens: 500})
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if result.Provider != "b" || result.Content != "from b" {
		t.Fatalf("expected cheapest provider b, got %+v", result)
	}
	if cheapest.calls != 1 || mid.calls != 0 || costly.calls != 0 {
		t.Fatalf("unexpected call counts b=%d a=%d c=%d", cheapest.calls, mid.calls, costly.calls)
	}
	if result.RequestID == "" {
		t.Fatal("expected a request id")
	}

	// estimated_units = ceil(5 * 1.3) + 500 = 507
	wantCost := 507.0 / 1000 * 0.0002
	if math.Abs(result.Cost-wantCost) > 1e-12 {
		t.Fatalf("unexpected cost %v, want %v", result.Cost, wantCost)
	}
	wantSavings := 507.0/1000*0.06 - wantCost
	if math.Abs(result.Savings-wantSavings) > 1e-12 {
		t.Fatalf("unexpected savings %v, want %v", result.Savings, wantSavings)
	}
}

func TestRateLimitedProviderSkippedUntilCooldown(t *testing.T) {
	f := newFixture(t)
	limited := f.addText("b", 0.0002, 78, failText(fmt.Errorf("vendor: %w", services.ErrRateLimited)))
	backup := f.addText("a", 0.002, 84, succeedText("from a"))

	result, err := f.router.GenerateText(context.Background(), TextOptions{Prompt: "hello", MaxTokens: 100})
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if result.Provider != "a" {
		t.Fatalf("expected fallback to a, got %s", result.Provider)
	}

	// Second call inside the cooldown must skip b entirely.
	f.now = f.now.Add(30 * time.Second)
	if _, err := f.router.GenerateText(context.Background(), TextOptions{Prompt: "hello", MaxTokens: 100}); err != nil {
		t.Fatalf("second GenerateText: %v", err)
	}
	if limited.calls != 1 {
		t.Fatalf("rate-limited provider called %d times, want 1", limited.calls)
	}
	if backup.calls != 2 {
		t.Fatalf("backup called %d times, want 2", backup.calls)
	}

	// After the cooldown b leads again.
	f.now = f.now.Add(31 * time.Second)
	limited.fn = succeedText("recovered")
	result, err = f.router.GenerateText(context.Background(), TextOptions{Prompt: "hello", MaxTokens: 100})
	if err != nil {
		t.Fatalf("third GenerateText: %v", err)
	}
	if result.Provider != "b" {
		t.Fatalf("expected recovered provider b, got %s", result.Provider)
	}
}

func TestDisabledProviderSkippedDuringPenalty(t *testing.T) {
	f := newFixture(t)
	flaky := f.addText("c", 0.0002, 78, failText(errors.New("boom")))
	f.addText("a", 0.002, 84, succeedText("from a"))

	for i := 0; i < 3; i++ {
		if _, err := f.router.GenerateText(context.Background(), TextOptions{Prompt: "hello", MaxTokens: 100}); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if flaky.calls != 3 {
		t.Fatalf("expected 3 attempts against c, got %d", flaky.calls)
	}

	// Fourth call inside the penalty window never attempts c.
	f.now = f.now.Add(4 * time.Minute)
	if _, err := f.router.GenerateText(context.Background(), TextOptions{Prompt: "hello", MaxTokens: 100}); err != nil {
		t.Fatalf("fourth call: %v", err)
	}
	if flaky.calls != 3 {
		t.Fatalf("disabled provider attempted during penalty, calls=%d", flaky.calls)
	}

	// After the window c is listed again.
	f.now = f.now.Add(2 * time.Minute)
	flaky.fn = succeedText("back")
	result, err := f.router.GenerateText(context.Background(), TextOptions{Prompt: "hello", MaxTokens: 100})
	if err != nil {
		t.Fatalf("fifth call: %v", err)
	}
	if result.Provider != "c" {
		t.Fatalf("expected recovered provider c, got %s", result.Provider)
	}
}

func TestExhaustionCarriesOrderedAttemptLog(t *testing.T) {
	f := newFixture(t)
	f.addText("b", 0.0002, 78, failText(fmt.Errorf("vendor: %w", services.ErrRateLimited)))
	f.addText("a", 0.002, 84, failText(errors.New("upstream 502")))
	f.addText("c", 0.04, 90, failText(fmt.Errorf("vendor: %w", services.ErrAuth)))

	_, err := f.router.GenerateText(context.Background(), TextOptions{Prompt: "hello", MaxTokens: 100})
	if !errors.Is(err, ErrAllProvidersExhausted) {
		t.Fatalf("expected exhaustion, got %v", err)
	}
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected *ExhaustedError, got %T", err)
	}
	if len(exhausted.Attempts) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(exhausted.Attempts))
	}
	wantOrder := []string{"b", "a", "c"}
	wantClass := []services.FailureClass{services.ClassRateLimited, services.ClassTransient, services.ClassPermanent}
	for i := range wantOrder {
		if exhausted.Attempts[i].Provider != wantOrder[i] {
			t.Errorf("attempt %d: provider %s, want %s", i, exhausted.Attempts[i].Provider, wantOrder[i])
		}
		if exhausted.Attempts[i].Class != wantClass[i] {
			t.Errorf("attempt %d: class %s, want %s", i, exhausted.Attempts[i].Class, wantClass[i])
		}
	}
}

func TestNoProvidersAvailable(t *testing.T) {
	f := newFixture(t)
	if _, err := f.router.GenerateText(context.Background(), TextOptions{Prompt: "hello"}); !errors.Is(err, ErrNoProvidersAvailable) {
		t.Fatalf("expected ErrNoProvidersAvailable, got %v", err)
	}
}

func TestRequiredStrengthFiltersCandidates(t *testing.T) {
	f := newFixture(t)
	f.registry.Register(provider.New("specialist", provider.CapabilityText, provider.TierFallback, 0.006, 90, 3, []string{"long-form"}))
	specialist := &fakeTextAdapter{name: "specialist", fn: succeedText("essay")}
	f.router.RegisterTextAdapter(specialist)
	generalist := f.addText("generalist", 0.0002, 78, succeedText("blurb"))

	result, err := f.router.GenerateText(context.Background(), TextOptions{
		Prompt:           "hello",
		MaxTokens:        100,
		RequiredStrength: "long-form",
	})
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if result.Provider != "specialist" || generalist.calls != 0 {
		t.Fatalf("expected specialist only, got %s (generalist calls %d)", result.Provider, generalist.calls)
	}
}

func TestGenerateImageFlatCost(t *testing.T) {
	f := newFixture(t)
	f.registry.Register(provider.New("stability", provider.CapabilityImage, provider.TierCheap, 0.03, 85, 3, nil))
	adapter := &fakeImageAdapter{name: "stability", fn: func() (services.ImageResult, error) {
		return services.ImageResult{ImageB64: "aW1n"}, nil
	}}
	f.router.RegisterImageAdapter(adapter)

	result, err := f.router.GenerateImage(context.Background(), ImageOptions{Prompt: "banner", Platform: "linkedin"})
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if result.Cost != 0.03 {
		t.Fatalf("expected flat image cost 0.03, got %v", result.Cost)
	}
	if math.Abs(result.Savings-0.05) > 1e-12 {
		t.Fatalf("expected savings 0.05, got %v", result.Savings)
	}
	if result.ImageB64 != "aW1n" {
		t.Fatalf("unexpected payload %q", result.ImageB64)
	}
}

func TestLedgerTotalsAfterMixedOutcomes(t *testing.T) {
	f := newFixture(t)
	f.addText("b", 0.0002, 78, failText(errors.New("boom")))
	f.addText("a", 0.002, 84, succeedText("ok"))

	if _, err := f.router.GenerateText(context.Background(), TextOptions{Prompt: "one two three", MaxTokens: 100}); err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	summary := f.ledger.Summary()
	if summary.TextRequests != 1 {
		t.Fatalf("expected 1 text request, got %d", summary.TextRequests)
	}
	// units = ceil(3 * 1.3) + 100 = 104
	wantCost := 104.0 / 1000 * 0.002
	if math.Abs(summary.TotalCost-wantCost) > 1e-12 {
		t.Fatalf("unexpected total cost %v, want %v", summary.TotalCost, wantCost)
	}
	if len(summary.Providers) != 2 {
		t.Fatalf("expected stats for both providers, got %d", len(summary.Providers))
	}
}

func TestEstimateTextUnits(t *testing.T) {
	cases := []struct {
		prompt      string
		maxTokens   int
		tokenFactor float64
		want        float64
	}{
		{"one two three four five", 500, 1.3, 507},
		{"", 100, 1.3, 100},
		{"word", 0, 1.3, 2},
		{"a b c", 10, 1.0, 13},
	}
	for _, tc := range cases {
		if got := estimateTextUnits(tc.prompt, tc.maxTokens, tc.tokenFactor); got != tc.want {
			t.Errorf("estimateTextUnits(%q, %d, %v) = %v, want %v", tc.prompt, tc.maxTokens, tc.tokenFactor, got, tc.want)
		}
	}
}
