package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/amishk599/feedwatch/internal/model"
)

func TestWait_SameHost_EnforcesMinDelay(t *testing.T) {
	limiter := NewHostRateLimiter(100 * time.Millisecond)
	ctx := context.Background()

	// First call should return immediately.
	if err := limiter.Wait(ctx, "jobs.example.com"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx, "jobs.example.com"); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	elapsed := time.Since(start)

	// Should have waited at least ~100ms (allow 80ms for timer jitter).
	if elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait, got %v", elapsed)
	}
}

func TestWait_DifferentHosts_NoCrossBlocking(t *testing.T) {
	limiter := NewHostRateLimiter(200 * time.Millisecond)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "a.example.com"); err != nil {
		t.Fatalf("a wait: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx, "b.example.com"); err != nil {
		t.Fatalf("b wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("expected b wait to be near-instant, got %v", elapsed)
	}
}

func TestWait_ZeroDelayNeverBlocks(t *testing.T) {
	limiter := NewHostRateLimiter(0)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 5; i++ {
		if err := limiter.Wait(ctx, "jobs.example.com"); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("expected no blocking, got %v", elapsed)
	}
}

func TestWait_ContextCancellation(t *testing.T) {
	limiter := NewHostRateLimiter(5 * time.Second)
	ctx := context.Background()

	// First call to use up the burst.
	if err := limiter.Wait(ctx, "jobs.example.com"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx, "jobs.example.com"); err == nil {
		t.Fatal("expected error from cancelled context, got nil")
	}
}

type countingFetcher struct {
	calls int
}

func (f *countingFetcher) FetchRecords(_ context.Context) ([]model.Record, error) {
	f.calls++
	return nil, nil
}

func TestRateLimitedFetcher_Delegates(t *testing.T) {
	inner := &countingFetcher{}
	f := NewRateLimitedFetcher(inner, NewHostRateLimiter(10*time.Millisecond), "https://jobs.example.com/intern.json")

	if _, err := f.FetchRecords(context.Background()); err != nil {
		t.Fatalf("FetchRecords: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}
	if f.host != "jobs.example.com" {
		t.Errorf("host = %q", f.host)
	}
}
