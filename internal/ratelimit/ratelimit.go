package ratelimit

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/amishk599/feedwatch/internal/model"
)

// HostRateLimiter enforces a minimum gap between requests to the same host.
type HostRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter // key: URL host
	minDelay time.Duration
}

// NewHostRateLimiter creates a limiter that spaces consecutive requests to one
// host by at least minDelay. A zero delay disables limiting.
func NewHostRateLimiter(minDelay time.Duration) *HostRateLimiter {
	return &HostRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		minDelay: minDelay,
	}
}

func (r *HostRateLimiter) limiterFor(host string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	if lim, ok := r.limiters[host]; ok {
		return lim
	}
	lim := rate.NewLimiter(rate.Every(r.minDelay), 1)
	r.limiters[host] = lim
	return lim
}

// Wait blocks until a request to host may proceed.
// Returns an error if the context is cancelled while waiting.
func (r *HostRateLimiter) Wait(ctx context.Context, host string) error {
	if r.minDelay <= 0 {
		return nil
	}
	if err := r.limiterFor(host).Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait for %s: %w", host, err)
	}
	return nil
}

// RateLimitedFetcher is a decorator that enforces host-level rate limiting
// before delegating to the wrapped RecordFetcher.
type RateLimitedFetcher struct {
	inner   model.RecordFetcher
	limiter *HostRateLimiter
	host    string
}

// NewRateLimitedFetcher wraps a RecordFetcher with host-level rate limiting.
// All fetchers should share one limiter so feeds on the same host are spaced.
func NewRateLimitedFetcher(inner model.RecordFetcher, limiter *HostRateLimiter, rawURL string) *RateLimitedFetcher {
	return &RateLimitedFetcher{
		inner:   inner,
		limiter: limiter,
		host:    hostOf(rawURL),
	}
}

// FetchRecords waits for the limiter, then delegates to the wrapped fetcher.
func (f *RateLimitedFetcher) FetchRecords(ctx context.Context) ([]model.Record, error) {
	if err := f.limiter.Wait(ctx, f.host); err != nil {
		return nil, err
	}
	return f.inner.FetchRecords(ctx)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "_"
	}
	return u.Host
}
