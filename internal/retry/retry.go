package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amishk599/feedwatch/internal/model"
)

// maxRetryAfter caps how long a server-supplied Retry-After may stall a run.
const maxRetryAfter = time.Minute

// RetryFetcher is a decorator that retries failed fetches a bounded number of
// times with a fixed delay before giving up with a *model.FetchError.
type RetryFetcher struct {
	inner    model.RecordFetcher
	feedID   string
	attempts int
	delay    time.Duration
	logger   *slog.Logger
}

// NewRetryFetcher wraps a RecordFetcher with retry logic.
// attempts is the total number of tries including the first (default: 3).
// delay is the fixed pause between tries (default: 5s).
func NewRetryFetcher(inner model.RecordFetcher, feedID string, attempts int, delay time.Duration, logger *slog.Logger) *RetryFetcher {
	if attempts < 1 {
		attempts = 1
	}
	return &RetryFetcher{
		inner:    inner,
		feedID:   feedID,
		attempts: attempts,
		delay:    delay,
		logger:   logger,
	}
}

// FetchRecords attempts the fetch until it succeeds, the attempts run out, or
// ctx is cancelled.
func (f *RetryFetcher) FetchRecords(ctx context.Context) ([]model.Record, error) {
	var lastErr error
	for attempt := 1; attempt <= f.attempts; attempt++ {
		if attempt > 1 {
			delay := f.delayFor(lastErr)
			f.logger.Warn("retrying feed fetch",
				"feed", f.feedID,
				"attempt", attempt,
				"max_attempts", f.attempts,
				"delay", delay,
				"error", lastErr,
			)

			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("retry cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
		}

		records, err := f.inner.FetchRecords(ctx)
		if err == nil {
			return records, nil
		}
		if isCancellation(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, &model.FetchError{Feed: f.feedID, Attempts: f.attempts, Err: lastErr}
}

// delayFor returns the fixed delay, unless the server asked for a longer
// pause via Retry-After.
func (f *RetryFetcher) delayFor(err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > f.delay {
		return min(httpErr.RetryAfter, maxRetryAfter)
	}
	return f.delay
}

// isCancellation reports whether err came from the caller giving up. Every
// other failure (timeouts, non-2xx, connection errors, bad bodies) is retried.
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}
