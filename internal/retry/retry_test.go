package retry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amishk599/feedwatch/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockFetcher calls a function on each invocation, tracking call count.
type mockFetcher struct {
	calls int
	fn    func(attempt int) ([]model.Record, error)
}

func (m *mockFetcher) FetchRecords(_ context.Context) ([]model.Record, error) {
	m.calls++
	return m.fn(m.calls)
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	records := []model.Record{{Subject: "A", UpdateDate: "2024-01-01"}}
	mock := &mockFetcher{fn: func(_ int) ([]model.Record, error) {
		return records, nil
	}}

	rf := NewRetryFetcher(mock, "intern", 3, 10*time.Millisecond, discardLogger())
	got, err := rf.FetchRecords(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Subject != "A" {
		t.Fatalf("unexpected records: %v", got)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call, got %d", mock.calls)
	}
}

func TestRetry_RetriesOn5xx_SucceedsOnSecondAttempt(t *testing.T) {
	mock := &mockFetcher{fn: func(attempt int) ([]model.Record, error) {
		if attempt == 1 {
			return nil, &model.HTTPError{StatusCode: 503, Err: errors.New("service unavailable")}
		}
		return []model.Record{{Subject: "A"}}, nil
	}}

	rf := NewRetryFetcher(mock, "intern", 3, 10*time.Millisecond, discardLogger())
	got, err := rf.FetchRecords(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if mock.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.calls)
	}
}

func TestRetry_RetriesOn4xx(t *testing.T) {
	mock := &mockFetcher{fn: func(attempt int) ([]model.Record, error) {
		if attempt < 3 {
			return nil, &model.HTTPError{StatusCode: 403, Err: errors.New("forbidden")}
		}
		return []model.Record{}, nil
	}}

	rf := NewRetryFetcher(mock, "intern", 3, 10*time.Millisecond, discardLogger())
	if _, err := rf.FetchRecords(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", mock.calls)
	}
}

func TestRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	mock := &mockFetcher{fn: func(_ int) ([]model.Record, error) {
		return nil, errors.New("connection refused")
	}}

	rf := NewRetryFetcher(mock, "intern", 3, 10*time.Millisecond, discardLogger())
	_, err := rf.FetchRecords(context.Background())
	if err == nil {
		t.Fatal("expected error after max attempts, got nil")
	}
	var fetchErr *model.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %T: %v", err, err)
	}
	if fetchErr.Feed != "intern" || fetchErr.Attempts != 3 {
		t.Errorf("unexpected FetchError: %+v", fetchErr)
	}
	if mock.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", mock.calls)
	}
}

func TestRetry_RespectsContextCancellation(t *testing.T) {
	mock := &mockFetcher{fn: func(_ int) ([]model.Record, error) {
		return nil, &model.HTTPError{StatusCode: 500, Err: errors.New("internal error")}
	}}

	ctx, cancel := context.WithCancel(context.Background())
	// Cancel immediately so the delay is interrupted.
	cancel()

	rf := NewRetryFetcher(mock, "intern", 3, time.Second, discardLogger())
	_, err := rf.FetchRecords(ctx)
	if err == nil {
		t.Fatal("expected error from context cancellation, got nil")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", mock.calls)
	}
}

func TestRetry_DelayHonorsLongerRetryAfter(t *testing.T) {
	rf := NewRetryFetcher(nil, "intern", 3, 5*time.Second, discardLogger())

	if got := rf.delayFor(errors.New("boom")); got != 5*time.Second {
		t.Errorf("plain error delay = %v, want 5s", got)
	}
	if got := rf.delayFor(&model.HTTPError{StatusCode: 429, RetryAfter: 2 * time.Second}); got != 5*time.Second {
		t.Errorf("short Retry-After delay = %v, want 5s", got)
	}
	if got := rf.delayFor(&model.HTTPError{StatusCode: 429, RetryAfter: 20 * time.Second}); got != 20*time.Second {
		t.Errorf("long Retry-After delay = %v, want 20s", got)
	}
	if got := rf.delayFor(&model.HTTPError{StatusCode: 429, RetryAfter: time.Hour}); got != maxRetryAfter {
		t.Errorf("capped Retry-After delay = %v, want %v", got, maxRetryAfter)
	}
}

func TestDelayFor_CapsLongRetryAfter(t *testing.T) {
	rf := NewRetryFetcher(&mockFetcher{}, "intern", 3, 5*time.Second, discardLogger())

	err := &model.HTTPError{StatusCode: 429, RetryAfter: 5 * time.Minute, Err: errors.New("rate limited")}
	if got := rf.delayFor(err); got != time.Minute {
		t.Errorf("delayFor = %v, want %v", got, time.Minute)
	}
}
