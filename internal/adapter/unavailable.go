package adapter

import (
	"context"
	"errors"

	"github.com/amishk599/feedwatch/internal/model"
)

// Ensure UnavailableFetcher implements model.RecordFetcher.
var _ model.RecordFetcher = (*UnavailableFetcher)(nil)

// UnavailableFetcher stands in for a feed that cannot be fetched at all, such
// as one whose URL was never configured. Every fetch fails without a request.
type UnavailableFetcher struct {
	feedID string
	reason string
}

// NewUnavailableFetcher returns a fetcher that always fails with reason.
func NewUnavailableFetcher(feedID, reason string) *UnavailableFetcher {
	return &UnavailableFetcher{feedID: feedID, reason: reason}
}

// FetchRecords returns a *model.FetchError with zero attempts.
func (f *UnavailableFetcher) FetchRecords(context.Context) ([]model.Record, error) {
	return nil, &model.FetchError{Feed: f.feedID, Attempts: 0, Err: errors.New(f.reason)}
}
