package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/amishk599/feedwatch/internal/model"
)

// maxBodyBytes bounds how much of a feed response is read.
const maxBodyBytes = 32 << 20

// FeedAdapter fetches a JSON array of postings from a single URL.
type FeedAdapter struct {
	feedID  string
	url     string
	client  *http.Client
	maxBody int64
}

// NewFeedAdapter creates an adapter for one feed. The client's timeout bounds
// each request.
func NewFeedAdapter(feed model.Feed, client *http.Client) *FeedAdapter {
	return &FeedAdapter{
		feedID:  feed.ID,
		url:     feed.URL,
		client:  client,
		maxBody: maxBodyBytes,
	}
}

// FetchRecords performs one GET and decodes the body as a list of records.
func (a *FeedAdapter) FetchRecords(ctx context.Context) ([]model.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.url, nil)
	if err != nil {
		return nil, fmt.Errorf("feed fetch for %s: %w", a.feedID, err)
	}
	setBrowserHeaders(req)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed fetch for %s: %w", a.feedID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused by the next attempt.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
			Err:        fmt.Errorf("feed fetch for %s: unexpected status %d", a.feedID, resp.StatusCode),
		}
	}

	dec := json.NewDecoder(io.LimitReader(resp.Body, a.maxBody))
	var records []model.Record
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("feed fetch for %s: decoding body: %w", a.feedID, err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("feed fetch for %s: unexpected data after JSON array", a.feedID)
	}
	if records == nil {
		records = []model.Record{}
	}
	return records, nil
}
