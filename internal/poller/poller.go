package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/amishk599/feedwatch/internal/diff"
	"github.com/amishk599/feedwatch/internal/model"
)

// FeedPoller owns the full pipeline for a single feed:
// fetch → load snapshot → diff → filter → save.
type FeedPoller struct {
	Feed    model.Feed
	fetcher model.RecordFetcher
	store   model.SnapshotStore
	filter  model.ChangeFilter
	logger  *slog.Logger
}

// NewFeedPoller creates a poller wired with all its dependencies. filter may
// be nil, in which case every change is reported.
func NewFeedPoller(
	feed model.Feed,
	fetcher model.RecordFetcher,
	store model.SnapshotStore,
	filter model.ChangeFilter,
	logger *slog.Logger,
) *FeedPoller {
	return &FeedPoller{
		Feed:    feed,
		fetcher: fetcher,
		store:   store,
		filter:  filter,
		logger:  logger,
	}
}

// Poll runs one cycle for the feed and returns the changes worth reporting.
//
// A fetch error aborts the cycle before anything is read or written. A save
// error is returned together with the changes, which are still valid: the
// caller should report them and log the error.
func (p *FeedPoller) Poll(ctx context.Context) ([]model.Change, error) {
	current, err := p.fetcher.FetchRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("polling %s: %w", p.Feed.ID, err)
	}

	previous, err := p.store.Load(p.Feed)
	if err != nil {
		var parseErr *model.ParseError
		if !errors.As(err, &parseErr) {
			return nil, fmt.Errorf("polling %s: loading snapshot: %w", p.Feed.ID, err)
		}
		p.logger.Warn("snapshot unreadable, treating every record as new",
			"feed", p.Feed.ID,
			"error", err,
		)
		previous = nil
	}
	firstRun := previous == nil

	p.warnDuplicates("previous", previous)
	p.warnDuplicates("current", current)

	changes := diff.Diff(current, previous)
	detected := len(changes)
	changes = p.applyFilter(changes)

	if removed := diff.Removed(current, previous); len(removed) > 0 {
		p.logger.Debug("records removed since last snapshot (not reported)",
			"feed", p.Feed.ID,
			"removed", len(removed),
		)
	}

	if err := p.store.Save(p.Feed, current); err != nil {
		return changes, fmt.Errorf("polling %s: saving snapshot: %w", p.Feed.ID, err)
	}

	p.logger.Info("polled feed",
		"feed", p.Feed.ID,
		"fetched", len(current),
		"first_run", firstRun,
		"detected", detected,
		"reported", len(changes),
	)

	return changes, nil
}

func (p *FeedPoller) applyFilter(changes []model.Change) []model.Change {
	if p.filter == nil {
		return changes
	}
	var kept []model.Change
	for _, c := range changes {
		if p.filter.Match(c) {
			kept = append(kept, c)
		}
	}
	return kept
}

// warnDuplicates logs subjects that appear more than once. Matching stays
// first-match, so the log is the only signal that results may be ambiguous.
func (p *FeedPoller) warnDuplicates(which string, records []model.Record) {
	dups := diff.DuplicateSubjects(records)
	if len(dups) == 0 {
		return
	}
	p.logger.Warn("duplicate subjects in feed document",
		"feed", p.Feed.ID,
		"document", which,
		"subjects", dups,
	)
}
