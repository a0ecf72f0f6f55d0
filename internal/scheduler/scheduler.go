package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/amishk599/feedwatch/internal/model"
	"github.com/amishk599/feedwatch/internal/notifier"
	"github.com/amishk599/feedwatch/internal/poller"
)

// RunResult summarises one pass over all feeds.
type RunResult struct {
	Changes   []model.FeedChanges // feeds with at least one change, in feed order
	Failed    []string            // ids of feeds that could not be fetched or saved
	Succeeded int                 // feeds fetched and saved
	Notified  bool
}

// AllFailed reports whether no feed completed. False when there were no feeds.
func (r RunResult) AllFailed() bool {
	return len(r.Failed) > 0 && r.Succeeded == 0
}

// Scheduler runs every feed poller in order and sends one consolidated report.
type Scheduler struct {
	pollers  []*poller.FeedPoller
	notifier model.Notifier
	interval time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a scheduler over the given pollers. interval is only
// used by Run.
func NewScheduler(pollers []*poller.FeedPoller, n model.Notifier, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		pollers:  pollers,
		notifier: n,
		interval: interval,
		logger:   logger,
	}
}

// RunOnce polls each feed sequentially. A feed's failure is logged and does not
// stop the others. If any feed has changes the notifier is called once after
// all feeds are done.
func (s *Scheduler) RunOnce(ctx context.Context) RunResult {
	var res RunResult

	for _, p := range s.pollers {
		if ctx.Err() != nil {
			s.logger.Warn("run interrupted", "error", ctx.Err())
			break
		}

		changes, err := p.Poll(ctx)
		if err != nil {
			s.logger.Error("feed failed", "feed", p.Feed.ID, "error", err)
			res.Failed = append(res.Failed, p.Feed.ID)
		} else {
			res.Succeeded++
		}

		if len(changes) > 0 {
			res.Changes = append(res.Changes, model.FeedChanges{Feed: p.Feed, Changes: changes})
		}
	}

	report, ok := notifier.BuildReport(res.Changes)
	if !ok {
		s.logger.Info("no changes detected", "feeds", len(s.pollers), "failed", len(res.Failed))
		return res
	}

	if err := s.notifier.Notify(ctx, report); err != nil {
		s.logger.Error("notification failed", "error", err)
	} else {
		res.Notified = true
	}
	return res
}

// Run executes one immediate pass, then one per interval. It returns nil when
// ctx is cancelled (graceful shutdown).
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler",
		"interval", s.interval.String(),
		"feeds", len(s.pollers),
	)

	s.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-time.After(s.interval):
			s.RunOnce(ctx)
		}
	}
}
