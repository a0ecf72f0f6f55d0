package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amishk599/feedwatch/internal/model"
)

// Ensure MultiNotifier implements model.Notifier.
var _ model.Notifier = (*MultiNotifier)(nil)

// MultiNotifier fans a report out to several sinks. Delivery is best effort:
// a failing sink is logged and the others still run.
type MultiNotifier struct {
	sinks  []model.Notifier
	logger *slog.Logger
}

// NewMultiNotifier returns a notifier that delivers to every sink in order.
func NewMultiNotifier(logger *slog.Logger, sinks ...model.Notifier) *MultiNotifier {
	return &MultiNotifier{sinks: sinks, logger: logger}
}

// Notify always returns nil; sink failures only show up in the log.
func (m *MultiNotifier) Notify(ctx context.Context, report model.Report) error {
	for _, s := range m.sinks {
		if err := s.Notify(ctx, report); err != nil {
			m.logger.Error("notification sink failed",
				"sink", fmt.Sprintf("%T", s),
				"error", err,
			)
		}
	}
	return nil
}
