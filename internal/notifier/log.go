package notifier

import (
	"context"
	"log/slog"

	"github.com/amishk599/feedwatch/internal/model"
)

// LevelNotice sits between INFO and WARN; reports are logged at this level so
// they stand out in CI logs without looking like problems.
const LevelNotice = slog.Level(2)

// ReplaceLevelAttr is a slog ReplaceAttr hook that prints LevelNotice as
// "NOTICE" instead of "INFO+2".
func ReplaceLevelAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelNotice {
		a.Value = slog.StringValue("NOTICE")
	}
	return a
}

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes the report as a single structured NOTICE line.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs reports via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the report title and body. Returns nil (logging does not fail).
func (n *LogNotifier) Notify(ctx context.Context, report model.Report) error {
	n.logger.Log(ctx, LevelNotice, "changes detected",
		"title", report.Title,
		"body", report.Body,
		"feeds", len(report.Feeds),
	)
	return nil
}
