package notifier

import (
	"context"
	"strings"

	"github.com/amishk599/feedwatch/internal/model"
)

// ReportTitle heads every consolidated report.
const ReportTitle = "New job postings detected"

// BuildReport renders one report covering every feed that has changes, in
// the order given. It returns false when no feed has anything to report.
func BuildReport(feeds []model.FeedChanges) (model.Report, bool) {
	var kept []model.FeedChanges
	var groups []string
	for _, fc := range feeds {
		if len(fc.Changes) == 0 {
			continue
		}
		kept = append(kept, fc)

		var b strings.Builder
		b.WriteString("### ")
		b.WriteString(fc.Feed.Title())
		for _, c := range fc.Changes {
			b.WriteString("\n- ")
			b.WriteString(c.String())
		}
		groups = append(groups, b.String())
	}

	if len(kept) == 0 {
		return model.Report{}, false
	}
	return model.Report{
		Title: ReportTitle,
		Body:  strings.Join(groups, "\n\n"),
		Feeds: kept,
	}, true
}

// SendTestMessage sends a sample report to verify the configured sinks work.
func SendTestMessage(ctx context.Context, n model.Notifier) error {
	report, _ := BuildReport([]model.FeedChanges{{
		Feed: model.Feed{ID: "test", Label: "feedwatch test"},
		Changes: []model.Change{
			{Record: model.Record{Subject: "Test Notification - Integration Verified", UpdateDate: "now"}},
		},
	}})
	return n.Notify(ctx, report)
}
