package notifier

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/amishk599/feedwatch/internal/model"
)

func TestBuildReport_GroupsByFeed(t *testing.T) {
	report, ok := BuildReport([]model.FeedChanges{
		{
			Feed: model.Feed{ID: "intern", Label: "Intern"},
			Changes: []model.Change{
				{Record: model.Record{Subject: "A", UpdateDate: "2024-01-02"}},
				{Record: model.Record{Subject: "B", UpdateDate: "2024-01-01"}},
			},
		},
		{Feed: model.Feed{ID: "empty"}},
		{
			Feed:    model.Feed{ID: "fulltime"},
			Changes: []model.Change{{Record: model.Record{Subject: "C", UpdateDate: "2024-02-01"}}},
		},
	})
	if !ok {
		t.Fatal("expected a report")
	}

	want := "### Intern\n- A (2024-01-02)\n- B (2024-01-01)\n\n### fulltime\n- C (2024-02-01)"
	if report.Body != want {
		t.Errorf("Body = %q, want %q", report.Body, want)
	}
	if report.Title != ReportTitle {
		t.Errorf("Title = %q", report.Title)
	}
	if len(report.Feeds) != 2 {
		t.Errorf("Feeds = %d, want 2 (empty feed dropped)", len(report.Feeds))
	}
}

func TestBuildReport_NoChanges(t *testing.T) {
	if _, ok := BuildReport(nil); ok {
		t.Error("expected no report for nil input")
	}
	if _, ok := BuildReport([]model.FeedChanges{{Feed: model.Feed{ID: "intern"}}}); ok {
		t.Error("expected no report when no feed has changes")
	}
}

func TestSummaryNotifier_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.md")
	if err := os.WriteFile(path, []byte("existing\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	n := NewSummaryNotifier(path)
	report := model.Report{Title: "T", Body: "### Intern\n- A (1)"}
	if err := n.Notify(context.Background(), report); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "existing\n## T\n### Intern\n- A (1)\n"
	if string(data) != want {
		t.Errorf("summary = %q, want %q", data, want)
	}
}

func TestSummaryNotifier_UnwritablePath(t *testing.T) {
	n := NewSummaryNotifier(filepath.Join(t.TempDir(), "missing", "summary.md"))
	if err := n.Notify(context.Background(), model.Report{Title: "T"}); err == nil {
		t.Error("expected error for missing directory")
	}
}

type recordingNotifier struct {
	reports []model.Report
	err     error
}

func (r *recordingNotifier) Notify(_ context.Context, report model.Report) error {
	r.reports = append(r.reports, report)
	return r.err
}

func TestMultiNotifier_BestEffort(t *testing.T) {
	failing := &recordingNotifier{err: errors.New("sink down")}
	ok := &recordingNotifier{}

	m := NewMultiNotifier(discardLogger(), failing, ok)
	if err := m.Notify(context.Background(), sampleReport()); err != nil {
		t.Fatalf("Notify = %v, want nil", err)
	}
	if len(failing.reports) != 1 || len(ok.reports) != 1 {
		t.Errorf("each sink should be called once, got %d and %d", len(failing.reports), len(ok.reports))
	}
}

func TestSendTestMessage(t *testing.T) {
	rec := &recordingNotifier{}
	if err := SendTestMessage(context.Background(), rec); err != nil {
		t.Fatalf("SendTestMessage: %v", err)
	}
	if len(rec.reports) != 1 || rec.reports[0].Body == "" {
		t.Errorf("unexpected reports: %+v", rec.reports)
	}
}
