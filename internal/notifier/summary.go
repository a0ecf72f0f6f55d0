package notifier

import (
	"context"
	"fmt"
	"os"

	"github.com/amishk599/feedwatch/internal/model"
)

// Ensure SummaryNotifier implements model.Notifier.
var _ model.Notifier = (*SummaryNotifier)(nil)

// SummaryNotifier appends reports to a plain-text summary file, such as the
// one GitHub Actions exposes through GITHUB_STEP_SUMMARY.
type SummaryNotifier struct {
	path string
}

// NewSummaryNotifier returns a notifier appending to path.
func NewSummaryNotifier(path string) *SummaryNotifier {
	return &SummaryNotifier{path: path}
}

// Notify appends "## <title>\n<body>\n" to the summary file.
func (n *SummaryNotifier) Notify(_ context.Context, report model.Report) error {
	f, err := os.OpenFile(n.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open summary %s: %w", n.path, err)
	}

	if _, err := fmt.Fprintf(f, "## %s\n%s\n", report.Title, report.Body); err != nil {
		f.Close()
		return fmt.Errorf("append summary %s: %w", n.path, err)
	}
	return f.Close()
}
