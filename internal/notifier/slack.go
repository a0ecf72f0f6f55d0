package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/feedwatch/internal/model"
)

// Slack rejects section text longer than 3000 characters.
const slackSectionLimit = 3000

// Ensure SlackNotifier implements model.Notifier.
var _ model.Notifier = (*SlackNotifier)(nil)

// SlackNotifier posts the consolidated report to a Slack channel via an
// Incoming Webhook.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSlackNotifier returns a notifier that posts reports to Slack.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Notify sends the report as one Block Kit message. A 429 is retried once
// after the Retry-After delay.
func (s *SlackNotifier) Notify(ctx context.Context, report model.Report) error {
	body, err := json.Marshal(buildPayload(report))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	status, retryAfter, err := s.post(ctx, body)
	if err != nil {
		return err
	}

	if status == http.StatusTooManyRequests {
		s.logger.Warn("slack rate limited, retrying", "retry_after", retryAfter)
		select {
		case <-ctx.Done():
			return fmt.Errorf("slack retry cancelled: %w", ctx.Err())
		case <-time.After(retryAfter):
		}

		status, _, err = s.post(ctx, body)
		if err != nil {
			return fmt.Errorf("retry: %w", err)
		}
		if status != http.StatusOK {
			return fmt.Errorf("slack returned %d on retry", status)
		}
		s.logger.Info("slack message sent", "feeds", len(report.Feeds), "retried", true)
		return nil
	}

	if status != http.StatusOK {
		return fmt.Errorf("slack returned %d", status)
	}
	s.logger.Info("slack message sent", "feeds", len(report.Feeds))
	return nil
}

func (s *SlackNotifier) post(ctx context.Context, body []byte) (int, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return 0, 0, fmt.Errorf("build slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
	if secs <= 0 {
		secs = 1
	}
	return resp.StatusCode, time.Duration(secs) * time.Second, nil
}

// Block Kit payload types.

type slackPayload struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type string     `json:"type"`
	Text *slackText `json:"text,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func buildPayload(report model.Report) slackPayload {
	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: report.Title},
		},
	}

	for _, fc := range report.Feeds {
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: feedSection(fc)},
		})
	}
	blocks = append(blocks, slackBlock{Type: "divider"})

	// Text is the fallback shown in push notifications.
	return slackPayload{Text: report.Title, Blocks: blocks}
}

// feedSection renders one feed as a bold label followed by bullets, cut short
// with an "...and N more" line if it would exceed Slack's section limit.
func feedSection(fc model.FeedChanges) string {
	var b strings.Builder
	b.WriteString("*" + escapeMrkdwn(fc.Feed.Title()) + "*")

	for i, c := range fc.Changes {
		line := "\n• " + escapeMrkdwn(c.String())
		more := fmt.Sprintf("\n…and %d more", len(fc.Changes)-i)
		if b.Len()+len(line)+len(more) > slackSectionLimit {
			b.WriteString(more)
			break
		}
		b.WriteString(line)
	}
	return b.String()
}

var mrkdwnEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// escapeMrkdwn escapes the three characters Slack treats as control
// sequences in mrkdwn text.
func escapeMrkdwn(s string) string {
	return mrkdwnEscaper.Replace(s)
}
