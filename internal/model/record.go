package model

import (
	"context"
	"encoding/json"
	"fmt"
)

// Record is one job posting from a feed. Subject is the natural key.
// A record decoded from JSON keeps the original object so that a snapshot
// persists every field the feed returned, not just the two we compare.
type Record struct {
	Subject    string
	UpdateDate string

	raw json.RawMessage
}

type recordFields struct {
	Subject    string `json:"subject"`
	UpdateDate string `json:"updateDate"`
}

// UnmarshalJSON decodes subject and updateDate and retains the raw object.
func (r *Record) UnmarshalJSON(data []byte) error {
	var f recordFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	r.Subject = f.Subject
	r.UpdateDate = f.UpdateDate
	r.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON re-emits the original object when there is one.
func (r Record) MarshalJSON() ([]byte, error) {
	if len(r.raw) > 0 {
		return r.raw, nil
	}
	return json.Marshal(recordFields{Subject: r.Subject, UpdateDate: r.UpdateDate})
}

// Feed identifies one configured source and where its snapshot lives.
type Feed struct {
	ID           string
	Label        string
	URL          string
	SnapshotPath string
}

// Title is the heading used for the feed in reports.
func (f Feed) Title() string {
	if f.Label != "" {
		return f.Label
	}
	return f.ID
}

// ChangeKind says why a record was reported.
type ChangeKind int

const (
	ChangeNew ChangeKind = iota
	ChangeUpdated
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeNew:
		return "new"
	case ChangeUpdated:
		return "updated"
	default:
		return fmt.Sprintf("ChangeKind(%d)", int(k))
	}
}

// Change is one record that is new or whose updateDate moved.
type Change struct {
	Record Record
	Kind   ChangeKind
}

// String renders the change as "subject (updateDate)".
func (c Change) String() string {
	return fmt.Sprintf("%s (%s)", c.Record.Subject, c.Record.UpdateDate)
}

// FeedChanges groups the changes detected for one feed during a run.
type FeedChanges struct {
	Feed    Feed
	Changes []Change
}

// Report is the consolidated notification for one run.
type Report struct {
	Title string
	Body  string
	Feeds []FeedChanges
}

// RecordFetcher fetches the current document of a feed.
type RecordFetcher interface {
	FetchRecords(ctx context.Context) ([]Record, error)
}

// SnapshotStore persists the last observed document per feed.
// Load returns a nil slice and nil error when no snapshot exists yet.
type SnapshotStore interface {
	Load(feed Feed) ([]Record, error)
	Save(feed Feed, records []Record) error
}

// Notifier delivers a consolidated report.
type Notifier interface {
	Notify(ctx context.Context, report Report) error
}

// ChangeFilter decides whether a detected change is worth reporting.
type ChangeFilter interface {
	Match(change Change) bool
}
