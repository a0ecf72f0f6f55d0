package store

import "github.com/amishk599/feedwatch/internal/model"

// Ensure NopStore implements model.SnapshotStore.
var _ model.SnapshotStore = (*NopStore)(nil)

// NopStore is used in dry-run mode. It reads snapshots through the wrapped
// store, so diffs are real, but never writes anything.
type NopStore struct {
	reader model.SnapshotStore
}

// NewNopStore wraps reader. A nil reader makes every feed look like a first run.
func NewNopStore(reader model.SnapshotStore) *NopStore { return &NopStore{reader: reader} }

func (s *NopStore) Load(feed model.Feed) ([]model.Record, error) {
	if s.reader == nil {
		return nil, nil
	}
	return s.reader.Load(feed)
}

func (s *NopStore) Save(model.Feed, []model.Record) error { return nil }
