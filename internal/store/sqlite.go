package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amishk599/feedwatch/internal/model"
)

// Ensure SQLiteStore implements model.SnapshotStore.
var _ model.SnapshotStore = (*SQLiteStore)(nil)

// SQLiteStore keeps the latest snapshot of each feed as one row in a SQLite
// database. Saving replaces the row; no history is retained.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures the
// snapshots table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Verify the connection is alive.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS snapshots (
		feed_id  TEXT PRIMARY KEY,
		data     TEXT NOT NULL,
		saved_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating snapshots table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Load returns the stored snapshot for the feed, or (nil, nil) if none exists.
func (s *SQLiteStore) Load(feed model.Feed) ([]model.Record, error) {
	var data string
	err := s.db.QueryRow("SELECT data FROM snapshots WHERE feed_id = ?", feed.ID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &model.ParseError{Path: "sqlite:" + feed.ID, Err: err}
	}

	records, err := decodeRecords([]byte(data))
	if err != nil {
		return nil, &model.ParseError{Path: "sqlite:" + feed.ID, Err: err}
	}
	return records, nil
}

// Save replaces the feed's stored snapshot.
func (s *SQLiteStore) Save(feed model.Feed, records []model.Record) error {
	data, err := encodeRecords(records)
	if err != nil {
		return &model.IOError{Path: "sqlite:" + feed.ID, Op: "encode", Err: err}
	}

	_, err = s.db.Exec(`INSERT INTO snapshots (feed_id, data, saved_at) VALUES (?, ?, ?)
		ON CONFLICT(feed_id) DO UPDATE SET data = excluded.data, saved_at = excluded.saved_at`,
		feed.ID, string(data), time.Now().UTC())
	if err != nil {
		return &model.IOError{Path: "sqlite:" + feed.ID, Op: "write", Err: err}
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
