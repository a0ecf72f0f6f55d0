package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/amishk599/feedwatch/internal/model"
)

// Ensure FileStore implements model.SnapshotStore.
var _ model.SnapshotStore = (*FileStore)(nil)

// FileStore keeps one pretty-printed JSON array per feed on disk.
type FileStore struct {
	baseDir string
	logger  *slog.Logger

	// rename is swapped in tests to exercise the direct-write fallback.
	rename func(oldpath, newpath string) error
}

// NewFileStore returns a store that resolves relative snapshot paths against
// baseDir.
func NewFileStore(baseDir string, logger *slog.Logger) *FileStore {
	return &FileStore{
		baseDir: baseDir,
		logger:  logger,
		rename:  os.Rename,
	}
}

// Path returns the file a feed's snapshot is stored at.
func (s *FileStore) Path(feed model.Feed) string {
	if filepath.IsAbs(feed.SnapshotPath) {
		return feed.SnapshotPath
	}
	return filepath.Join(s.baseDir, feed.SnapshotPath)
}

// Load reads the feed's snapshot. A missing file yields (nil, nil); a file
// that cannot be read or decoded yields a *model.ParseError.
func (s *FileStore) Load(feed model.Feed) ([]model.Record, error) {
	path := s.Path(feed)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &model.ParseError{Path: path, Err: err}
	}

	records, err := decodeRecords(data)
	if err != nil {
		return nil, &model.ParseError{Path: path, Err: err}
	}
	return records, nil
}

// Save replaces the feed's snapshot. The data goes to a temp file in the same
// directory which is then renamed over the target, so readers never see a
// partial file. If that fails a direct write is attempted.
func (s *FileStore) Save(feed model.Feed, records []model.Record) error {
	path := s.Path(feed)
	data, err := encodeRecords(records)
	if err != nil {
		return &model.IOError{Path: path, Op: "encode", Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &model.IOError{Path: path, Op: "write", Err: err}
	}

	atomicErr := s.writeAtomic(path, data)
	if atomicErr == nil {
		return nil
	}

	s.logger.Warn("atomic snapshot write failed, writing in place",
		"feed", feed.ID,
		"path", path,
		"error", atomicErr,
	)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &model.IOError{Path: path, Op: "write", Err: errors.Join(atomicErr, err)}
	}
	return nil
}

func (s *FileStore) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("closing temp file: %w", err)
	}
	// CreateTemp uses 0600; snapshots are meant to be committed and read by others.
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := s.rename(tmpPath, path); err != nil {
		cleanup()
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// encodeRecords renders records as a 2-space indented JSON array with a
// trailing newline. A nil slice is written as [].
func encodeRecords(records []model.Record) ([]byte, error) {
	if records == nil {
		records = []model.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// decodeRecords parses a JSON array of records. Blank input is an empty
// snapshot rather than an error.
func decodeRecords(data []byte) ([]model.Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []model.Record{}, nil
	}
	var records []model.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []model.Record{}
	}
	return records, nil
}
