package history

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/recogaize/internal/domain"
	"github.com/doeshing/recogaize/internal/pkg/filesystem"
	"github.com/doeshing/recogaize/internal/ports"
)

// timestampLayout is fixed width so lexical order matches time order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore persists the caption archive in a SQLite database.
// When the database cannot be opened it degrades to a jsonl FileStore
// next to the intended database path.
type SQLiteStore struct {
	db       *sql.DB
	path     string
	fallback *FileStore
	mu       sync.Mutex
	now      func() time.Time
}

// NewSQLiteStore creates (or opens) path (default ~/.recogaize/history/history.db).
func NewSQLiteStore(path string) *SQLiteStore {
	if path == "" {
		path = filepath.Join(filesystem.UserHomeDir(), ".recogaize", "history", "history.db")
	}
	_ = os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions)
	fallback := NewFileStore(strings.TrimSuffix(path, filepath.Ext(path)) + ".jsonl")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return &SQLiteStore{path: path, fallback: fallback, now: time.Now}
	}
	store := &SQLiteStore{db: db, path: path, fallback: fallback, now: time.Now}
	if err := store.init(); err != nil {
		_ = db.Close()
		return &SQLiteStore{path: path, fallback: fallback, now: time.Now}
	}
	return store
}

func (s *SQLiteStore) init() error {
	if s.db == nil {
		return os.ErrInvalid
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS captions (
		id TEXT PRIMARY KEY,
		timestamp TEXT,
		file_name TEXT,
		caption TEXT,
		success INTEGER,
		error TEXT,
		duration_ms INTEGER,
		format TEXT,
		width INTEGER,
		height INTEGER
	);`)
	return err
}

// Degraded reports whether the store fell back to jsonl.
func (s *SQLiteStore) Degraded() bool {
	return s.db == nil
}

// Save inserts a new record.
func (s *SQLiteStore) Save(record domain.HistoryRecord) error {
	if s.db == nil {
		return s.fallback.Save(record)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`INSERT INTO captions
		(id, timestamp, file_name, caption, success, error, duration_ms, format, width, height)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Timestamp.UTC().Format(timestampLayout),
		record.FileName,
		record.Caption,
		boolToInt(record.Success),
		record.Error,
		record.DurationMS,
		record.Format,
		record.Width,
		record.Height,
	)
	return err
}

// Records returns archive entries newest first (limit/search optional).
func (s *SQLiteStore) Records(limit int, search string) ([]domain.HistoryRecord, error) {
	if s.db == nil {
		return s.fallback.Records(limit, search)
	}
	builder := strings.Builder{}
	builder.WriteString("SELECT id, timestamp, file_name, caption, success, error, duration_ms, format, width, height FROM captions")
	var args []interface{}
	if search != "" {
		builder.WriteString(" WHERE caption LIKE ? OR file_name LIKE ?")
		args = append(args, "%"+search+"%", "%"+search+"%")
	}
	builder.WriteString(" ORDER BY timestamp DESC")
	if limit > 0 {
		builder.WriteString(" LIMIT ?")
		args = append(args, limit)
	}
	rows, err := s.db.Query(builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []domain.HistoryRecord
	for rows.Next() {
		var rec domain.HistoryRecord
		var ts string
		var success int
		if err := rows.Scan(&rec.ID, &ts, &rec.FileName, &rec.Caption, &success, &rec.Error, &rec.DurationMS, &rec.Format, &rec.Width, &rec.Height); err != nil {
			return nil, err
		}
		if t, err := time.Parse(timestampLayout, ts); err == nil {
			rec.Timestamp = t
		}
		rec.Success = success == 1
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Clear deletes all archive entries.
func (s *SQLiteStore) Clear() error {
	if s.db == nil {
		return s.fallback.Clear()
	}
	_, err := s.db.Exec("DELETE FROM captions")
	return err
}

// PruneOlderThan deletes entries older than days.
func (s *SQLiteStore) PruneOlderThan(days int) error {
	if s.db == nil {
		return s.fallback.PruneOlderThan(days)
	}
	cutoff := s.now().AddDate(0, 0, -days).UTC().Format(timestampLayout)
	_, err := s.db.Exec("DELETE FROM captions WHERE timestamp < ?", cutoff)
	return err
}

// ExportJSON writes the caption table to a jsonl file.
func (s *SQLiteStore) ExportJSON(dest string) error {
	records, err := s.Records(0, "")
	if err != nil {
		return err
	}
	return writeJSONL(dest, records)
}

// Path returns the sqlite database path, or the fallback file when degraded.
func (s *SQLiteStore) Path() string {
	if s.db == nil {
		return s.fallback.Path()
	}
	return s.path
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ ports.HistoryRepository = (*SQLiteStore)(nil)
