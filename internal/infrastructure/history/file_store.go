package history

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/doeshing/recogaize/internal/domain"
	"github.com/doeshing/recogaize/internal/pkg/filesystem"
	"github.com/doeshing/recogaize/internal/ports"
)

// FileStore appends archive records to a jsonl file.
type FileStore struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewFileStore creates a store at path (default ~/.recogaize/history/history.jsonl).
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = filepath.Join(filesystem.UserHomeDir(), ".recogaize", "history", "history.jsonl")
	}
	return &FileStore{path: path, now: time.Now}
}

// Save implements ports.HistoryStore.
func (f *FileStore) Save(record domain.HistoryRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(f.path), domain.DirectoryPermissions); err != nil {
		return err
	}
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = file.Write(data)
	return err
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

// Clear removes the history file.
func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Records loads entries newest first, optionally filtered and limited (best-effort).
func (f *FileStore) Records(limit int, search string) ([]domain.HistoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	records, err := f.readAll()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].Timestamp.After(records[j].Timestamp) })

	needle := strings.ToLower(search)
	var out []domain.HistoryRecord
	for _, rec := range records {
		if needle != "" && !matches(rec, needle) {
			continue
		}
		out = append(out, rec)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// ExportJSON copies every record, newest first, to dest as jsonl.
func (f *FileStore) ExportJSON(dest string) error {
	records, err := f.Records(0, "")
	if err != nil {
		return err
	}
	return writeJSONL(dest, records)
}

// PruneOlderThan rewrites the file without records older than days.
func (f *FileStore) PruneOlderThan(days int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	records, err := f.readAll()
	if err != nil {
		return err
	}
	cutoff := f.now().AddDate(0, 0, -days)
	kept := records[:0]
	for _, rec := range records {
		if !rec.Timestamp.Before(cutoff) {
			kept = append(kept, rec)
		}
	}
	return writeJSONL(f.path, kept)
}

func (f *FileStore) readAll() ([]domain.HistoryRecord, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	var records []domain.HistoryRecord
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		var rec domain.HistoryRecord
		if err := json.Unmarshal(line, &rec); err == nil {
			records = append(records, rec)
		}
	}
	return records, nil
}

func matches(rec domain.HistoryRecord, needle string) bool {
	return strings.Contains(strings.ToLower(rec.Caption), needle) ||
		strings.Contains(strings.ToLower(rec.FileName), needle)
}

func writeJSONL(dest string, records []domain.HistoryRecord) error {
	if err := os.MkdirAll(filepath.Dir(dest), domain.DirectoryPermissions); err != nil {
		return err
	}
	file, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer file.Close()
	w := bufio.NewWriter(file)
	for _, rec := range records {
		b, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if _, err := w.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	return w.Flush()
}

var _ ports.HistoryRepository = (*FileStore)(nil)
