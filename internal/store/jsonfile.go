package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"leadpilot.com/lead-qualifier/internal/observability/metrics"
)

// FileStore appends finalized lead records to a single local JSON array
// file, rewriting the file in full on every store. There is no write
// locking: a single low-concurrency process is assumed.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file location.
func (s *FileStore) Path() string { return s.path }

// Store appends the record and returns its identifier. A missing or corrupt
// backing file is treated as an empty collection, never as a fatal error.
func (s *FileStore) Store(_ context.Context, rec *LeadRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	records := s.load()
	records = append(records, *rec)

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create lead log directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode lead log: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write lead log: %w", err)
	}
	metrics.DefaultMetrics.LeadsStored.WithLabelValues("file").Inc()
	return rec.ID, nil
}

func (s *FileStore) load() []LeadRecord {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var records []LeadRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil
	}
	return records
}
