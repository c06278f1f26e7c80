package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func sampleRecord(id, userID string) *LeadRecord {
	return &LeadRecord{
		ID:                   id,
		UserID:               userID,
		SessionID:            "s1",
		LeadScore:            7.5,
		UseCaseSummary:       "automation",
		TalkingPoints:        []string{"roi", "timeline"},
		ConversationSummary:  "short summary",
		FullConversation:     "USER: hola\nASSISTANT: buenas",
		CreatedAt:            time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func readLog(t *testing.T, path string) []LeadRecord {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read lead log: %v", err)
	}
	var records []LeadRecord
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("lead log is not a JSON array: %v", err)
	}
	return records
}

func TestFileStore_AppendsInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.json")
	fs := NewFileStore(path)

	if _, err := fs.Store(context.Background(), sampleRecord("a", "u1")); err != nil {
		t.Fatalf("first store failed: %v", err)
	}
	if _, err := fs.Store(context.Background(), sampleRecord("b", "u2")); err != nil {
		t.Fatalf("second store failed: %v", err)
	}

	records := readLog(t, path)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].ID != "a" || records[1].ID != "b" {
		t.Errorf("records out of order: %q then %q", records[0].ID, records[1].ID)
	}
	if records[1].UserID != "u2" {
		t.Errorf("second record user = %q, want u2", records[1].UserID)
	}
}

func TestFileStore_CorruptFileTreatedAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	fs := NewFileStore(path)

	if _, err := fs.Store(context.Background(), sampleRecord("a", "u1")); err != nil {
		t.Fatalf("store over corrupt file failed: %v", err)
	}

	records := readLog(t, path)
	if len(records) != 1 || records[0].ID != "a" {
		t.Errorf("got %v, want exactly the new record", records)
	}
}

func TestFileStore_AssignsMissingID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "leads.json")
	fs := NewFileStore(path)

	rec := sampleRecord("", "u1")
	id, err := fs.Store(context.Background(), rec)
	if err != nil {
		t.Fatalf("store failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected a generated record id")
	}
	if rec.ID != id {
		t.Errorf("record id %q does not match returned id %q", rec.ID, id)
	}

	records := readLog(t, path)
	if len(records) != 1 || records[0].ID != id {
		t.Errorf("persisted records = %v", records)
	}
}
