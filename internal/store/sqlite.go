package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"leadpilot.com/lead-qualifier/internal/observability/metrics"
)

// SQLiteStore keeps lead records in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS leads (
        id TEXT PRIMARY KEY, -- UUID
        user_id TEXT NOT NULL,
        session_id TEXT NOT NULL,
        lead_score REAL NOT NULL,
        use_case_summary TEXT NOT NULL,
        talking_points TEXT, -- JSON array of strings
        conversation_summary TEXT,
        full_conversation TEXT,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// Store inserts one lead record and returns its identifier.
func (s *SQLiteStore) Store(ctx context.Context, rec *LeadRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	talkingPoints, err := json.Marshal(rec.TalkingPoints)
	if err != nil {
		return "", fmt.Errorf("failed to marshal talking points: %w", err)
	}

	stmt, err := s.db.PrepareContext(ctx, `
        INSERT INTO leads (id, user_id, session_id, lead_score, use_case_summary, talking_points, conversation_summary, full_conversation, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare lead insert: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, rec.ID, rec.UserID, rec.SessionID, rec.LeadScore, rec.UseCaseSummary,
		string(talkingPoints), rec.ConversationSummary, rec.FullConversation, rec.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("failed to execute lead insert: %w", err)
	}
	metrics.DefaultMetrics.LeadsStored.WithLabelValues("sqlite").Inc()
	return rec.ID, nil
}

// GetLeadByID returns the lead with the given id, or nil when absent.
func (s *SQLiteStore) GetLeadByID(ctx context.Context, id string) (*LeadRecord, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, user_id, session_id, lead_score, use_case_summary, talking_points, conversation_summary, full_conversation, created_at
        FROM leads WHERE id = ?`, id)

	rec, err := scanLead(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return rec, nil
}

// ListLeads returns recent leads in reverse creation order.
func (s *SQLiteStore) ListLeads(ctx context.Context, limit, offset int) ([]LeadRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, user_id, session_id, lead_score, use_case_summary, talking_points, conversation_summary, full_conversation, created_at
        FROM leads ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer rows.Close()

	var leads []LeadRecord
	for rows.Next() {
		rec, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead row: %w", err)
		}
		leads = append(leads, *rec)
	}
	return leads, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*LeadRecord, error) {
	var rec LeadRecord
	var talkingPoints sql.NullString
	err := row.Scan(&rec.ID, &rec.UserID, &rec.SessionID, &rec.LeadScore, &rec.UseCaseSummary,
		&talkingPoints, &rec.ConversationSummary, &rec.FullConversation, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	if talkingPoints.Valid && talkingPoints.String != "" {
		if err := json.Unmarshal([]byte(talkingPoints.String), &rec.TalkingPoints); err != nil {
			rec.TalkingPoints = nil
		}
	}
	return &rec, nil
}
