package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"leadpilot.com/lead-qualifier/internal/config"
	"leadpilot.com/lead-qualifier/internal/observability/metrics"
)

const airtableBaseURL = "https://api.airtable.com/v0"

// RequestError is a failed remote store call, carrying the remote status
// code and response body.
type RequestError struct {
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("airtable API error %d: %s", e.StatusCode, e.Body)
}

// AirtableStore writes lead records to a remote Airtable table, one
// create-record call per lead.
type AirtableStore struct {
	baseURL    string
	apiKey     string
	baseID     string
	table      string
	httpClient *http.Client
}

func NewAirtableStore(cfg *config.Config) *AirtableStore {
	return &AirtableStore{
		baseURL:    airtableBaseURL,
		apiKey:     cfg.AirtableAPIKey,
		baseID:     cfg.AirtableBaseID,
		table:      cfg.AirtableTableName,
		httpClient: &http.Client{Timeout: cfg.CallTimeout},
	}
}

// Store creates one record and returns its remote identifier.
func (s *AirtableStore) Store(ctx context.Context, rec *LeadRecord) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/%s", s.baseURL, s.baseID, url.PathEscape(s.table))
	body, err := json.Marshal(map[string]any{"fields": buildLeadFields(rec)})
	if err != nil {
		return "", fmt.Errorf("failed to encode lead fields: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build airtable request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("airtable request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read airtable response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", &RequestError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &created); err != nil {
		return "", fmt.Errorf("failed to decode airtable response: %w", err)
	}
	metrics.DefaultMetrics.LeadsStored.WithLabelValues("airtable").Inc()
	return created.ID, nil
}

// buildLeadFields maps a LeadRecord to the table's fixed column names.
func buildLeadFields(rec *LeadRecord) map[string]any {
	return map[string]any{
		"User ID":              rec.UserID,
		"Session ID":           rec.SessionID,
		"Lead Score":           rec.LeadScore,
		"Use Case Summary":     rec.UseCaseSummary,
		"Talking Points":       rec.TalkingPoints,
		"Conversation Summary": rec.ConversationSummary,
		"Full Conversation":    rec.FullConversation,
	}
}
