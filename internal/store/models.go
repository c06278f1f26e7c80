package store

import "time"

// LeadRecord is the finalized lead written once per completed conversation.
// Records are write-once and never updated in place.
type LeadRecord struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"user_id"`
	SessionID           string    `json:"session_id"`
	LeadScore           float64   `json:"lead_score"`
	UseCaseSummary      string    `json:"use_case_summary"`
	TalkingPoints       []string  `json:"talking_points"`
	ConversationSummary string    `json:"conversation_summary"`
	FullConversation    string    `json:"full_conversation_text"`
	CreatedAt           time.Time `json:"timestamp"`
}
