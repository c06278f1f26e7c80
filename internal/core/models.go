package core

import "context"

// Roles of a conversation turn as sent by the front-end.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of the conversation between a visitor and the
// assistant. Messages are immutable; their order defines the transcript.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Fragment is one incremental piece of assistant text produced during
// streaming. A Fragment with Err set is terminal: it is the last element
// delivered before the relay channel closes.
type Fragment struct {
	Role  string
	Delta string
	Err   error
}

// ExtractedLeadFields is the fixed-schema record the structured extractor
// pulls out of a transcript. Every field may be empty. The JSON keys are the
// contract with the extraction prompt.
type ExtractedLeadFields struct {
	Nombre      string `json:"nombre"`
	Empresa     string `json:"empresa"`
	Necesidad   string `json:"necesidad"`
	Presupuesto string `json:"presupuesto"`
	Urgencia    string `json:"urgencia"`
	Tono        string `json:"tono"`
}

// inputs returns the fields as workflow payload entries.
func (f ExtractedLeadFields) inputs() map[string]any {
	return map[string]any{
		"nombre":      f.Nombre,
		"empresa":     f.Empresa,
		"necesidad":   f.Necesidad,
		"presupuesto": f.Presupuesto,
		"urgencia":    f.Urgencia,
		"tono":        f.Tono,
	}
}

// ScoringResult is the validated output of the scoring workflow.
type ScoringResult struct {
	LeadScore      float64  `json:"lead_score"`
	UseCaseSummary string   `json:"use_case_summary"`
	TalkingPoints  []string `json:"talking_points"`
}

// Assistant is the hosted-assistant capability consumed by the handlers and
// the finalizer. *LLMService is the production implementation.
type Assistant interface {
	StreamConversation(ctx context.Context, msgs []ChatMessage) (<-chan Fragment, error)
	ExtractLeadData(ctx context.Context, transcript string) (ExtractedLeadFields, error)
	SummarizeConversation(ctx context.Context, msgs []ChatMessage) (string, error)
}

// Runner invokes the external multi-agent scoring workflow. The workflow's
// internal stage sequencing (gather, qualify, register) is owned by the
// remote service, not by this backend.
type Runner interface {
	Run(ctx context.Context, inputs map[string]any) (any, error)
}
