package core

import "strings"

// LabelSet picks the role labels used when rendering a transcript. Persisted
// records use the uppercase English set; the summarization prompt uses the
// Spanish set the assistant was tuned on.
type LabelSet struct {
	User      string
	Assistant string
}

var (
	LabelsEnglish = LabelSet{User: "USER", Assistant: "ASSISTANT"}
	LabelsSpanish = LabelSet{User: "Usuario", Assistant: "Asistente"}
)

// AssembleTranscript renders the conversation as one line per turn, in input
// order, each prefixed with its role label. Deterministic, no side effects.
func AssembleTranscript(msgs []ChatMessage, labels LabelSet) string {
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		label := labels.Assistant
		if m.Role == RoleUser {
			label = labels.User
		}
		lines = append(lines, label+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}
