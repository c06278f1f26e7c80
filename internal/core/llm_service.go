package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"leadpilot.com/lead-qualifier/internal/config"
	"leadpilot.com/lead-qualifier/internal/observability/logging"
)

const (
	chatTemperature    = 0.7
	extractTemperature = 0.0
	extractMaxTokens   = 1000
	summaryTemperature = 0.2
	summaryMaxTokens   = 300

	summarySystemInstruction = "Eres un experto resumiendo conversaciones donde es importante captar los insights clave " +
		"sobre el lead (motivaciones, necesidades, objeciones, datos de contacto, etc.)."

	extractionUserPrompt = `Extrae los siguientes datos del lead basándote en esta conversación. Devuelve únicamente un JSON:

- Nombre del lead (si se menciona; sino "" )
- Empresa (si se menciona; sino "" )
- Necesidad expresada por el lead
- Presupuesto estimado (por ejemplo: "5000€", o vacío "")
- Urgencia ("alta", "media", "baja", o "")
- Tono de la conversación ("positivo", "dudoso", "negativo", o "")

Conversación:
"""
%s
"""

JSON con claves: nombre, empresa, necesidad, presupuesto, urgencia, tono.`

	summaryUserPrompt = "Por favor, resume esta conversación enfocándote en los insights clave sobre el lead " +
		"(motivaciones, necesidades, objeciones, datos de contacto, etc.).\n\n%s\n\nResumen:"
)

// LLMService talks to the hosted assistant: streaming chat relay, structured
// lead extraction and conversation summarization.
type LLMService struct {
	client *genai.Client
	cfg    *config.Config
	log    zerolog.Logger
}

func NewLLMService(ctx context.Context, cfg *config.Config) (*LLMService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &LLMService{
		client: client,
		cfg:    cfg,
		log:    logging.WithComponent("llm"),
	}, nil
}

func (s *LLMService) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			s.log.Warn().Err(err).Msg("error closing GenAI client")
		}
	}
}

// StreamConversation opens a fresh assistant session, replays every prior
// turn in order and relays the response as it arrives. The returned channel
// delivers fragments in arrival order and is always closed; on upstream
// failure the last element carries the error.
func (s *LLMService) StreamConversation(ctx context.Context, msgs []ChatMessage) (<-chan Fragment, error) {
	if len(msgs) == 0 {
		return nil, fmt.Errorf("%w: conversation must include at least 1 message", ErrInvalidRequest)
	}

	model := s.client.GenerativeModel(s.cfg.AssistantModel)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(s.cfg.SystemPrompt)},
	}
	temp := float32(chatTemperature)
	model.GenerationConfig = genai.GenerationConfig{Temperature: &temp}

	session := model.StartChat()
	for _, m := range msgs[:len(msgs)-1] {
		session.History = append(session.History, &genai.Content{
			Role:  geminiRole(m.Role),
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}
	last := msgs[len(msgs)-1]

	ch := make(chan Fragment, 16)
	go func() {
		defer close(ch)
		ctx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
		defer cancel()

		iter := session.SendMessageStream(ctx, genai.Text(last.Content))
		for {
			resp, err := iter.Next()
			if errors.Is(err, iterator.Done) {
				return
			}
			if err != nil {
				s.log.Error().Err(err).Msg("assistant stream failed")
				ch <- Fragment{Err: timeoutOr(ctx, fmt.Errorf("assistant stream failed: %w", err))}
				return
			}
			if delta := responseText(resp); delta != "" {
				ch <- Fragment{Role: RoleAssistant, Delta: delta}
			}
		}
	}()
	return ch, nil
}

// ExtractLeadData asks the assistant for the six lead fields as strict JSON.
// A non-JSON response is not an error: the raw text lands verbatim in the
// necesidad field and every other field stays empty.
func (s *LLMService) ExtractLeadData(ctx context.Context, transcript string) (ExtractedLeadFields, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()

	model := s.client.GenerativeModel(s.cfg.AssistantModel)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(s.cfg.ExtractionPrompt)},
	}
	temp := float32(extractTemperature)
	maxTokens := int32(extractMaxTokens)
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:     &temp,
		MaxOutputTokens: &maxTokens,
	}

	prompt := fmt.Sprintf(extractionUserPrompt, transcript)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return ExtractedLeadFields{}, timeoutOr(ctx, fmt.Errorf("extraction request failed: %w", err))
	}

	text := strings.TrimSpace(responseText(resp))
	if text == "" {
		return ExtractedLeadFields{}, fmt.Errorf("extraction response was empty")
	}
	return ParseExtractedFields(text), nil
}

// ParseExtractedFields parses the extraction response, falling back to the
// all-empty shape carrying the raw text when it is not valid JSON. Model
// output is never discarded.
func ParseExtractedFields(text string) ExtractedLeadFields {
	var fields ExtractedLeadFields
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return ExtractedLeadFields{Necesidad: text}
	}
	return fields
}

// SummarizeConversation produces a short digest of the conversation focused
// on the lead's motivations, needs, objections and contact data. A plain
// single-shot completion call with bounded output and low temperature.
func (s *LLMService) SummarizeConversation(ctx context.Context, msgs []ChatMessage) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()

	model := s.client.GenerativeModel(s.cfg.AssistantModel)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(summarySystemInstruction)},
	}
	temp := float32(summaryTemperature)
	maxTokens := int32(summaryMaxTokens)
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:     &temp,
		MaxOutputTokens: &maxTokens,
	}

	transcript := AssembleTranscript(msgs, LabelsSpanish)
	prompt := fmt.Sprintf(summaryUserPrompt, transcript)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", timeoutOr(ctx, fmt.Errorf("summarization request failed: %w", err))
	}

	summary := strings.TrimSpace(responseText(resp))
	if summary == "" {
		return "", fmt.Errorf("summarization response was empty")
	}
	return summary, nil
}

// geminiRole maps the wire role to the role names the assistant API expects.
func geminiRole(role string) string {
	if role == RoleUser {
		return "user"
	}
	return "model"
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String()
}

// timeoutOr classifies a failed call as ErrTimedOut when its context
// deadline expired.
func timeoutOr(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimedOut, err)
	}
	return err
}
