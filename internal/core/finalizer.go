package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"leadpilot.com/lead-qualifier/internal/observability/logging"
	"leadpilot.com/lead-qualifier/internal/observability/metrics"
	"leadpilot.com/lead-qualifier/internal/store"
)

// LeadStore persists a finalized lead record, returning the backend's
// identifier for the created record.
type LeadStore interface {
	Store(ctx context.Context, rec *store.LeadRecord) (string, error)
}

// LeadPublisher announces a finalized lead. Publication is best effort and
// never fails the pipeline.
type LeadPublisher interface {
	PublishLead(ctx context.Context, rec *store.LeadRecord) error
}

// FinalizeService runs the one-time end-of-conversation pipeline: transcript
// assembly, structured extraction, agent scoring, summarization and
// persistence, strictly in that order. Each step is isolated; the first
// failure aborts the pipeline with a step-labelled error and nothing is
// persisted.
type FinalizeService struct {
	assistant Assistant
	scorer    *ScoringService
	leads     LeadStore
	publisher LeadPublisher
	metrics   *metrics.Metrics
}

func NewFinalizeService(assistant Assistant, scorer *ScoringService, leads LeadStore, publisher LeadPublisher) *FinalizeService {
	return &FinalizeService{
		assistant: assistant,
		scorer:    scorer,
		leads:     leads,
		publisher: publisher,
		metrics:   metrics.DefaultMetrics,
	}
}

// FinalizeResult is the outcome of a successful pipeline run.
type FinalizeResult struct {
	RecordID string
	Scoring  *ScoringResult
	Summary  string
	Record   *store.LeadRecord
}

func (s *FinalizeService) Finalize(ctx context.Context, msgs []ChatMessage, userID, sessionID string) (*FinalizeResult, error) {
	if len(msgs) == 0 {
		return nil, &StepError{Step: StepValidation, Err: fmt.Errorf("%w: conversation must include at least 1 message", ErrInvalidRequest)}
	}
	if userID == "" {
		userID = "unknown"
	}
	if sessionID == "" {
		sessionID = "unknown"
	}
	logger := logging.WithSession(userID, sessionID)

	transcript := AssembleTranscript(msgs, LabelsEnglish)

	extracted, err := s.assistant.ExtractLeadData(ctx, transcript)
	if err != nil {
		return nil, s.fail(StepExtraction, fmt.Errorf("%w: %v", ErrExtraction, err))
	}

	scoring, err := s.scorer.Score(ctx, transcript, &extracted)
	if err != nil {
		return nil, s.fail(StepScoring, err)
	}

	summary, err := s.assistant.SummarizeConversation(ctx, msgs)
	if err != nil {
		return nil, s.fail(StepSummarization, fmt.Errorf("%w: %v", ErrSummarization, err))
	}

	rec := &store.LeadRecord{
		ID:                  uuid.NewString(),
		UserID:              userID,
		SessionID:           sessionID,
		LeadScore:           scoring.LeadScore,
		UseCaseSummary:      scoring.UseCaseSummary,
		TalkingPoints:       scoring.TalkingPoints,
		ConversationSummary: summary,
		FullConversation:    transcript,
		CreatedAt:           time.Now().UTC(),
	}
	recordID, err := s.leads.Store(ctx, rec)
	if err != nil {
		return nil, s.fail(StepPersistence, fmt.Errorf("%w: %v", ErrStore, err))
	}

	if s.publisher != nil {
		if err := s.publisher.PublishLead(ctx, rec); err != nil {
			logger.Warn().Err(err).Str("recordId", recordID).Msg("failed to publish finalized lead event")
		}
	}

	s.metrics.FinalizationsSuccess.Inc()
	logger.Info().Str("recordId", recordID).Float64("leadScore", scoring.LeadScore).Msg("conversation finalized")

	return &FinalizeResult{
		RecordID: recordID,
		Scoring:  scoring,
		Summary:  summary,
		Record:   rec,
	}, nil
}

func (s *FinalizeService) fail(step string, err error) error {
	s.metrics.FinalizationsFailed.WithLabelValues(step).Inc()
	return &StepError{Step: step, Err: err}
}
