package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"leadpilot.com/lead-qualifier/internal/core"
	"leadpilot.com/lead-qualifier/internal/observability/logging"
	"leadpilot.com/lead-qualifier/internal/observability/metrics"
)

type APIHandler struct {
	assistant core.Assistant
	finalizer *core.FinalizeService
	scorer    *core.ScoringService
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

func NewAPIHandler(assistant core.Assistant, finalizer *core.FinalizeService, scorer *core.ScoringService) *APIHandler {
	return &APIHandler{
		assistant: assistant,
		finalizer: finalizer,
		scorer:    scorer,
		metrics:   metrics.DefaultMetrics,
		log:       logging.WithComponent("api"),
	}
}

type ChatStreamRequest struct {
	Messages []core.ChatMessage `json:"messages"`
}

// ChatStreamChunk is the wire shape of one SSE event. The client
// concatenates delta values to rebuild the full reply.
type ChatStreamChunk struct {
	Role  string `json:"role"`
	Delta string `json:"delta"`
}

func (h *APIHandler) ChatStreamHandler(w http.ResponseWriter, r *http.Request) {
	var req ChatStreamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Messages) == 0 {
		writeDetail(w, http.StatusBadRequest, "The conversation must include at least 1 message.")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeDetail(w, http.StatusInternalServerError, "Streaming is not supported by this connection.")
		return
	}

	fragments, err := h.assistant.StreamConversation(r.Context(), req.Messages)
	if err != nil {
		if errors.Is(err, core.ErrInvalidRequest) {
			writeDetail(w, http.StatusBadRequest, err.Error())
		} else {
			h.log.Error().Err(err).Msg("failed to open assistant stream")
			writeDetail(w, http.StatusInternalServerError, "Failed to open assistant stream.")
		}
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	h.metrics.StreamsTotal.Inc()
	h.metrics.StreamsActive.Inc()
	start := time.Now()
	defer func() {
		h.metrics.StreamsActive.Dec()
		h.metrics.StreamDuration.Observe(time.Since(start).Seconds())
	}()

	for fragment := range fragments {
		if fragment.Err != nil {
			h.metrics.StreamsFailed.Inc()
			writeSSE(w, map[string]string{"error": fragment.Err.Error()})
			flusher.Flush()
			return
		}
		writeSSE(w, ChatStreamChunk{Role: fragment.Role, Delta: fragment.Delta})
		h.metrics.FragmentsRelayed.Inc()
		flusher.Flush()
	}
}

type ChatFinishRequest struct {
	Messages  []core.ChatMessage `json:"messages"`
	UserID    string             `json:"user_id"`
	SessionID string             `json:"session_id"`
}

type ChatFinishResponse struct {
	Success          bool                `json:"success"`
	AirtableRecordID string              `json:"airtable_record_id"`
	CrewaiResult     *core.ScoringResult `json:"crewai_result"`
	Summary          string              `json:"summary"`
	Message          string              `json:"message"`
}

func (h *APIHandler) ChatFinishHandler(w http.ResponseWriter, r *http.Request) {
	var req ChatFinishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Messages) == 0 {
		writeDetail(w, http.StatusBadRequest, "The conversation must include at least 1 message.")
		return
	}

	result, err := h.finalizer.Finalize(r.Context(), req.Messages, req.UserID, req.SessionID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, core.ErrInvalidRequest) {
			status = http.StatusBadRequest
		}
		h.log.Error().Err(err).Str("sessionId", req.SessionID).Msg("finalization failed")
		writeDetail(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ChatFinishResponse{
		Success:          true,
		AirtableRecordID: result.RecordID,
		CrewaiResult:     result.Scoring,
		Summary:          result.Summary,
		Message:          "Lead processed and stored.",
	})
}

type LeadFlowRequest struct {
	LeadName string `json:"lead_name"`
	Company  string `json:"company"`
}

// LeadFlowHandler runs the scoring workflow directly, without the
// conversational pipeline. The raw workflow output is returned as-is.
func (h *APIHandler) LeadFlowHandler(w http.ResponseWriter, r *http.Request) {
	var req LeadFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.LeadName == "" {
		req.LeadName = "unknown"
	}
	if req.Company == "" {
		req.Company = "unknown"
	}

	raw, err := h.scorer.Kickoff(r.Context(), map[string]any{
		"lead_name": req.LeadName,
		"company":   req.Company,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("workflow kickoff failed")
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": raw})
}

func writeSSE(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
