package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"leadpilot.com/lead-qualifier/internal/config"
	"leadpilot.com/lead-qualifier/internal/observability/logging"
)

// scoringResultSchema fixes the shape every workflow result must satisfy: a
// numeric score, a summary and a list of talking points.
const scoringResultSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["lead_score", "use_case_summary", "talking_points"],
  "properties": {
    "lead_score": {"type": "number"},
    "use_case_summary": {"type": "string"},
    "talking_points": {"type": "array", "items": {"type": "string"}}
  }
}`

// JSONResult is a workflow output exposing its raw JSON encoding.
type JSONResult interface {
	JSON() (string, error)
}

// FieldsResult is a workflow output exposing a generic field dump.
type FieldsResult interface {
	Fields() map[string]any
}

// ScoringService drives the external multi-agent lead-scoring workflow and
// validates its output against the ScoringResult shape.
type ScoringService struct {
	runner Runner
	cfg    *config.Config
	schema *jsonschema.Schema
	log    zerolog.Logger
}

func NewScoringService(runner Runner, cfg *config.Config) *ScoringService {
	return &ScoringService{
		runner: runner,
		cfg:    cfg,
		schema: jsonschema.MustCompileString("scoring_result.json", scoringResultSchema),
		log:    logging.WithComponent("scoring"),
	}
}

// Score runs the workflow over the transcript with the process-wide business
// context, merging any extracted lead fields into the payload. Workflow
// crashes surface as ErrExecution; results of the wrong shape as
// ErrSchemaMismatch.
func (s *ScoringService) Score(ctx context.Context, formResponse string, extracted *ExtractedLeadFields) (*ScoringResult, error) {
	payload := map[string]any{
		"company":             s.cfg.CompanyName,
		"product_name":        s.cfg.ProductName,
		"product_description": s.cfg.ProductDescription,
		"icp_description":     s.cfg.ICPDescription,
		"form_response":       formResponse,
	}
	if extracted != nil {
		for k, v := range extracted.inputs() {
			payload[k] = v
		}
	}

	raw, err := s.Kickoff(ctx, payload)
	if err != nil {
		if errors.Is(err, ErrTimedOut) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrExecution, err)
	}
	return s.validate(raw)
}

// Kickoff invokes the workflow without result validation, exposing the raw
// output. Used by the prototype /chat surface.
func (s *ScoringService) Kickoff(ctx context.Context, inputs map[string]any) (any, error) {
	return s.runner.Run(ctx, inputs)
}

func (s *ScoringService) validate(raw any) (*ScoringResult, error) {
	m, err := coerceResult(raw)
	if err != nil {
		return nil, err
	}

	buf, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	var doc any
	if err := json.Unmarshal(buf, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	if err := s.schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}

	var result ScoringResult
	if err := json.Unmarshal(buf, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	return &result, nil
}

// coerceResult tries the workflow output representations in fixed priority
// order: a plain mapping, then a JSON accessor, then a field dump.
func coerceResult(raw any) (map[string]any, error) {
	if m, ok := raw.(map[string]any); ok {
		return m, nil
	}
	if j, ok := raw.(JSONResult); ok {
		if s, err := j.JSON(); err == nil {
			var m map[string]any
			if json.Unmarshal([]byte(s), &m) == nil {
				return m, nil
			}
		}
	}
	if f, ok := raw.(FieldsResult); ok {
		if m := f.Fields(); m != nil {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: unusable workflow output of type %T", ErrSchemaMismatch, raw)
}
