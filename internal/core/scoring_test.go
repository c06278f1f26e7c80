package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"leadpilot.com/lead-qualifier/internal/config"
)

type stubRunner struct {
	result any
	err    error
	calls  int
	inputs map[string]any
}

func (r *stubRunner) Run(_ context.Context, inputs map[string]any) (any, error) {
	r.calls++
	r.inputs = inputs
	if r.err != nil {
		return nil, r.err
	}
	return r.result, nil
}

// jsonWrapper exposes the workflow output only through a JSON accessor.
type jsonWrapper struct {
	raw string
}

func (w jsonWrapper) JSON() (string, error) { return w.raw, nil }

// fieldsWrapper exposes the workflow output only through a field dump.
type fieldsWrapper struct {
	m map[string]any
}

func (w fieldsWrapper) Fields() map[string]any { return w.m }

func testConfig() *config.Config {
	return &config.Config{
		CompanyName:        "Acme",
		ProductName:        "AcmeCRM",
		ProductDescription: "CRM para PYMEs",
		ICPDescription:     "PYMEs de servicios",
	}
}

func validOutput() map[string]any {
	return map[string]any{
		"lead_score":       8.5,
		"use_case_summary": "x",
		"talking_points":   []any{"a", "b"},
	}
}

func TestScore_CoercesAllRepresentations(t *testing.T) {
	want := &ScoringResult{
		LeadScore:      8.5,
		UseCaseSummary: "x",
		TalkingPoints:  []string{"a", "b"},
	}

	rawJSON, err := json.Marshal(validOutput())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		raw  any
	}{
		{"plain mapping", validOutput()},
		{"json accessor", jsonWrapper{raw: string(rawJSON)}},
		{"field dump", fieldsWrapper{m: validOutput()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &stubRunner{result: tt.raw}
			svc := NewScoringService(runner, testConfig())

			got, err := svc.Score(context.Background(), "transcript", nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("got %+v, want %+v", got, want)
			}
		})
	}
}

func TestScore_MissingScoreIsSchemaMismatch(t *testing.T) {
	output := validOutput()
	delete(output, "lead_score")

	runner := &stubRunner{result: output}
	svc := NewScoringService(runner, testConfig())

	_, err := svc.Score(context.Background(), "transcript", nil)
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
	if errors.Is(err, ErrExecution) {
		t.Errorf("schema mismatch must not be classified as execution failure: %v", err)
	}
}

func TestScore_RunnerFailureIsExecutionError(t *testing.T) {
	runner := &stubRunner{err: fmt.Errorf("workflow crashed")}
	svc := NewScoringService(runner, testConfig())

	_, err := svc.Score(context.Background(), "transcript", nil)
	if !errors.Is(err, ErrExecution) {
		t.Fatalf("expected ErrExecution, got %v", err)
	}
	if errors.Is(err, ErrSchemaMismatch) {
		t.Errorf("execution failure must not be classified as schema mismatch: %v", err)
	}
}

func TestScore_TimeoutPassesThrough(t *testing.T) {
	runner := &stubRunner{err: fmt.Errorf("%w: gave up", ErrTimedOut)}
	svc := NewScoringService(runner, testConfig())

	_, err := svc.Score(context.Background(), "transcript", nil)
	if !errors.Is(err, ErrTimedOut) {
		t.Fatalf("expected ErrTimedOut, got %v", err)
	}
}

func TestScore_UnusableOutputIsSchemaMismatch(t *testing.T) {
	runner := &stubRunner{result: "plain string output"}
	svc := NewScoringService(runner, testConfig())

	_, err := svc.Score(context.Background(), "transcript", nil)
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch for unusable output, got %v", err)
	}
}

func TestScore_MergesBusinessContextAndExtractedFields(t *testing.T) {
	runner := &stubRunner{result: validOutput()}
	svc := NewScoringService(runner, testConfig())

	extracted := &ExtractedLeadFields{Nombre: "Ana", Empresa: "Acme", Necesidad: "CRM"}
	if _, err := svc.Score(context.Background(), "USER: Hola", extracted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inputs := runner.inputs
	if inputs["company"] != "Acme" {
		t.Errorf("expected business context company, got %v", inputs["company"])
	}
	if inputs["form_response"] != "USER: Hola" {
		t.Errorf("expected transcript as form_response, got %v", inputs["form_response"])
	}
	if inputs["nombre"] != "Ana" || inputs["necesidad"] != "CRM" {
		t.Errorf("expected extracted fields merged into payload, got %v", inputs)
	}
	if inputs["product_name"] != "AcmeCRM" {
		t.Errorf("merge must augment, not replace, the base payload: %v", inputs)
	}
}
