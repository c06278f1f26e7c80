package core

import "errors"

// Failure taxonomy for the finalization pipeline and the streaming relay.
// Callers distinguish a crashed workflow (ErrExecution) from a workflow that
// returned a value of the wrong shape (ErrSchemaMismatch).
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrExtraction     = errors.New("lead extraction failed")
	ErrExecution      = errors.New("scoring workflow execution failed")
	ErrSchemaMismatch = errors.New("scoring workflow result does not match the expected schema")
	ErrSummarization  = errors.New("conversation summarization failed")
	ErrStore          = errors.New("lead store failed")
	ErrTimedOut       = errors.New("external call timed out")
)

// Finalization step labels, surfaced verbatim in error details.
const (
	StepValidation    = "validation"
	StepExtraction    = "extraction"
	StepScoring       = "scoring"
	StepSummarization = "summarization"
	StepPersistence   = "persistence"
)

// StepError labels a finalization failure with the step it happened in.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return e.Step + ": " + e.Err.Error() }

func (e *StepError) Unwrap() error { return e.Err }
