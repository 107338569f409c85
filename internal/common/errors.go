package common

import (
	"errors"
	"fmt"
)

// Sentinel errors for the pipeline taxonomy. Request-scoped errors abort the
// whole batch before any per-file machine starts; file-scoped errors are
// caught at the orchestrator and fail only the one file.
var (
	// Request-scoped.
	ErrMalformedRequest = errors.New("malformed multipart request")
	ErrNoFilesProvided  = errors.New("no files provided")

	// File-scoped.
	ErrEmptyExtraction     = errors.New("empty extraction")
	ErrInvalidRecordSchema = errors.New("invalid record schema")
	ErrStore               = errors.New("object store error")
	ErrExternalService     = errors.New("external service error")
	ErrRelocationFailed    = errors.New("relocation failed")
)

// PipelineError carries a stable code alongside the wrapped cause so the HTTP
// boundary can map it without string matching.
type PipelineError struct {
	Code    string
	Message string
	Cause   error
}

func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

func NewPipelineError(code, message string, cause error) *PipelineError {
	return &PipelineError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// FileScoped reports whether err should fail a single file rather than the
// whole request. Unclassified errors count as file-scoped: the system favors
// partial success over all-or-nothing failure.
func FileScoped(err error) bool {
	return !errors.Is(err, ErrMalformedRequest) && !errors.Is(err, ErrNoFilesProvided)
}
