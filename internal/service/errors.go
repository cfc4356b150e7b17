package service

import (
	"errors"
	"fmt"
)

// ErrorKind tags the stage and reason a pipeline run stopped
type ErrorKind string

const (
	KindInvalidInput          ErrorKind = "invalid_input"
	KindGenerationRateLimited ErrorKind = "generation_rate_limited"
	KindGenerationService     ErrorKind = "generation_service_error"
	KindGenerationUnreachable ErrorKind = "generation_unreachable"
	KindExtractionNotFound    ErrorKind = "extraction_not_found"
	KindParseInvalidJSON      ErrorKind = "parse_invalid_json"
	KindMissingField          ErrorKind = "validation_missing_field"
	KindInvalidField          ErrorKind = "validation_invalid_field"
	KindStoreWriteFailed      ErrorKind = "store_write_failed"
)

// PipelineError is the terminal failure of one generation request
type PipelineError struct {
	Kind ErrorKind
	// Field is set for validation failures
	Field string
	// Message is set for generation service errors
	Message string
	Err     error
}

func (e *PipelineError) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Field)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	default:
		return string(e.Kind)
	}
}

func (e *PipelineError) Unwrap() error { return e.Err }

// UserMessage is the text returned to API clients. It never includes
// filesystem paths or transport details.
func (e *PipelineError) UserMessage() string {
	switch e.Kind {
	case KindInvalidInput:
		return "Please provide at least one ingredient."
	case KindGenerationRateLimited:
		return "Rate limit exceeded. Please wait and try again."
	case KindGenerationService:
		return "Generation service error: " + e.Message
	case KindGenerationUnreachable:
		return "Generation service is unreachable. Please try again later."
	case KindExtractionNotFound:
		return "AI did not return a valid JSON response."
	case KindParseInvalidJSON:
		return "Failed to parse JSON. The AI might have returned an invalid response."
	case KindMissingField:
		return "Missing field in AI response: " + e.Field
	case KindInvalidField:
		return "Invalid field in AI response: " + e.Field
	case KindStoreWriteFailed:
		return "Failed to save cocktail recipe."
	default:
		return "An unexpected error occurred."
	}
}

// IsClientError reports whether the failure was caused by the caller's input
func (e *PipelineError) IsClientError() bool {
	return e.Kind == KindInvalidInput
}

// AsPipelineError extracts a *PipelineError from err
func AsPipelineError(err error) (*PipelineError, bool) {
	var perr *PipelineError
	if errors.As(err, &perr) {
		return perr, true
	}
	return nil, false
}
