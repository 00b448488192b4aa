package errors

import (
	"errors"
	"fmt"
)

// Error codes for programmatic handling.
const (
	CodeConfigInvalid      = "CONFIG_INVALID"
	CodeNoTaskContext      = "NO_TASK_CONTEXT"
	CodeDecodeFailed       = "DECODE_FAILED"
	CodeActionNotFound     = "ACTION_NOT_FOUND"
	CodeProviderError      = "PROVIDER_ERROR"
	CodeAPIKeyMissing      = "API_KEY_MISSING"
	CodeMaxIterations      = "MAX_ITERATIONS"
	CodeCheckpointNotFound = "CHECKPOINT_NOT_FOUND"
)

// Sentinels for errors.Is comparisons. Matching is by code, so any SherpaError
// carrying the same code satisfies errors.Is against these.
var (
	ErrNoTaskContext      = New(CodeNoTaskContext, "no task context available")
	ErrDecodeFailed       = New(CodeDecodeFailed, "decode failed")
	ErrCheckpointNotFound = New(CodeCheckpointNotFound, "checkpoint not found")
)

// SherpaError is a structured error with a code and actionable suggestion.
type SherpaError struct {
	Code       string // machine-readable code (e.g. CONFIG_INVALID)
	Message    string // human-readable description
	Suggestion string // actionable fix
	Err        error  // wrapped underlying error
}

// Error implements the error interface.
func (e *SherpaError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap supports errors.Is / errors.As.
func (e *SherpaError) Unwrap() error {
	return e.Err
}

// New creates a SherpaError with the given code and message.
func New(code, message string) *SherpaError {
	return &SherpaError{Code: code, Message: message}
}

// Newf creates a SherpaError with a formatted message.
func Newf(code, format string, args ...any) *SherpaError {
	return &SherpaError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a SherpaError wrapping an existing error.
func Wrap(code, message string, err error) *SherpaError {
	return &SherpaError{Code: code, Message: message, Err: err}
}

// WithSuggestion returns the error with the suggestion set.
func (e *SherpaError) WithSuggestion(suggestion string) *SherpaError {
	e.Suggestion = suggestion
	return e
}

// Is checks whether target matches this error's code.
func (e *SherpaError) Is(target error) bool {
	var se *SherpaError
	if errors.As(target, &se) {
		return e.Code == se.Code
	}
	return false
}

// AsCode extracts the SherpaError code from an error, or "" if not a SherpaError.
func AsCode(err error) string {
	var se *SherpaError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// Suggestion extracts the suggestion from an error, or "" if not a SherpaError.
func Suggestion(err error) string {
	var se *SherpaError
	if errors.As(err, &se) {
		return se.Suggestion
	}
	return ""
}
