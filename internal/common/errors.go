package common

import (
	"errors"
	"fmt"
)

// Error codes. One per failure class a document can end in.
const (
	CodeExtractionIO   = "EXTRACTION_IO"
	CodeService        = "SERVICE"
	CodeSchemaMismatch = "SCHEMA_MISMATCH"
	CodeStorage        = "STORAGE"
	CodeConfig         = "CONFIG_ERROR"
	CodeNotFound       = "NOT_FOUND"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches the code-only sentinels below, so errors.Is(err, ErrService)
// holds for any *AppError carrying CodeService.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok || t.Message != "" || t.Cause != nil {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrExtractionIO   = &AppError{Code: CodeExtractionIO}
	ErrService        = &AppError{Code: CodeService}
	ErrSchemaMismatch = &AppError{Code: CodeSchemaMismatch}
	ErrStorage        = &AppError{Code: CodeStorage}
	ErrNotFound       = &AppError{Code: CodeNotFound}
)

// Common application errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrMissingKey   = errors.New("missing API key")
	ErrPromptLimit  = errors.New("prompt exceeds size limit")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ExtractionIOError reports a document that could not be opened or parsed.
func ExtractionIOError(message string, cause error) *AppError {
	return NewAppError(CodeExtractionIO, message, cause)
}

// ServiceError reports a failed or malformed exchange with the model service.
func ServiceError(message string, cause error) *AppError {
	return NewAppError(CodeService, message, cause)
}

// SchemaMismatchError reports a payload that does not satisfy the extraction schema.
func SchemaMismatchError(message string, cause error) *AppError {
	return NewAppError(CodeSchemaMismatch, message, cause)
}

// StorageError reports a failed read or write against the records store.
func StorageError(message string, cause error) *AppError {
	return NewAppError(CodeStorage, message, cause)
}

// CodeOf returns the code of the first *AppError in err's chain, or "" if none.
func CodeOf(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
