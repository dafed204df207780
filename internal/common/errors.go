package common

import (
	"errors"
	"fmt"
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

// Common application errors
var (
	// ErrLoadFailure marks a per-document load problem: missing path or a
	// source that is not a readable document. The batch continues.
	ErrLoadFailure = errors.New("document load failure")

	// ErrNoData marks an empty batch or empty dataset. Downstream stages
	// return it instead of raising; the pipeline halts before export.
	ErrNoData = errors.New("no data available")

	// ErrNotTabulated marks export called before any tabulation happened.
	// Caller misuse, reported immediately.
	ErrNotTabulated = errors.New("no tabulated dataset available")

	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
