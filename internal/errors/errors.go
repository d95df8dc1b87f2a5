// Package errors provides categorized error codes shared across the sync core.
package errors

import "fmt"

// ErrorCode represents a unique, stable error category.
type ErrorCode string

const (
	// General errors
	ErrInternal   ErrorCode = "INTERNAL_ERROR"
	ErrInvalid    ErrorCode = "INVALID_INPUT"
	ErrValidation ErrorCode = "VALIDATION_ERROR"

	// Remote API errors, mirroring the gateway taxonomy
	ErrUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrServer       ErrorCode = "SERVER_ERROR"
	ErrNetwork      ErrorCode = "NETWORK_ERROR"
	ErrDecode       ErrorCode = "DECODE_ERROR"

	// Local persistence errors
	ErrDatabase  ErrorCode = "DATABASE_ERROR"
	ErrMigration ErrorCode = "MIGRATION_FAILED"

	// Session errors
	ErrNoTenant       ErrorCode = "NO_TENANT"
	ErrSessionExpired ErrorCode = "SESSION_EXPIRED"

	// Sync errors
	ErrSyncFailed     ErrorCode = "SYNC_FAILED"
	ErrSyncInProgress ErrorCode = "SYNC_IN_PROGRESS"
	ErrQueueFull      ErrorCode = "QUEUE_FULL"
	ErrActionNotFound ErrorCode = "ACTION_NOT_FOUND"
)

// AppError represents an application error with code and message.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an error code.
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Is checks if an error is of a specific code.
func Is(err error, code ErrorCode) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}

// CodeOf returns the error code of an error, or ErrInternal for errors
// that did not originate from this package.
func CodeOf(err error) ErrorCode {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return ErrInternal
}

// Retryable reports whether an error category is transient. Queued writes
// deliberately retry every category up to the retry ceiling, so this is
// informational for diagnostics and UI.
func Retryable(code ErrorCode) bool {
	switch code {
	case ErrNetwork, ErrServer, ErrDatabase:
		return true
	}
	return false
}
