// Package errors provides structured errors with stable codes so callers
// and tests can match on categories instead of message strings.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrPermission   ErrorCode = "PERMISSION"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"
	ErrEnvFile     ErrorCode = "ENVFILE_PARSE"

	// Session errors
	ErrSessionRunning ErrorCode = "SESSION_RUNNING"
	ErrUserLookup     ErrorCode = "USER_LOOKUP"

	// Supervisor errors
	ErrSpawn   ErrorCode = "SPAWN"
	ErrStop    ErrorCode = "STOP"
	ErrPidfile ErrorCode = "PIDFILE"

	// Setup errors
	ErrScriptExecute ErrorCode = "SCRIPT_EXECUTE"
	ErrMarker        ErrorCode = "MARKER"

	// FileSystem errors
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileWrite  ErrorCode = "FILE_WRITE"
	ErrDirCreate  ErrorCode = "DIR_CREATE"
)

// DeskctlError represents a structured error with code and details
type DeskctlError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *DeskctlError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *DeskctlError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *DeskctlError) Is(target error) bool {
	var targetErr *DeskctlError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new DeskctlError with the given code and message
func New(code ErrorCode, message string) *DeskctlError {
	return &DeskctlError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new DeskctlError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *DeskctlError {
	return &DeskctlError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a DeskctlError
func Wrap(err error, code ErrorCode, message string) *DeskctlError {
	if err == nil {
		return nil
	}
	return &DeskctlError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *DeskctlError {
	if err == nil {
		return nil
	}
	return &DeskctlError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *DeskctlError) WithDetail(key string, value interface{}) *DeskctlError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var derr *DeskctlError
	if errors.As(err, &derr) {
		return derr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a DeskctlError
func GetErrorCode(err error) ErrorCode {
	var derr *DeskctlError
	if errors.As(err, &derr) {
		return derr.Code
	}
	return ErrUnknown
}
