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
	ErrUnknown        ErrorCode = "UNKNOWN"
	ErrInternal       ErrorCode = "INTERNAL"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrAlreadyExists  ErrorCode = "ALREADY_EXISTS"
	ErrNotImplemented ErrorCode = "NOT_IMPLEMENTED"
	ErrCanceled       ErrorCode = "CANCELED"

	// Configuration errors
	ErrConfigLoad   ErrorCode = "CONFIG_LOAD"
	ErrConfigParse  ErrorCode = "CONFIG_PARSE"
	ErrConfigValid  ErrorCode = "CONFIG_INVALID"
	ErrImageUnknown ErrorCode = "IMAGE_UNKNOWN"

	// Link errors
	ErrNotALink   ErrorCode = "NOT_A_LINK"
	ErrLinkCreate ErrorCode = "LINK_CREATE"
	ErrLinkLoop   ErrorCode = "LINK_LOOP"
	ErrRewriteIO  ErrorCode = "REWRITE_IO"
	ErrPromotion  ErrorCode = "PROMOTION"
	ErrCleanup    ErrorCode = "CLEANUP"

	// FileSystem errors
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileCreate ErrorCode = "FILE_CREATE"
	ErrFileWrite  ErrorCode = "FILE_WRITE"
	ErrFileDelete ErrorCode = "FILE_DELETE"
	ErrDirCreate  ErrorCode = "DIR_CREATE"

	// External command errors
	ErrCommandExec ErrorCode = "COMMAND_EXEC"
)

// SlotError represents a structured error with code and details
type SlotError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *SlotError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *SlotError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a SlotError carrying the same code
func (e *SlotError) Is(target error) bool {
	var targetErr *SlotError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new SlotError with the given code and message
func New(code ErrorCode, message string) *SlotError {
	return &SlotError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new SlotError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *SlotError {
	return &SlotError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a SlotError
func Wrap(err error, code ErrorCode, message string) *SlotError {
	if err == nil {
		return nil
	}
	return &SlotError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *SlotError {
	if err == nil {
		return nil
	}
	return &SlotError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *SlotError) WithDetail(key string, value interface{}) *SlotError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *SlotError) WithDetails(details map[string]interface{}) *SlotError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var slotErr *SlotError
	if errors.As(err, &slotErr) {
		return slotErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a SlotError
func GetErrorCode(err error) ErrorCode {
	var slotErr *SlotError
	if errors.As(err, &slotErr) {
		return slotErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a SlotError
func GetErrorDetails(err error) map[string]interface{} {
	var slotErr *SlotError
	if errors.As(err, &slotErr) {
		return slotErr.Details
	}
	return nil
}

// As is errors.As from the standard library, re-exported so callers need a
// single errors import
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Is is errors.Is from the standard library
func Is(err, target error) bool {
	return errors.Is(err, target)
}
