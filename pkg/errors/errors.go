package errors

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Lifecycle and configuration errors
	ErrConfigInvalid      ErrorCode = "CONFIG_INVALID"
	ErrNotInitialized     ErrorCode = "NOT_INITIALIZED"
	ErrAlreadyInitialized ErrorCode = "ALREADY_INITIALIZED"

	// VFS errors
	ErrVfsRead     ErrorCode = "VFS_READ"
	ErrInvalidPath ErrorCode = "INVALID_PATH"

	// RFS errors
	ErrIOSetup ErrorCode = "IO_SETUP"
	ErrIOWrite ErrorCode = "IO_WRITE"

	// Materialisation errors
	ErrReference           ErrorCode = "REFERENCE"
	ErrUnsupportedEncoding ErrorCode = "UNSUPPORTED_ENCODING"

	// Delivery errors
	ErrNoController     ErrorCode = "NO_CONTROLLER"
	ErrDispatch         ErrorCode = "DISPATCH"
	ErrClientDisconnect ErrorCode = "CLIENT_DISCONNECT"
)

// LoaderError represents a structured error with code and details
type LoaderError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *LoaderError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *LoaderError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *LoaderError) Is(target error) bool {
	var targetErr *LoaderError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new LoaderError with the given code and message
func New(code ErrorCode, message string) *LoaderError {
	return &LoaderError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new LoaderError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *LoaderError {
	return &LoaderError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a LoaderError
func Wrap(err error, code ErrorCode, message string) *LoaderError {
	if err == nil {
		return nil
	}
	return &LoaderError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *LoaderError {
	if err == nil {
		return nil
	}
	return &LoaderError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *LoaderError) WithDetail(key string, value interface{}) *LoaderError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *LoaderError) WithDetails(details map[string]interface{}) *LoaderError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var loaderErr *LoaderError
	if errors.As(err, &loaderErr) {
		return loaderErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a LoaderError
func GetErrorCode(err error) ErrorCode {
	var loaderErr *LoaderError
	if errors.As(err, &loaderErr) {
		return loaderErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a LoaderError
func GetErrorDetails(err error) map[string]interface{} {
	var loaderErr *LoaderError
	if errors.As(err, &loaderErr) {
		return loaderErr.Details
	}
	return nil
}

// IsClientDisconnect reports whether err means the client went away while
// the response was being delivered.
func IsClientDisconnect(err error) bool {
	if err == nil {
		return false
	}
	if IsErrorCode(err, ErrClientDisconnect) {
		return true
	}
	return errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, net.ErrClosed)
}

// IsIllegalState reports whether err was caused by writing to a response
// that can no longer accept it (already committed, hijacked, length exceeded).
func IsIllegalState(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, http.ErrBodyNotAllowed) ||
		errors.Is(err, http.ErrHijacked) ||
		errors.Is(err, http.ErrContentLength)
}
