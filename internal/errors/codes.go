package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a specific error type for routing operations.
type ErrorCode string

const (
	// ErrCodeClassificationFailed indicates a classifier could not produce a result.
	ErrCodeClassificationFailed ErrorCode = "CLASSIFICATION_FAILED"
	// ErrCodeRoutingFailed indicates generation failed and no fallback rescued it.
	ErrCodeRoutingFailed ErrorCode = "ROUTING_FAILED"
	// ErrCodeConfigurationInvalid indicates invalid or missing configuration.
	ErrCodeConfigurationInvalid ErrorCode = "CONFIGURATION_INVALID"
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
)

// RouterError represents a structured error for the smart router.
type RouterError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *RouterError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *RouterError) Unwrap() error {
	return e.Cause
}

// Classification creates a classification error.
func Classification(msg string, cause error) *RouterError {
	return &RouterError{Code: ErrCodeClassificationFailed, Message: msg, Cause: cause}
}

// Routing creates a routing error.
func Routing(msg string, cause error) *RouterError {
	return &RouterError{Code: ErrCodeRoutingFailed, Message: msg, Cause: cause}
}

// Configuration creates a configuration error.
func Configuration(msg string) *RouterError {
	return &RouterError{Code: ErrCodeConfigurationInvalid, Message: msg}
}

// Configurationf creates a configuration error with a formatted message.
func Configurationf(format string, args ...any) *RouterError {
	return Configuration(fmt.Sprintf(format, args...))
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *RouterError {
	return &RouterError{Code: ErrCodeInvalidArgument, Message: msg}
}

// IsCode checks if an error, or anything it wraps, carries the given code.
func IsCode(err error, code ErrorCode) bool {
	var routerErr *RouterError
	if errors.As(err, &routerErr) {
		return routerErr.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not a RouterError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	var routerErr *RouterError
	if errors.As(err, &routerErr) {
		return routerErr.Code
	}
	return defaultCode
}
