package errors

import (
	"fmt"
	"net/http"
)

// Error codes used by AppContextError.
const (
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeOriginUnavailable = "ORIGIN_UNAVAILABLE"
	CodeDecodeFailure     = "DECODE_FAILURE"
	CodePersistFailure    = "PERSIST_FAILURE"
	CodeUnservable        = "UNSERVABLE"
	CodeUnknown           = "UNKNOWN_ERROR"
)

// AppContextError represents an error with rich context information
type AppContextError struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Layer     string                 `json:"layer,omitempty"`     // Clean Architecture layer (rest, usecase, gateway, driver)
	Component string                 `json:"component,omitempty"` // Specific component/service name
	Operation string                 `json:"operation,omitempty"` // Specific operation/method name
	Cause     error                  `json:"-"`                   // Underlying error (not serialized)
	Context   map[string]interface{} `json:"context,omitempty"`   // Additional context information
}

// Error implements the error interface
func (e *AppContextError) Error() string {
	var prefix string
	if e.Layer != "" && e.Component != "" && e.Operation != "" {
		prefix = fmt.Sprintf("[%s:%s:%s] ", e.Layer, e.Component, e.Operation)
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s%s: %s (caused by: %v)", prefix, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s%s: %s", prefix, e.Code, e.Message)
}

// Unwrap returns the underlying error for error chain unwrapping
func (e *AppContextError) Unwrap() error {
	return e.Cause
}

// HTTPStatusCode maps error codes to HTTP status codes.
// Invalid identifiers and every kind of origin failure are reported as 404.
func (e *AppContextError) HTTPStatusCode() int {
	switch e.Code {
	case CodeInvalidRequest, CodeOriginUnavailable:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// NewAppContextError creates a new AppContextError with full context
func NewAppContextError(
	code, message, layer, component, operation string,
	cause error,
	context map[string]interface{},
) *AppContextError {
	if context == nil {
		context = make(map[string]interface{})
	}

	return &AppContextError{
		Code:      code,
		Message:   message,
		Layer:     layer,
		Component: component,
		Operation: operation,
		Cause:     cause,
		Context:   context,
	}
}

// wrapSentinel chains cause behind sentinel so that errors.Is matches both.
func wrapSentinel(sentinel, cause error) error {
	if cause != nil {
		return fmt.Errorf("%w: %w", sentinel, cause)
	}
	return fmt.Errorf("%w", sentinel)
}

// NewInvalidRequestError creates an AppContextError that wraps ErrInvalidRequest
func NewInvalidRequestError(message, layer, component, operation string, context map[string]interface{}) *AppContextError {
	return NewAppContextError(CodeInvalidRequest, message, layer, component, operation, wrapSentinel(ErrInvalidRequest, nil), context)
}

// NewOriginUnavailableError creates an AppContextError that wraps ErrOriginUnavailable
func NewOriginUnavailableError(message, layer, component, operation string, cause error, context map[string]interface{}) *AppContextError {
	return NewAppContextError(CodeOriginUnavailable, message, layer, component, operation, wrapSentinel(ErrOriginUnavailable, cause), context)
}

// NewDecodeFailureError creates an AppContextError that wraps ErrDecodeFailure
func NewDecodeFailureError(message, layer, component, operation string, cause error, context map[string]interface{}) *AppContextError {
	return NewAppContextError(CodeDecodeFailure, message, layer, component, operation, wrapSentinel(ErrDecodeFailure, cause), context)
}

// NewPersistFailureError creates an AppContextError that wraps ErrPersistFailure
func NewPersistFailureError(message, layer, component, operation string, cause error, context map[string]interface{}) *AppContextError {
	return NewAppContextError(CodePersistFailure, message, layer, component, operation, wrapSentinel(ErrPersistFailure, cause), context)
}

// NewUnservableError creates an AppContextError that wraps ErrUnservable
func NewUnservableError(message, layer, component, operation string, cause error, context map[string]interface{}) *AppContextError {
	return NewAppContextError(CodeUnservable, message, layer, component, operation, wrapSentinel(ErrUnservable, cause), context)
}
