// Package errors provides a centralized error handling system with typed errors,
// error factories, and a registry pattern for consistent error creation and handling.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of an error for machine-readable classification.
type ErrorType int

const (
	// ErrorTypeUnknown is the default error type for unclassified errors.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeValidation covers input validation and argument errors.
	ErrorTypeValidation
	// ErrorTypeParsing covers JSON, YAML, and other parsing errors.
	ErrorTypeParsing
	// ErrorTypeInternal covers internal/unexpected errors.
	ErrorTypeInternal
	// ErrorTypeNetwork covers connection and transport errors.
	ErrorTypeNetwork
	// ErrorTypeTimeout covers operation timeout errors.
	ErrorTypeTimeout
	// ErrorTypeNotFound covers entity or resource not found errors.
	ErrorTypeNotFound
	// ErrorTypeAuth covers authentication and authorization errors.
	ErrorTypeAuth
	// ErrorTypeAPI covers Home Assistant API errors.
	ErrorTypeAPI
	// ErrorTypeCanceled covers context cancellation errors.
	ErrorTypeCanceled
	// ErrorTypeConfig covers configuration loading and validation errors.
	ErrorTypeConfig
	// ErrorTypeBusy covers operations rejected because another one is in flight.
	ErrorTypeBusy
)

var typeNames = map[ErrorType]string{
	ErrorTypeUnknown:    "unknown",
	ErrorTypeValidation: "validation",
	ErrorTypeParsing:    "parsing",
	ErrorTypeInternal:   "internal",
	ErrorTypeNetwork:    "network",
	ErrorTypeTimeout:    "timeout",
	ErrorTypeNotFound:   "not_found",
	ErrorTypeAuth:       "auth",
	ErrorTypeAPI:        "api",
	ErrorTypeCanceled:   "canceled",
	ErrorTypeConfig:     "config",
	ErrorTypeBusy:       "busy",
}

// String returns the string representation of the error type.
func (t ErrorType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Error represents a typed error with additional context.
// It implements the error interface and supports error wrapping.
type Error struct {
	// Type is the category of the error for machine-readable classification.
	Type ErrorType
	// Code is an optional machine-readable error code (e.g., "fetch_in_progress").
	Code string
	// Message is the human-readable error message.
	Message string
	// Path is the location in the data (e.g., "entities[0].entity").
	Path string
	// Cause is the underlying error, if any.
	Cause error
	// Details contains additional context about the error.
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	var prefix string
	if e.Code != "" {
		prefix = fmt.Sprintf("[%s] ", e.Code)
	}
	if e.Path != "" {
		if e.Cause != nil {
			return fmt.Sprintf("%s%s: %s: %v", prefix, e.Path, e.Message, e.Cause)
		}
		return fmt.Sprintf("%s%s: %s", prefix, e.Path, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s%s: %v", prefix, e.Message, e.Cause)
	}
	return prefix + e.Message
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether the error matches the target error.
// It matches if the target is an *Error with the same Type and, when both
// carry one, the same Code.
func (e *Error) Is(target error) bool {
	var targetErr *Error
	if !errors.As(target, &targetErr) {
		return false
	}
	if e.Type != targetErr.Type {
		return false
	}
	if e.Code != "" && targetErr.Code != "" {
		return e.Code == targetErr.Code
	}
	return true
}

// WithDetails returns a copy of the error with additional details.
func (e *Error) WithDetails(details map[string]any) *Error {
	newErr := *e
	newErr.Details = make(map[string]any, len(e.Details)+len(details))
	for k, v := range e.Details {
		newErr.Details[k] = v
	}
	for k, v := range details {
		newErr.Details[k] = v
	}
	return &newErr
}

// WithCause returns a copy of the error with the specified cause.
func (e *Error) WithCause(cause error) *Error {
	newErr := *e
	newErr.Cause = cause
	return &newErr
}

// WithPath returns a copy of the error with the specified path.
func (e *Error) WithPath(path string) *Error {
	newErr := *e
	newErr.Path = path
	return &newErr
}

// WithMessage returns a copy of the error with a new message.
func (e *Error) WithMessage(msg string) *Error {
	newErr := *e
	newErr.Message = msg
	return &newErr
}

// WithMessagef returns a copy of the error with a formatted message.
func (e *Error) WithMessagef(format string, args ...any) *Error {
	newErr := *e
	newErr.Message = fmt.Sprintf(format, args...)
	return &newErr
}

// New creates a new Error with the specified type and message.
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Details: make(map[string]any),
	}
}

// Wrap wraps an existing error with a typed Error.
func Wrap(errType ErrorType, cause error, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Details: make(map[string]any),
	}
}

// Wrapf wraps an existing error with a typed Error and formatted message.
func Wrapf(errType ErrorType, cause error, format string, args ...any) *Error {
	return Wrap(errType, cause, fmt.Sprintf(format, args...))
}

// GetType extracts the ErrorType from an error.
// Returns ErrorTypeUnknown if the error is not an *Error.
func GetType(err error) ErrorType {
	var typedErr *Error
	if errors.As(err, &typedErr) {
		return typedErr.Type
	}
	return ErrorTypeUnknown
}

// GetCode extracts the error code from an error.
func GetCode(err error) string {
	var typedErr *Error
	if errors.As(err, &typedErr) {
		return typedErr.Code
	}
	return ""
}

// IsType checks if an error is of a specific ErrorType.
func IsType(err error, errType ErrorType) bool {
	return GetType(err) == errType
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

// IsConfig checks if an error is a configuration error.
func IsConfig(err error) bool {
	return IsType(err, ErrorTypeConfig)
}

// IsNetwork checks if an error is a network error.
func IsNetwork(err error) bool {
	return IsType(err, ErrorTypeNetwork)
}

// IsAuth checks if an error is an authentication error.
func IsAuth(err error) bool {
	return IsType(err, ErrorTypeAuth)
}

// IsAPI checks if an error is an API error.
func IsAPI(err error) bool {
	return IsType(err, ErrorTypeAPI)
}

// IsBusy checks if an error was caused by an overlapping operation.
func IsBusy(err error) bool {
	return IsType(err, ErrorTypeBusy)
}
