package errors

import (
	"sync"
)

// ErrorDefinition holds the definition of a registered error.
type ErrorDefinition struct {
	// Code is the unique identifier for this error.
	Code string
	// Type is the category of the error.
	Type ErrorType
	// Message is the default message for this error.
	Message string
}

// Registry holds registered error definitions for consistent error creation.
type Registry struct {
	mu          sync.RWMutex
	definitions map[string]ErrorDefinition
}

// NewRegistry creates a new error registry.
func NewRegistry() *Registry {
	return &Registry{
		definitions: make(map[string]ErrorDefinition),
	}
}

// Register adds an error definition to the registry.
// If an error with the same code already exists, it will be overwritten.
func (r *Registry) Register(def ErrorDefinition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.definitions[def.Code] = def
}

// Get retrieves an error definition by code.
// Returns nil if not found.
func (r *Registry) Get(code string) *ErrorDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if def, ok := r.definitions[code]; ok {
		return &def
	}
	return nil
}

// Create creates a new Error from a registered definition.
// Unregistered codes produce an internal error carrying the code.
func (r *Registry) Create(code string) *Error {
	def := r.Get(code)
	if def == nil {
		return &Error{
			Type:    ErrorTypeInternal,
			Code:    code,
			Message: "unregistered error code",
			Details: make(map[string]any),
		}
	}
	return &Error{
		Type:    def.Type,
		Code:    def.Code,
		Message: def.Message,
		Details: make(map[string]any),
	}
}

// DefaultRegistry is the global error registry.
var DefaultRegistry = NewRegistry()

// Register adds an error definition to the default registry.
func Register(def ErrorDefinition) {
	DefaultRegistry.Register(def)
}

// Create creates a new Error from the default registry.
func Create(code string) *Error {
	return DefaultRegistry.Create(code)
}

// Error codes used across ha-history-go.
const (
	// Connection errors
	CodeConnectionClosed    = "connection_closed"
	CodeConnectionFailed    = "connection_failed"
	CodeAuthFailed          = "auth_failed"
	CodeMessageSendFailed   = "message_send_failed"
	CodeMessageMarshalError = "message_marshal_error"

	// Request errors
	CodeRequestCanceled = "request_canceled"
	CodeRequestFailed   = "request_failed"
	CodeFetchInProgress = "fetch_in_progress"
	CodeAPIError        = "api_error"

	// Input errors
	CodeMissingArgument = "missing_argument"
	CodeInvalidArgument = "invalid_argument"
	CodeInvalidJSON     = "invalid_json"
	CodeInvalidYAML     = "invalid_yaml"

	// Configuration errors
	CodeInvalidConfig = "invalid_config"
	CodeNoEntities    = "no_entities"
)

func init() {
	for _, def := range []ErrorDefinition{
		{Code: CodeConnectionClosed, Type: ErrorTypeNetwork, Message: "connection closed"},
		{Code: CodeConnectionFailed, Type: ErrorTypeNetwork, Message: "failed to connect"},
		{Code: CodeAuthFailed, Type: ErrorTypeAuth, Message: "authentication failed"},
		{Code: CodeMessageSendFailed, Type: ErrorTypeNetwork, Message: "failed to send message"},
		{Code: CodeMessageMarshalError, Type: ErrorTypeParsing, Message: "failed to marshal message"},
		{Code: CodeRequestCanceled, Type: ErrorTypeCanceled, Message: "request canceled"},
		{Code: CodeRequestFailed, Type: ErrorTypeAPI, Message: "request failed"},
		{Code: CodeFetchInProgress, Type: ErrorTypeBusy, Message: "a fetch is already in progress"},
		{Code: CodeAPIError, Type: ErrorTypeAPI, Message: "API error"},
		{Code: CodeMissingArgument, Type: ErrorTypeValidation, Message: "missing required argument"},
		{Code: CodeInvalidArgument, Type: ErrorTypeValidation, Message: "invalid argument"},
		{Code: CodeInvalidJSON, Type: ErrorTypeParsing, Message: "invalid JSON"},
		{Code: CodeInvalidYAML, Type: ErrorTypeParsing, Message: "invalid YAML"},
		{Code: CodeInvalidConfig, Type: ErrorTypeConfig, Message: "invalid configuration"},
		{Code: CodeNoEntities, Type: ErrorTypeConfig, Message: "you must include at least one entity"},
	} {
		Register(def)
	}
}

// Convenience factory functions for common errors.

// ErrConnectionClosed creates a connection closed error.
func ErrConnectionClosed(cause error) *Error {
	return Create(CodeConnectionClosed).WithCause(cause)
}

// ErrConnectionFailed creates a connection failed error.
func ErrConnectionFailed(cause error) *Error {
	return Create(CodeConnectionFailed).WithCause(cause)
}

// ErrAuthFailed creates an authentication failed error.
func ErrAuthFailed(message string) *Error {
	return Create(CodeAuthFailed).WithMessage(message)
}

// ErrMessageSendFailed creates a message send error.
func ErrMessageSendFailed(cause error) *Error {
	return Create(CodeMessageSendFailed).WithCause(cause)
}

// ErrMessageMarshalFailed creates a message marshal error.
func ErrMessageMarshalFailed(cause error) *Error {
	return Create(CodeMessageMarshalError).WithCause(cause)
}

// ErrRequestCanceled creates a request canceled error.
func ErrRequestCanceled(cause error) *Error {
	return Create(CodeRequestCanceled).WithCause(cause)
}

// ErrRequestFailed creates a request failed error for an HTTP status or transport failure.
func ErrRequestFailed(message string, cause error) *Error {
	return Create(CodeRequestFailed).WithMessage(message).WithCause(cause)
}

// ErrFetchInProgress is returned when a fetch is dropped because another one is running.
func ErrFetchInProgress() *Error {
	return Create(CodeFetchInProgress)
}

// ErrAPIError creates an API error with the given Home Assistant code and message.
func ErrAPIError(code, message string) *Error {
	return Create(CodeAPIError).WithMessage(message).WithDetails(map[string]any{
		"ha_code": code,
	})
}

// ErrMissingArgument creates a missing argument error.
func ErrMissingArgument(usage string) *Error {
	return Create(CodeMissingArgument).WithMessagef("missing argument: %s", usage)
}

// ErrInvalidArgument creates an invalid argument error.
func ErrInvalidArgument(message string) *Error {
	return Create(CodeInvalidArgument).WithMessage(message)
}

// ErrInvalidJSON creates an invalid JSON error.
func ErrInvalidJSON(cause error) *Error {
	return Create(CodeInvalidJSON).WithCause(cause)
}

// ErrInvalidYAML creates an invalid YAML error.
func ErrInvalidYAML(cause error) *Error {
	return Create(CodeInvalidYAML).WithCause(cause)
}

// ErrInvalidConfig creates a configuration validation error for a config path.
func ErrInvalidConfig(path, message string) *Error {
	return Create(CodeInvalidConfig).WithPath(path).WithMessage(message)
}

// ErrNoEntities creates the error raised for a graph configured without entities.
func ErrNoEntities() *Error {
	return Create(CodeNoEntities)
}
