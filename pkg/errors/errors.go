package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// Error codes
const (
	CodeAppError      = "APP_ERROR"
	CodeConfiguration = "CONFIGURATION_ERROR"
	CodeValidation    = "VALIDATION_ERROR"
	CodeUpstream      = "UPSTREAM_ERROR"
	CodeTransport     = "TRANSPORT_ERROR"
	CodeParse         = "PARSE_ERROR"
	CodeNotFound      = "NOT_FOUND_ERROR"
	CodeTimeout       = "TIMEOUT_ERROR"
	CodeConflict      = "CONFLICT_ERROR"
	CodeCache         = "CACHE_ERROR"
	CodeService       = "SERVICE_ERROR"
)

// ExcerptLimit bounds response bodies carried inside errors.
const ExcerptLimit = 300

type AppError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// ErrorCode and HTTPStatus are promoted to every typed error below, so
// KindOf/StatusOf can find them through errors.As on an interface target.
func (e *AppError) ErrorCode() string {
	return e.Code
}

func (e *AppError) HTTPStatus() int {
	return e.StatusCode
}

func (e *AppError) ErrorMessage() string {
	return e.Message
}

func NewAppError(message, code string, statusCode int, context map[string]any) *AppError {
	return &AppError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Context:    context,
	}
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

type ConfigurationError struct {
	*AppError
	Missing []string
}

func NewConfigurationError(message string, missing []string) *ConfigurationError {
	return &ConfigurationError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeConfiguration,
			StatusCode: 500,
			Context: map[string]any{
				"missing": missing,
			},
		},
		Missing: missing,
	}
}

type ValidationError struct {
	*AppError
	Field string
	Value interface{}
}

func NewValidationError(message, field string, value interface{}) *ValidationError {
	return &ValidationError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeValidation,
			StatusCode: 400,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

// UpstreamError reports a collaborator that answered with a non-success status.
type UpstreamError struct {
	*AppError
	Collaborator string
	Body         string
}

func NewUpstreamError(collaborator string, statusCode int, body string) *UpstreamError {
	excerpt := Excerpt(body)
	return &UpstreamError{
		AppError: &AppError{
			Message:    fmt.Sprintf("%s error: HTTP %d", collaborator, statusCode),
			Code:       CodeUpstream,
			StatusCode: statusCode,
			Context: map[string]any{
				"collaborator": collaborator,
				"body":         excerpt,
			},
		},
		Collaborator: collaborator,
		Body:         excerpt,
	}
}

type TransportError struct {
	*AppError
	Collaborator string
}

func NewTransportError(collaborator string, cause error) *TransportError {
	return &TransportError{
		AppError: &AppError{
			Message:    fmt.Sprintf("network error calling %s", collaborator),
			Code:       CodeTransport,
			StatusCode: 502,
			Context: map[string]any{
				"collaborator": collaborator,
			},
			Cause: cause,
		},
		Collaborator: collaborator,
	}
}

type ParseError struct {
	*AppError
	Excerpt string
}

func NewParseError(message, body string, cause error) *ParseError {
	excerpt := Excerpt(body)
	return &ParseError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeParse,
			StatusCode: 502,
			Context: map[string]any{
				"body": excerpt,
			},
			Cause: cause,
		},
		Excerpt: excerpt,
	}
}

type NotFoundError struct {
	*AppError
	Resource string
	Key      string
}

func NewNotFoundError(resource, key string) *NotFoundError {
	return &NotFoundError{
		AppError: &AppError{
			Message:    fmt.Sprintf("%s not found", resource),
			Code:       CodeNotFound,
			StatusCode: 404,
			Context: map[string]any{
				"resource": resource,
				"key":      key,
			},
		},
		Resource: resource,
		Key:      key,
	}
}

type TimeoutError struct {
	*AppError
	Operation string
	After     time.Duration
}

func NewTimeoutError(operation string, after time.Duration, cause error) *TimeoutError {
	return &TimeoutError{
		AppError: &AppError{
			Message:    fmt.Sprintf("%s timed out after %s", operation, after),
			Code:       CodeTimeout,
			StatusCode: 504,
			Context: map[string]any{
				"operation": operation,
				"after":     after.String(),
			},
			Cause: cause,
		},
		Operation: operation,
		After:     after,
	}
}

// ConflictError is returned when an operation was already performed for the same key.
type ConflictError struct {
	*AppError
	Key string
}

func NewConflictError(message, key string) *ConflictError {
	return &ConflictError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeConflict,
			StatusCode: 409,
			Context: map[string]any{
				"key": key,
			},
		},
		Key: key,
	}
}

type CacheError struct {
	*AppError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeCache,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

type ServiceError struct {
	*AppError
	Service   string
	Operation string
}

func NewServiceError(message, service, operation string, cause error) *ServiceError {
	return &ServiceError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeService,
			StatusCode: 500,
			Context: map[string]any{
				"service":   service,
				"operation": operation,
			},
			Cause: cause,
		},
		Service:   service,
		Operation: operation,
	}
}

type coded interface {
	error
	ErrorCode() string
	HTTPStatus() int
	ErrorMessage() string
}

// KindOf returns the error code of the outermost AppError in the chain, or
// CodeAppError for errors outside the taxonomy.
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	var c coded
	if stderrors.As(err, &c) {
		return c.ErrorCode()
	}
	return CodeAppError
}

// StatusOf returns the HTTP status attached to err, 500 when none is.
func StatusOf(err error) int {
	var c coded
	if stderrors.As(err, &c) && c.HTTPStatus() > 0 {
		return c.HTTPStatus()
	}
	return 500
}

// MessageOf returns the message of the outermost AppError without its cause
// chain, or err.Error() for errors outside the taxonomy.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var c coded
	if stderrors.As(err, &c) {
		return c.ErrorMessage()
	}
	return err.Error()
}

func Is(err error, code string) bool {
	return KindOf(err) == code
}

// Excerpt trims body to ExcerptLimit bytes without splitting a rune.
func Excerpt(body string) string {
	body = strings.TrimSpace(body)
	if len(body) <= ExcerptLimit {
		return body
	}
	cut := ExcerptLimit
	for cut > 0 && !isRuneStart(body[cut]) {
		cut--
	}
	return body[:cut]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
