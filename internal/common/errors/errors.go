// Package errors provides the error taxonomy shared by the acquisition pipeline.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeConfiguration     ErrorCode = "CONFIGURATION_ERROR"
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeTransientProvider ErrorCode = "TRANSIENT_PROVIDER_ERROR"
	ErrCodeProviderRejected  ErrorCode = "PROVIDER_REQUEST_REJECTED"
	ErrCodeQuotaExceeded     ErrorCode = "QUOTA_EXCEEDED"
	ErrCodeLoggingFailure    ErrorCode = "LOGGING_FAILURE"
	ErrCodeValidationFailed  ErrorCode = "VALIDATION_FAILED"
	ErrCodeStoreFailure      ErrorCode = "STORE_FAILURE"
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is reports whether target is a StandardError carrying the same code,
// so sentinel values such as ErrQuotaExceeded work with errors.Is.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMetadata returns the error with key=value merged into its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// Sentinels for errors.Is comparisons.
var (
	ErrConfiguration     = &StandardError{Code: ErrCodeConfiguration}
	ErrNotFound          = &StandardError{Code: ErrCodeNotFound}
	ErrTransientProvider = &StandardError{Code: ErrCodeTransientProvider}
	ErrProviderRejected  = &StandardError{Code: ErrCodeProviderRejected}
	ErrQuotaExceeded     = &StandardError{Code: ErrCodeQuotaExceeded}
	ErrLoggingFailure    = &StandardError{Code: ErrCodeLoggingFailure}
	ErrValidationFailed  = &StandardError{Code: ErrCodeValidationFailed}
	ErrStoreFailure      = &StandardError{Code: ErrCodeStoreFailure}
)

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewConfigurationError creates a non-retryable error for missing or rejected credentials.
func NewConfigurationError(details string) *StandardError {
	return newError(ErrCodeConfiguration, "Provider configuration error", details, false, nil)
}

// NewNotFoundError creates a non-retryable error for a missing resource.
func NewNotFoundError(what string) *StandardError {
	return newError(ErrCodeNotFound, "Resource not found", what, false, nil)
}

// NewTransientProviderError creates a retryable error for 429, 5xx and network failures.
func NewTransientProviderError(attempts int, err error) *StandardError {
	details := fmt.Sprintf("attempts: %d", attempts)
	if err != nil {
		details = fmt.Sprintf("attempts: %d, error: %s", attempts, err.Error())
	}
	return newError(ErrCodeTransientProvider, "Property provider temporarily unavailable", details, true, err).
		WithMetadata("attempts", attempts)
}

// NewProviderRejectedError creates a non-retryable error for unexpected provider responses.
func NewProviderRejectedError(statusCode int, body string) *StandardError {
	return newError(ErrCodeProviderRejected, "Property provider rejected the request",
		fmt.Sprintf("status: %d, body: %s", statusCode, truncate(body, 256)), false, nil).
		WithMetadata("statusCode", statusCode)
}

// NewQuotaExceededError creates a non-retryable error for an exhausted monthly quota.
func NewQuotaExceededError(used, limit int) *StandardError {
	return newError(ErrCodeQuotaExceeded, "Monthly API limit reached",
		fmt.Sprintf("used: %d, limit: %d", used, limit), false, nil).
		WithMetadata("used", used).
		WithMetadata("limit", limit)
}

// NewLoggingFailureError wraps a usage-log write failure. It is only ever logged.
func NewLoggingFailureError(err error) *StandardError {
	return newError(ErrCodeLoggingFailure, "Failed to log usage", err.Error(), false, err)
}

// NewValidationError creates a non-retryable input validation error.
func NewValidationError(details string) *StandardError {
	return newError(ErrCodeValidationFailed, "Request validation failed", details, false, nil)
}

// NewStoreFailureError creates a retryable error for a failing external store.
func NewStoreFailureError(operation string, err error) *StandardError {
	return newError(ErrCodeStoreFailure, "Store operation failed",
		fmt.Sprintf("operation: %s, error: %s", operation, err.Error()), true, err)
}

// CodeOf returns the code of the first StandardError in err's chain,
// or ErrCodeInternal when there is none.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// IsRetryable reports whether err carries a retryable StandardError.
func IsRetryable(err error) bool {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Retryable
	}
	return false
}

// GetErrorCategory returns a coarse category used as a metrics label.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "PROVIDER"), code == ErrCodeNotFound:
		return "PROVIDER"
	case strings.Contains(codeStr, "CONFIGURATION"):
		return "CONFIGURATION"
	case strings.Contains(codeStr, "QUOTA"):
		return "QUOTA"
	case strings.Contains(codeStr, "STORE"), strings.Contains(codeStr, "LOGGING"):
		return "STORE"
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
