package engine

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorClass represents the classification of an error for retry and recovery logic.
type ErrorClass string

const (
	// ErrorClassTransient indicates the request never reached a response.
	// Examples: connection refused, DNS failure, transport timeout.
	ErrorClassTransient ErrorClass = "transient"

	// ErrorClassThrottled indicates the remote service asked us to slow down.
	// This is the only class the synchronizer retries, with exponential backoff.
	ErrorClassThrottled ErrorClass = "throttled"

	// ErrorClassPermanent indicates a non-recoverable error.
	// Examples: malformed label, unknown variant, non-429 HTTP status.
	ErrorClassPermanent ErrorClass = "permanent"
)

// Error codes, one per error kind surfaced by the engine.
const (
	ErrCodeTransport          = "TRANSPORT_ERROR"
	ErrCodeRemoteHTTP         = "REMOTE_HTTP_ERROR"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeUnknownVariant     = "UNKNOWN_VARIANT"
	ErrCodeMaxRetriesExceeded = "MAX_RETRIES_EXCEEDED"
)

// Operations recorded on errors.
const (
	OperationPlace     = "place"
	OperationRemove    = "remove"
	OperationFetchGoal = "fetch_goal"
)

// Sentinel errors for use with errors.Is. Matching is by class and code.
var (
	ErrTransport          = &EngineError{Class: ErrorClassTransient, Code: ErrCodeTransport}
	ErrRemoteHTTP         = &EngineError{Class: ErrorClassPermanent, Code: ErrCodeRemoteHTTP}
	ErrRateLimited        = &EngineError{Class: ErrorClassThrottled, Code: ErrCodeRateLimited}
	ErrValidation         = &EngineError{Class: ErrorClassPermanent, Code: ErrCodeValidation}
	ErrUnknownVariant     = &EngineError{Class: ErrorClassPermanent, Code: ErrCodeUnknownVariant}
	ErrMaxRetriesExceeded = &EngineError{Class: ErrorClassPermanent, Code: ErrCodeMaxRetriesExceeded}
)

// EngineError represents a classified error with context.
// nolint:revive // EngineError is intentionally named to distinguish from standard errors
type EngineError struct {
	// Class is the error classification for retry logic.
	Class ErrorClass `json:"class"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Code identifies the error kind for programmatic handling.
	Code string `json:"code,omitempty"`

	// Status is the HTTP status returned by the remote service, or 0.
	Status int `json:"status,omitempty"`

	// Resource is the variant involved, if applicable.
	Resource string `json:"resource,omitempty"`

	// Operation is the operation being performed when the error occurred.
	Operation string `json:"operation,omitempty"`

	// Cell is the grid position, formatted as "(row,column)".
	Cell string `json:"cell,omitempty"`

	// Attempts is the number of calls made before giving up.
	Attempts int `json:"attempts,omitempty"`

	// Err is the underlying error that caused this error.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Class, e.Message)

	var ctx string
	add := func(k, v string) {
		if ctx != "" {
			ctx += ", "
		}
		ctx += k + "=" + v
	}
	if e.Resource != "" {
		add("variant", e.Resource)
	}
	if e.Cell != "" {
		add("cell", e.Cell)
	}
	if e.Operation != "" {
		add("operation", e.Operation)
	}
	if e.Status != 0 {
		add("status", fmt.Sprint(e.Status))
	}
	if e.Attempts > 0 {
		add("attempts", fmt.Sprint(e.Attempts))
	}
	if ctx != "" {
		msg += " (" + ctx + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection.
func (e *EngineError) Unwrap() error {
	return e.Err
}

// Is implements error equality checking for errors.Is.
func (e *EngineError) Is(target error) bool {
	t, ok := target.(*EngineError)
	if !ok {
		return false
	}
	return e.Class == t.Class && e.Code == t.Code
}

// NewTransportError wraps a network-level failure.
func NewTransportError(message string, err error) *EngineError {
	return &EngineError{
		Class:   ErrorClassTransient,
		Code:    ErrCodeTransport,
		Message: message,
		Err:     err,
	}
}

// NewRemoteHTTPError creates an error for a non-2xx response. A 429 status
// yields a throttled error so callers only need one constructor.
func NewRemoteHTTPError(status int, err error) *EngineError {
	if status == http.StatusTooManyRequests {
		return NewRateLimitedError(err)
	}
	return &EngineError{
		Class:   ErrorClassPermanent,
		Code:    ErrCodeRemoteHTTP,
		Message: fmt.Sprintf("remote service returned %d %s", status, http.StatusText(status)),
		Status:  status,
		Err:     err,
	}
}

// NewRateLimitedError creates a throttled error for a 429 response.
func NewRateLimitedError(err error) *EngineError {
	return &EngineError{
		Class:   ErrorClassThrottled,
		Code:    ErrCodeRateLimited,
		Message: "rate limited by remote service",
		Status:  http.StatusTooManyRequests,
		Err:     err,
	}
}

// NewValidationError creates an error for a malformed label or placement command.
func NewValidationError(format string, args ...interface{}) *EngineError {
	return &EngineError{
		Class:   ErrorClassPermanent,
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewUnknownVariantError creates an error for a name with no registered variant.
func NewUnknownVariantError(name string) *EngineError {
	return &EngineError{
		Class:    ErrorClassPermanent,
		Code:     ErrCodeUnknownVariant,
		Message:  fmt.Sprintf("no variant registered for name %q", name),
		Resource: name,
	}
}

// NewMaxRetriesExceededError creates the terminal error raised after the
// attempt budget is spent on rate-limited responses.
func NewMaxRetriesExceededError(attempts int, last error) *EngineError {
	return &EngineError{
		Class:    ErrorClassPermanent,
		Code:     ErrCodeMaxRetriesExceeded,
		Message:  "max retries exceeded for rate-limited requests",
		Attempts: attempts,
		Err:      last,
	}
}

// WithResource adds variant context to an error.
func (e *EngineError) WithResource(variant string) *EngineError {
	e.Resource = variant
	return e
}

// WithOperation adds operation context to an error.
func (e *EngineError) WithOperation(operation string) *EngineError {
	e.Operation = operation
	return e
}

// WithCell adds the grid position to an error.
func (e *EngineError) WithCell(row, column int) *EngineError {
	e.Cell = fmt.Sprintf("(%d,%d)", row, column)
	return e
}

// WithAttempts records how many calls were made.
func (e *EngineError) WithAttempts(n int) *EngineError {
	e.Attempts = n
	return e
}

func hasCode(err error, code string) bool {
	var e *EngineError
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsRateLimited returns true if the error is a rate-limit signal.
func IsRateLimited(err error) bool {
	return hasCode(err, ErrCodeRateLimited)
}

// IsTransport returns true if the error is a network-level failure.
func IsTransport(err error) bool {
	return hasCode(err, ErrCodeTransport)
}

// IsValidation returns true if the error is a validation error.
func IsValidation(err error) bool {
	return hasCode(err, ErrCodeValidation)
}

// IsUnknownVariant returns true if a label resolved to no registered variant.
func IsUnknownVariant(err error) bool {
	return hasCode(err, ErrCodeUnknownVariant)
}

// IsMaxRetriesExceeded returns true if the attempt budget was exhausted.
func IsMaxRetriesExceeded(err error) bool {
	return hasCode(err, ErrCodeMaxRetriesExceeded)
}

// IsRetryable returns true if the synchronizer should retry after backoff.
// Only throttled errors are retryable.
func IsRetryable(err error) bool {
	var e *EngineError
	if errors.As(err, &e) {
		return e.Class == ErrorClassThrottled
	}
	return false
}

// StatusCode returns the remote HTTP status carried by err, if any.
func StatusCode(err error) (int, bool) {
	var e *EngineError
	if errors.As(err, &e) && e.Status != 0 {
		return e.Status, true
	}
	return 0, false
}
