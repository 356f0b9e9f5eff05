package errors

import (
	"fmt"
)

// ErrorCode classifies responder failures so API handlers and the
// email log can report a stable code.
type ErrorCode string

const (
	// ErrCodeUnauthorized indicates authentication failure.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeRateLimitExceeded indicates rate limit has been exceeded.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeInvalidTimezone indicates an unrecognized IANA timezone.
	ErrCodeInvalidTimezone ErrorCode = "INVALID_TIMEZONE"
	// ErrCodeMailSourceUnavailable indicates the mail source cannot be reached.
	ErrCodeMailSourceUnavailable ErrorCode = "MAIL_SOURCE_UNAVAILABLE"
	// ErrCodeCalendarUnavailable indicates a calendar source cannot be reached.
	ErrCodeCalendarUnavailable ErrorCode = "CALENDAR_UNAVAILABLE"
	// ErrCodeDraftFailed indicates the reply draft could not be saved.
	ErrCodeDraftFailed ErrorCode = "DRAFT_FAILED"
	// ErrCodeLLMUnavailable indicates the LLM service is not available.
	ErrCodeLLMUnavailable ErrorCode = "LLM_UNAVAILABLE"
	// ErrCodeContextCanceled indicates the operation was canceled.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// ResponderError is a structured error carrying a stable code.
type ResponderError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *ResponderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ResponderError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error.
func (e *ResponderError) WithContext(key string, value interface{}) *ResponderError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// GetCode returns the error code.
func (e *ResponderError) GetCode() ErrorCode {
	return e.Code
}

// Convenience constructors for common error types.

// Unauthorized creates an unauthorized error.
func Unauthorized(msg string) *ResponderError {
	return &ResponderError{Code: ErrCodeUnauthorized, Message: msg}
}

// RateLimitExceeded creates a rate limit exceeded error.
func RateLimitExceeded(msg string) *ResponderError {
	return &ResponderError{Code: ErrCodeRateLimitExceeded, Message: msg}
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *ResponderError {
	return &ResponderError{Code: ErrCodeInvalidArgument, Message: msg}
}

// InvalidTimezone creates an invalid timezone error.
func InvalidTimezone(timezone string, cause error) *ResponderError {
	return &ResponderError{
		Code:    ErrCodeInvalidTimezone,
		Message: fmt.Sprintf("invalid timezone: %s", timezone),
		Cause:   cause,
	}
}

// MailSourceUnavailable creates a mail source unavailable error.
func MailSourceUnavailable(msg string, cause error) *ResponderError {
	return &ResponderError{Code: ErrCodeMailSourceUnavailable, Message: msg, Cause: cause}
}

// CalendarUnavailable creates a calendar unavailable error.
func CalendarUnavailable(msg string, cause error) *ResponderError {
	return &ResponderError{Code: ErrCodeCalendarUnavailable, Message: msg, Cause: cause}
}

// DraftFailed creates a draft failed error.
func DraftFailed(msg string, cause error) *ResponderError {
	return &ResponderError{Code: ErrCodeDraftFailed, Message: msg, Cause: cause}
}

// LLMUnavailable creates an LLM unavailable error.
func LLMUnavailable(msg string) *ResponderError {
	return &ResponderError{Code: ErrCodeLLMUnavailable, Message: msg}
}

// ContextCanceled creates a context canceled error.
func ContextCanceled(cause error) *ResponderError {
	return &ResponderError{Code: ErrCodeContextCanceled, Message: "operation canceled", Cause: cause}
}

// Timeout creates a timeout error.
func Timeout(msg string) *ResponderError {
	return &ResponderError{Code: ErrCodeTimeout, Message: msg}
}

// Wrap wraps an existing error with additional context.
func Wrap(cause error, code ErrorCode, msg string) *ResponderError {
	return &ResponderError{Code: code, Message: msg, Cause: cause}
}

// IsCode checks if an error is of a specific code.
func IsCode(err error, code ErrorCode) bool {
	if respErr, ok := err.(*ResponderError); ok {
		return respErr.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not a ResponderError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	if respErr, ok := err.(*ResponderError); ok {
		return respErr.Code
	}
	return defaultCode
}
