// Package errors provides standardized error handling for the recommendation pipeline.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeLLMCredentialsMissing ErrorCode = "LLM_CREDENTIALS_MISSING"
	ErrCodeLLMRequestFailed      ErrorCode = "LLM_REQUEST_FAILED"
	ErrCodeLLMBadStatus          ErrorCode = "LLM_BAD_STATUS"
	ErrCodeLLMDecodeFailed       ErrorCode = "LLM_DECODE_FAILED"
	ErrCodeLLMEmptyReply         ErrorCode = "LLM_EMPTY_REPLY"
	ErrCodeLLMTimeout            ErrorCode = "LLM_TIMEOUT"

	ErrCodeAdmissionFailed ErrorCode = "ADMISSION_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeCatalogLoadFailed        ErrorCode = "CATALOG_LOAD_FAILED"

	ErrCodeInvalidToolArguments ErrorCode = "INVALID_TOOL_ARGUMENTS"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
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
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

// NewLLMCredentialsMissingError is returned before any request is sent.
func NewLLMCredentialsMissingError(provider, keyEnv string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMCredentialsMissing,
		Message:   "LLM API key is not configured",
		Details:   fmt.Sprintf("provider: %s, key: %s", provider, keyEnv),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMRequestFailedError creates a retryable transport error.
func NewLLMRequestFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMRequestFailed,
		Message:   "LLM request failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewLLMBadStatusError creates a retryable error for a non-2xx response.
func NewLLMBadStatusError(statusCode int, err error) *StandardError {
	details := fmt.Sprintf("status: %d", statusCode)
	if err != nil {
		details = fmt.Sprintf("status: %d, error: %s", statusCode, err.Error())
	}
	return &StandardError{
		Code:      ErrCodeLLMBadStatus,
		Message:   "LLM endpoint returned a non-success status",
		Details:   details,
		Retryable: true,
		Metadata:  map[string]interface{}{"statusCode": statusCode},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewLLMDecodeFailedError creates a retryable error for an unreadable response body.
func NewLLMDecodeFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMDecodeFailed,
		Message:   "LLM response could not be decoded",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewLLMEmptyReplyError creates a retryable error for a response without choices.
func NewLLMEmptyReplyError() *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMEmptyReply,
		Message:   "LLM response contained no choices",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMTimeoutError creates a retryable attempt timeout error.
func NewLLMTimeoutError(timeout time.Duration, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMTimeout,
		Message:   "LLM call timeout",
		Details:   fmt.Sprintf("attempt exceeded %s", timeout),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewAdmissionFailedError is returned when a concurrency slot cannot be obtained.
func NewAdmissionFailedError(backend string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAdmissionFailed,
		Message:   "Could not acquire LLM concurrency slot",
		Details:   fmt.Sprintf("backend: %s, error: %s", backend, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewCatalogLoadFailedError wraps query and scan failures of the product catalog.
func NewCatalogLoadFailedError(table string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogLoadFailed,
		Message:   "Product catalog could not be loaded",
		Details:   fmt.Sprintf("table: %s, error: %s", table, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewInvalidToolArgumentsError creates a non-retryable argument validation error.
func NewInvalidToolArgumentsError(tool, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidToolArguments,
		Message:   fmt.Sprintf("Invalid arguments for tool '%s'", tool),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError normalizes an arbitrary error.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 3. Tool Error Payload
// ==========================

// ToolError is the client-facing shape of a failed tool call.
type ToolError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	Category  string `json:"category"`
	Retryable bool   `json:"retryable"`
	Timestamp string `json:"timestamp"`
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("ToolError[%s]: %s", e.Code, e.Message)
}

// ConvertToToolError converts a StandardError into the payload returned to MCP clients.
func ConvertToToolError(stdErr *StandardError) *ToolError {
	return &ToolError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Category:  GetErrorCategory(stdErr.Code),
		Retryable: stdErr.Retryable,
		Timestamp: stdErr.Timestamp.Format(time.RFC3339),
	}
}

// ==========================
// 4. Utility Functions
// ==========================

// GetRetryCount returns how many extra attempts an error code warrants.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeLLMRequestFailed,
		ErrCodeLLMBadStatus,
		ErrCodeLLMDecodeFailed,
		ErrCodeLLMEmptyReply,
		ErrCodeLLMTimeout:
		return 2 // three attempts in total

	case ErrCodeDatabaseConnectionFailed:
		return 1

	default:
		return 0
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// IsRetryable reports whether err carries a retryable StandardError.
func IsRetryable(err error) bool {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Retryable
	}
	return false
}

// CodeOf extracts the error code from err, or "" when err is not a StandardError.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "LLM") || strings.HasPrefix(codeStr, "ADMISSION"):
		return "AI"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "CATALOG"):
		return "DATABASE"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
