// internal/common/errors/handler.go
package errors

import (
	"encoding/json"
	stderrors "errors"

	"github.com/mark3labs/mcp-go/mcp"
)

// ErrorHandler turns tool failures into MCP error results.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleToolError logs err and returns a result with IsError set.
// The text content is the JSON encoded ToolError.
func (h *ErrorHandler) HandleToolError(tool, requestID string, err error) *mcp.CallToolResult {
	stdErr := h.normalizeError(err)
	toolErr := ConvertToToolError(stdErr)

	h.logError(tool, requestID, stdErr)

	payload, marshalErr := json.Marshal(toolErr)
	if marshalErr != nil {
		return mcp.NewToolResultError(toolErr.Message)
	}
	return mcp.NewToolResultError(string(payload))
}

// normalizeError ensures we always have a StandardError
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

func (h *ErrorHandler) logError(tool, requestID string, stdErr *StandardError) {
	h.logger.Error("Tool call failed", map[string]interface{}{
		"tool":          tool,
		"requestId":     requestID,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
	})
}
