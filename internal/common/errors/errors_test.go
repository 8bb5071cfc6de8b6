package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil", nil, ""},
		{"plain error", fmt.Errorf("boom"), ""},
		{"standard error", NewLLMEmptyReplyError(), ErrCodeLLMEmptyReply},
		{"wrapped", fmt.Errorf("call: %w", NewLLMCredentialsMissingError("monica", "MONICA_API_KEY")), ErrCodeLLMCredentialsMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestStandardError_Unwrap(t *testing.T) {
	err := NewLLMTimeoutError(30*time.Second, context.DeadlineExceeded)

	assert.True(t, stderrors.Is(err, context.DeadlineExceeded))
	assert.True(t, IsRetryable(err))
	assert.Contains(t, err.Error(), "LLM_TIMEOUT")
}

func TestRetryPolicy(t *testing.T) {
	retryable := []ErrorCode{
		ErrCodeLLMRequestFailed,
		ErrCodeLLMBadStatus,
		ErrCodeLLMDecodeFailed,
		ErrCodeLLMEmptyReply,
		ErrCodeLLMTimeout,
	}
	for _, code := range retryable {
		assert.True(t, IsRetryableErrorCode(code), code)
	}

	for _, code := range []ErrorCode{ErrCodeLLMCredentialsMissing, ErrCodeAdmissionFailed, ErrCodeInvalidToolArguments} {
		assert.False(t, IsRetryableErrorCode(code), code)
	}

	assert.False(t, IsRetryable(NewLLMCredentialsMissingError("openai", "OPENAI_API_KEY")))
	assert.False(t, IsRetryable(fmt.Errorf("plain")))
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "AI", GetErrorCategory(ErrCodeLLMBadStatus))
	assert.Equal(t, "AI", GetErrorCategory(ErrCodeAdmissionFailed))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeCatalogLoadFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidToolArguments))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestBadStatusMetadata(t *testing.T) {
	err := NewLLMBadStatusError(503, nil)
	assert.Equal(t, 503, err.Metadata["statusCode"])
	assert.Equal(t, "status: 503", err.Details)
}

type recordingLogger struct {
	messages []map[string]interface{}
}

func (r *recordingLogger) Error(msg string, fields map[string]interface{}) {
	r.messages = append(r.messages, fields)
}

func TestHandleToolError(t *testing.T) {
	log := &recordingLogger{}
	h := NewErrorHandler(log)

	res := h.HandleToolError("gpt_recommend", "req-1", NewInvalidToolArgumentsError("gpt_recommend", "query is required"))
	require.NotNil(t, res)
	assert.True(t, res.IsError)
	require.Len(t, res.Content, 1)

	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var payload ToolError
	require.NoError(t, json.Unmarshal([]byte(text.Text), &payload))
	assert.Equal(t, "INVALID_TOOL_ARGUMENTS", payload.Code)
	assert.Equal(t, "VALIDATION", payload.Category)

	require.Len(t, log.messages, 1)
	assert.Equal(t, "req-1", log.messages[0]["requestId"])
}

func TestHandleToolError_NormalizesPlainErrors(t *testing.T) {
	h := NewErrorHandler(&recordingLogger{})

	res := h.HandleToolError("health", "", fmt.Errorf("unexpected"))
	text := res.Content[0].(mcp.TextContent)
	assert.Contains(t, text.Text, "INTERNAL_ERROR")
}
