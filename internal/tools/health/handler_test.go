// internal/tools/health/handler_test.go
package health

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/common/observability"
	"github.com/AI-Web3-Studio/mcp-product-suggester/pkg/registry"
)

func TestHandler_Handle(t *testing.T) {
	reg, err := registry.Default()
	require.NoError(t, err)
	tool, ok := reg.Lookup(ToolName)
	require.True(t, ok)

	h := NewHandler(tool, observability.NewNoop())
	assert.Equal(t, ToolName, h.Tool().Name)

	req := mcp.CallToolRequest{}
	req.Params.Name = ToolName

	result, err := h.Handle(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, result.IsError)
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "ok", text.Text)
}
