// cmd/suggester-client/main_test.go
package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startFakeServer(t *testing.T) string {
	t.Helper()
	srv := mcpserver.NewMCPServer("fake", "1.0.0")

	srv.AddTool(mcp.NewTool("health"), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("ok"), nil
	})
	srv.AddTool(mcp.NewTool("gpt_recommend",
		mcp.WithString("query", mcp.Required()),
		mcp.WithNumber("limit"),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		if cast.ToString(args["query"]) == "" {
			return mcp.NewToolResultError(`{"code":"INVALID_TOOL_ARGUMENTS"}`), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf(`[{"id":%d}]`, cast.ToInt(args["limit"]))), nil
	})

	ts := httptest.NewServer(mcpserver.NewStreamableHTTPServer(srv))
	t.Cleanup(ts.Close)
	return ts.URL
}

func testOptions(url string) options {
	return options{ServerURL: url + "/", Path: "/mcp", Query: "jacket", Limit: 2, Timeout: 5 * time.Second}
}

func TestRun_Recommend(t *testing.T) {
	url := startFakeServer(t)

	var out bytes.Buffer
	err := run(context.Background(), testOptions(url), &out)
	require.NoError(t, err)
	assert.Equal(t, "[{\"id\":2}]\n", out.String())
}

func TestRun_Health(t *testing.T) {
	url := startFakeServer(t)
	opts := testOptions(url)
	opts.Health = true

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), opts, &out))
	assert.Equal(t, "ok\n", out.String())
}

func TestRun_ToolError(t *testing.T) {
	url := startFakeServer(t)
	opts := testOptions(url)
	opts.Query = ""

	var out bytes.Buffer
	err := run(context.Background(), opts, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_TOOL_ARGUMENTS")
	assert.Empty(t, out.String())
}

func TestRun_ServerDown(t *testing.T) {
	ts := httptest.NewServer(nil)
	url := ts.URL
	ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := run(ctx, testOptions(url), &bytes.Buffer{})
	assert.Error(t, err)
}
