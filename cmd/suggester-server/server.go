// cmd/suggester-server/server.go
package main

import (
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/common/config"
	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/common/logger"
	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/common/observability"
	gptrecommend "github.com/AI-Web3-Studio/mcp-product-suggester/internal/tools/gpt-recommend"
	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/tools/health"
	"github.com/AI-Web3-Studio/mcp-product-suggester/pkg/registry"
)

// newMCPServer registers both tools from their registry descriptors.
func newMCPServer(cfg *config.Config, reg *registry.ToolRegistry, rec gptrecommend.Recommender, log logger.Logger, obs *observability.Observability) (*mcpserver.MCPServer, error) {
	srv := mcpserver.NewMCPServer(cfg.App.Name, cfg.App.Version, mcpserver.WithToolCapabilities(false))

	recTool, ok := reg.Lookup(gptrecommend.ToolName)
	if !ok {
		return nil, fmt.Errorf("tool %q missing from registry", gptrecommend.ToolName)
	}
	recHandler := gptrecommend.NewHandler(gptrecommend.LoadConfig(cfg, recTool), recTool, rec, log, obs)
	descriptor, err := recHandler.Tool()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s descriptor: %w", gptrecommend.ToolName, err)
	}
	srv.AddTool(descriptor, recHandler.Handle)

	healthTool, ok := reg.Lookup(health.ToolName)
	if !ok {
		return nil, fmt.Errorf("tool %q missing from registry", health.ToolName)
	}
	healthHandler := health.NewHandler(healthTool, obs)
	srv.AddTool(healthHandler.Tool(), healthHandler.Handle)

	log.Info("tools registered", map[string]interface{}{
		"tools":           []string{gptrecommend.ToolName, health.ToolName},
		"registryVersion": reg.Version,
	})
	return srv, nil
}

func newHTTPServer(cfg *config.Config, srv *mcpserver.MCPServer) *mcpserver.StreamableHTTPServer {
	return mcpserver.NewStreamableHTTPServer(srv, mcpserver.WithEndpointPath(cfg.Server.Path))
}
