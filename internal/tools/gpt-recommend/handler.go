// internal/tools/gpt-recommend/handler.go
package gptrecommend

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cast"

	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/common/errors"
	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/common/logger"
	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/common/observability"
	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/common/validation"
	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/recommend"
	"github.com/AI-Web3-Studio/mcp-product-suggester/pkg/registry"
)

const (
	ToolName = "gpt_recommend"
)

// Recommender never fails; errors surface as an empty result.
type Recommender interface {
	Recommend(ctx context.Context, query string, limit int) []recommend.Product
}

type Handler struct {
	config      *Config
	tool        registry.Tool
	recommender Recommender
	logger      logger.Logger
	obs         *observability.Observability
	errors      *errors.ErrorHandler
}

func NewHandler(config *Config, tool registry.Tool, recommender Recommender, log logger.Logger, obs *observability.Observability) *Handler {
	l := log.WithFields(map[string]interface{}{"tool": ToolName})
	return &Handler{
		config:      config,
		tool:        tool,
		recommender: recommender,
		logger:      l,
		obs:         obs,
		errors:      errors.NewErrorHandler(l),
	}
}

// Tool describes gpt_recommend using the registry's input schema.
func (h *Handler) Tool() (mcp.Tool, error) {
	schema, err := json.Marshal(h.tool.InputSchema)
	if err != nil {
		return mcp.Tool{}, err
	}
	return mcp.NewToolWithRawSchema(ToolName, h.tool.Description, schema), nil
}

// Handle is the MCP entry point. Only argument errors produce an error result;
// pipeline failures return "[]".
func (h *Handler) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	requestID := uuid.NewString()

	input, err := h.parseInput(req.GetArguments())
	if err != nil {
		h.obs.RecordToolCall(ctx, ToolName, "invalid", time.Since(start))
		return h.errors.HandleToolError(ToolName, requestID, err), nil
	}

	h.logger.Info("processing tool call", map[string]interface{}{
		"requestId": requestID,
		"limit":     input.Limit,
	})

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	output := h.execute(ctx, input)

	h.logger.Info("tool call completed", map[string]interface{}{
		"requestId":  requestID,
		"results":    len(output),
		"durationMs": time.Since(start).Milliseconds(),
	})
	h.obs.RecordToolCall(ctx, ToolName, "success", time.Since(start))

	return mcp.NewToolResultText(encodeOutput(output)), nil
}

func (h *Handler) parseInput(args map[string]interface{}) (*Input, error) {
	result, err := validation.ValidateInput(args, h.tool.InputSchema)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if !result.Valid {
		stdErr := errors.NewInvalidToolArgumentsError(ToolName, strings.Join(result.GetErrorMessages(), "; "))
		return nil, stdErr.WithMetadata("fields", result.Errors)
	}

	input := &Input{
		Query: cast.ToString(args["query"]),
		Limit: h.config.DefaultLimit,
	}
	if raw, ok := args["limit"]; ok && raw != nil {
		limit, err := cast.ToIntE(raw)
		if err != nil {
			return nil, errors.NewInvalidToolArgumentsError(ToolName, "limit: "+err.Error())
		}
		input.Limit = limit
	}
	return input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) Output {
	return Output(h.recommender.Recommend(ctx, input.Query, input.Limit))
}

// Execute runs the tool without the MCP envelope.
func (h *Handler) Execute(ctx context.Context, input *Input) (Output, error) {
	if input == nil || input.Query == "" {
		return Output{}, errors.NewInvalidToolArgumentsError(ToolName, "query is required")
	}
	return h.execute(ctx, input), nil
}

func encodeOutput(output Output) string {
	if len(output) == 0 {
		return "[]"
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(output); err != nil {
		return "[]"
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}
