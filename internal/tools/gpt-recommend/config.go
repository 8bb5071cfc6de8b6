// internal/tools/gpt-recommend/config.go
package gptrecommend

import (
	"time"

	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/common/config"
	"github.com/AI-Web3-Studio/mcp-product-suggester/pkg/registry"
)

type Config struct {
	DefaultLimit int
	Timeout      time.Duration
}

// LoadConfig prefers the limit default declared in the tool schema and falls
// back to llm.default_limit.
func LoadConfig(appConfig *config.Config, tool registry.Tool) *Config {
	cfg := &Config{
		DefaultLimit: appConfig.LLM.DefaultLimit,
		Timeout:      tool.TimeoutDuration(2 * time.Minute),
	}

	if prop, ok := tool.Property("limit"); ok {
		if def, ok := prop["default"].(float64); ok && def >= 0 {
			cfg.DefaultLimit = int(def)
		}
	}
	return cfg
}
