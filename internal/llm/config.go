package llm

import (
	"time"

	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/common/config"
)

type Config struct {
	Provider           Provider
	RequestedProvider  string
	Model              string
	Temperature        float64
	MaxTokens          int
	Timeout            time.Duration
	MaxAttempts        int
	RetryDelay         time.Duration
	ProxyURL           string
	InsecureSkipVerify bool
}

func LoadConfig(appConfig *config.Config) *Config {
	provider, _ := ResolveProvider(appConfig.LLM.Provider, appConfig.LLM.Providers)

	return &Config{
		Provider:           provider,
		RequestedProvider:  appConfig.LLM.Provider,
		Model:              appConfig.LLM.Model,
		Temperature:        appConfig.LLM.Temperature,
		MaxTokens:          appConfig.LLM.MaxTokens,
		Timeout:            config.GetDuration(appConfig.LLM.Timeout),
		MaxAttempts:        appConfig.LLM.MaxAttempts,
		RetryDelay:         config.GetDuration(appConfig.LLM.RetryDelay),
		ProxyURL:           appConfig.LLM.ProxyURL,
		InsecureSkipVerify: appConfig.LLM.InsecureSkipVerify,
	}
}
