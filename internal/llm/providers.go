package llm

import (
	"strings"

	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/common/config"
)

// Provider is one OpenAI-compatible chat-completion endpoint.
type Provider struct {
	Name    string
	BaseURL string
	KeyEnv  string
}

var providers = map[string]Provider{
	config.ProviderMonica: {
		Name:    config.ProviderMonica,
		BaseURL: "https://openapi.monica.im/v1/",
		KeyEnv:  "MONICA_API_KEY",
	},
	config.ProviderOpenAI: {
		Name:    config.ProviderOpenAI,
		BaseURL: "https://api.openai.com/v1/",
		KeyEnv:  "OPENAI_API_KEY",
	},
}

// ResolveProvider returns the provider for name with any configured overrides
// applied. Unknown names resolve to monica and report ok=false.
func ResolveProvider(name string, overrides map[string]config.ProviderConfig) (Provider, bool) {
	name = strings.ToLower(strings.TrimSpace(name))

	p, ok := providers[name]
	if !ok {
		p = providers[config.ProviderMonica]
	}

	if o, found := overrides[p.Name]; found {
		if o.BaseURL != "" {
			p.BaseURL = o.BaseURL
		}
		if o.KeyEnv != "" {
			p.KeyEnv = o.KeyEnv
		}
	}

	if !strings.HasSuffix(p.BaseURL, "/") {
		p.BaseURL += "/"
	}

	return p, ok
}
