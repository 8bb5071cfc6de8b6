package catalog

import (
	"time"

	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/common/config"
)

type Config struct {
	Table       string
	SQLTemplate string
	Limit       int
	Timeout     time.Duration
}

func LoadConfig(appConfig *config.Config) *Config {
	return &Config{
		Table:       appConfig.Catalog.Table,
		SQLTemplate: appConfig.Catalog.SQLTemplate,
		Limit:       appConfig.Catalog.Limit,
		Timeout:     config.GetDuration(appConfig.Catalog.Timeout),
	}
}
