// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig controls the MCP streamable HTTP listener.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Path string `mapstructure:"path"`
	URL  string `mapstructure:"url"` // used by the client harness
}

// Addr returns host:port for the MCP listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CatalogConfig describes where products are read from.
type CatalogConfig struct {
	Table       string `mapstructure:"table"`
	SQLTemplate string `mapstructure:"sql_template"`
	Limit       int    `mapstructure:"limit"`   // rows handed to the model, independent of the tool limit
	Timeout     int    `mapstructure:"timeout"` // milliseconds
}

// LLMConfig holds settings for the chat-completion client.
type LLMConfig struct {
	Provider           string                    `mapstructure:"provider"`
	Providers          map[string]ProviderConfig `mapstructure:"providers"`
	ProxyURL           string                    `mapstructure:"proxy_url"`
	Model              string                    `mapstructure:"model"`
	Temperature        float64                   `mapstructure:"temperature"`
	MaxTokens          int                       `mapstructure:"max_tokens"`
	Timeout            int                       `mapstructure:"timeout"`     // milliseconds, per attempt
	MaxAttempts        int                       `mapstructure:"max_attempts"`
	RetryDelay         int                       `mapstructure:"retry_delay"` // milliseconds
	InsecureSkipVerify bool                      `mapstructure:"insecure_skip_verify"`
	DefaultLimit       int                       `mapstructure:"default_limit"`
	Admission          AdmissionConfig           `mapstructure:"admission"`
}

// ProviderConfig overrides the built-in endpoint or key variable of a provider.
type ProviderConfig struct {
	BaseURL string `mapstructure:"base_url"`
	KeyEnv  string `mapstructure:"key_env"`
}

// AdmissionConfig bounds concurrent in-flight LLM calls.
type AdmissionConfig struct {
	Backend        string `mapstructure:"backend"` // local | redis
	MaxConcurrency int    `mapstructure:"max_concurrency"`
	RedisKey       string `mapstructure:"redis_key"`
	LeaseTTL       int    `mapstructure:"lease_ttl"`     // milliseconds
	PollInterval   int    `mapstructure:"poll_interval"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MetricsConfig controls the admin listener serving /metrics and /healthz.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}
