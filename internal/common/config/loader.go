// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultSQLTemplate = "SELECT * FROM {table} WHERE deleted_at IS NULL AND available = TRUE ORDER BY created_at DESC LIMIT $1"

	ProviderMonica = "monica"
	ProviderOpenAI = "openai"

	AdmissionLocal = "local"
	AdmissionRedis = "redis"
)

func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional overlay

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(v, &cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			// godotenv.Load never overrides variables already present in the process
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// applyEnvOverrides maps the flat variable names used by existing deployments
// (.env files written for the service) onto the structured config.
func applyEnvOverrides(cfg *Config) {
	setString := func(dst *string, name string) {
		if val := os.Getenv(name); val != "" {
			*dst = val
		}
	}
	setInt := func(dst *int, name string) {
		if val := os.Getenv(name); val != "" {
			if n, err := strconv.Atoi(val); err == nil {
				*dst = n
			}
		}
	}

	setString(&cfg.LLM.Provider, "LLM_PROVIDER")
	setString(&cfg.LLM.ProxyURL, "PROXY_URL")

	setString(&cfg.Database.Postgres.Host, "DB_HOST")
	setInt(&cfg.Database.Postgres.Port, "DB_PORT")
	setString(&cfg.Database.Postgres.User, "DB_USER")
	setString(&cfg.Database.Postgres.Password, "DB_PASS")
	setString(&cfg.Database.Postgres.Database, "DB_BASE")

	setString(&cfg.Catalog.Table, "PRODUCT_TABLE")
	setString(&cfg.Catalog.SQLTemplate, "PRODUCT_SQL_TEMPLATE")

	if host := os.Getenv("REDIS_HOST"); host != "" {
		port := os.Getenv("REDIS_PORT")
		if port == "" {
			port = "6379"
		}
		cfg.Database.Redis.Address = host + ":" + port
	}
	setInt(&cfg.Database.Redis.DB, "REDIS_DB")
	setString(&cfg.Database.Redis.Password, "REDIS_PASSWORD")

	setString(&cfg.Server.URL, "SERVER_URL")
	setString(&cfg.Logging.Output, "LOG_OUTPUT")
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(v *viper.Viper, cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "product-recommendation-server"
	}
	if cfg.App.Version == "" {
		cfg.App.Version = "1.0.0"
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.Path == "" {
		cfg.Server.Path = "/mcp"
	}
	if cfg.Server.URL == "" {
		cfg.Server.URL = "http://localhost:8000"
	}

	if cfg.Database.Postgres.Host == "" {
		cfg.Database.Postgres.Host = "localhost"
	}
	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.Database == "" {
		cfg.Database.Postgres.Database = "product_db"
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 1
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if cfg.Catalog.Table == "" {
		cfg.Catalog.Table = "product_meta"
	}
	if cfg.Catalog.SQLTemplate == "" {
		cfg.Catalog.SQLTemplate = DefaultSQLTemplate
	}
	if cfg.Catalog.Limit == 0 {
		cfg.Catalog.Limit = 1000
	}
	if cfg.Catalog.Timeout == 0 {
		cfg.Catalog.Timeout = 10000
	}

	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = ProviderMonica
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o"
	}
	// 0 is a valid temperature
	if !v.IsSet("llm.temperature") {
		cfg.LLM.Temperature = 0.3
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 100
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 30000
	}
	if cfg.LLM.MaxAttempts == 0 {
		cfg.LLM.MaxAttempts = 3
	}
	if cfg.LLM.RetryDelay == 0 {
		cfg.LLM.RetryDelay = 2000
	}
	if cfg.LLM.DefaultLimit == 0 {
		cfg.LLM.DefaultLimit = 3
	}
	if cfg.LLM.Admission.Backend == "" {
		cfg.LLM.Admission.Backend = AdmissionLocal
	}
	if cfg.LLM.Admission.MaxConcurrency == 0 {
		cfg.LLM.Admission.MaxConcurrency = 10
	}
	if cfg.LLM.Admission.RedisKey == "" {
		cfg.LLM.Admission.RedisKey = "product-suggester:llm:admission"
	}
	if cfg.LLM.Admission.LeaseTTL == 0 {
		// longest possible call: every attempt times out and every delay elapses
		cfg.LLM.Admission.LeaseTTL = cfg.LLM.Timeout*cfg.LLM.MaxAttempts + cfg.LLM.RetryDelay*cfg.LLM.MaxAttempts
	}
	if cfg.LLM.Admission.PollInterval == 0 {
		cfg.LLM.Admission.PollInterval = 100
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9090"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}
	if cfg.Catalog.Limit < 0 {
		return fmt.Errorf("catalog.limit must be positive")
	}
	if cfg.LLM.MaxAttempts < 1 {
		return fmt.Errorf("llm.max_attempts must be at least 1")
	}
	if cfg.LLM.Admission.MaxConcurrency < 1 {
		return fmt.Errorf("llm.admission.max_concurrency must be at least 1")
	}

	switch cfg.LLM.Admission.Backend {
	case AdmissionLocal:
	case AdmissionRedis:
		if cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required for redis admission")
		}
	default:
		return fmt.Errorf("unknown llm.admission.backend %q", cfg.LLM.Admission.Backend)
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
