package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, `
database:
  postgres:
    user: shop
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8000", cfg.Server.Addr())
	assert.Equal(t, "/mcp", cfg.Server.Path)
	assert.Equal(t, "product_meta", cfg.Catalog.Table)
	assert.Equal(t, DefaultSQLTemplate, cfg.Catalog.SQLTemplate)
	assert.Equal(t, 1000, cfg.Catalog.Limit)
	assert.Equal(t, ProviderMonica, cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.InDelta(t, 0.3, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, 100, cfg.LLM.MaxTokens)
	assert.Equal(t, 3, cfg.LLM.MaxAttempts)
	assert.Equal(t, 2*time.Second, GetDuration(cfg.LLM.RetryDelay))
	assert.Equal(t, 30*time.Second, GetDuration(cfg.LLM.Timeout))
	assert.Equal(t, 3, cfg.LLM.DefaultLimit)
	assert.Equal(t, AdmissionLocal, cfg.LLM.Admission.Backend)
	assert.Equal(t, 10, cfg.LLM.Admission.MaxConcurrency)
	assert.False(t, cfg.LLM.InsecureSkipVerify)
	assert.Equal(t, "stdout", cfg.Logging.Output)
}

func TestLoadFromFile_ZeroTemperature(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		path := writeConfig(t, "llm:\n  temperature: 0\n")

		cfg, err := LoadFromFile(path)
		require.NoError(t, err)
		assert.Zero(t, cfg.LLM.Temperature)
	})

	t.Run("env", func(t *testing.T) {
		t.Setenv("LLM_TEMPERATURE", "0")
		path := writeConfig(t, "app:\n  name: test\n")

		cfg, err := LoadFromFile(path)
		require.NoError(t, err)
		assert.Zero(t, cfg.LLM.Temperature)
	})

	t.Run("explicit value kept", func(t *testing.T) {
		path := writeConfig(t, "llm:\n  temperature: 0.9\n")

		cfg, err := LoadFromFile(path)
		require.NoError(t, err)
		assert.InDelta(t, 0.9, cfg.LLM.Temperature, 1e-9)
	})
}

func TestLoadFromFile_LegacyEnvNames(t *testing.T) {
	t.Setenv("LLM_PROVIDER", " OpenAI ")
	t.Setenv("PROXY_URL", "http://proxy.local:3128")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_USER", "reader")
	t.Setenv("DB_PASS", "secret")
	t.Setenv("DB_BASE", "shop")
	t.Setenv("PRODUCT_TABLE", "items")
	t.Setenv("REDIS_HOST", "cache.internal")
	t.Setenv("REDIS_DB", "2")

	path := writeConfig(t, "app:\n  name: test\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "http://proxy.local:3128", cfg.LLM.ProxyURL)
	assert.Equal(t, "db.internal", cfg.Database.Postgres.Host)
	assert.Equal(t, 6543, cfg.Database.Postgres.Port)
	assert.Equal(t, "reader", cfg.Database.Postgres.User)
	assert.Equal(t, "shop", cfg.Database.Postgres.Database)
	assert.Equal(t, "items", cfg.Catalog.Table)
	assert.Equal(t, "cache.internal:6379", cfg.Database.Redis.Address)
	assert.Equal(t, 2, cfg.Database.Redis.DB)
	assert.Contains(t, cfg.Database.Postgres.GetDSN(), "port=6543")
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing database user",
			body:    "app:\n  name: test\n",
			wantErr: "database.postgres.user is required",
		},
		{
			name: "unknown admission backend",
			body: `
database:
  postgres:
    user: shop
llm:
  admission:
    backend: etcd
`,
			wantErr: "unknown llm.admission.backend",
		},
		{
			name: "redis admission without address",
			body: `
database:
  postgres:
    user: shop
llm:
  admission:
    backend: redis
`,
			wantErr: "database.redis.address is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DB_USER", "")
			t.Setenv("REDIS_HOST", "")

			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("SUGGESTER_TEST_TABLE", "catalog_items")

	path := writeConfig(t, `
database:
  postgres:
    user: shop
catalog:
  table: ${SUGGESTER_TEST_TABLE}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "catalog_items", cfg.Catalog.Table)
}
