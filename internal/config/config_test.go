package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(m map[string]string) lookupFunc {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ProviderGemini, cfg.Provider.Name)
	assert.Equal(t, "gpt-3.5-turbo", cfg.Provider.OpenAI.Model)
	assert.Equal(t, "gemini-1.5-flash-latest", cfg.Provider.Gemini.Model)
	assert.Equal(t, "openai/gpt-3.5-turbo", cfg.Provider.OpenRouter.Model)
	assert.Equal(t, "http://localhost:3000", cfg.Provider.OpenRouter.AppURL)
	assert.False(t, cfg.Chat.SerializePerProject)
	assert.False(t, cfg.Chat.DedupeInbound)
	assert.Equal(t, 60*time.Second, cfg.Provider.Timeout)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	applyEnv(&cfg, mapLookup(map[string]string{
		"AI_PROVIDER":                " OpenRouter ",
		"OPENROUTER_API_KEY":         "or-key",
		"APP_URL":                    "https://chat.example.com",
		"CHAT_SERIALIZE_PER_PROJECT": "true",
		"CHAT_DEDUPE_INBOUND":        "1",
		"PROVIDER_TIMEOUT_SECONDS":   "15",
		"IDEMPOTENCY_TTL_SECONDS":    "not-a-number",
		"GEMINI_INSTRUCTION_CHANNEL": "false",
		"STORAGE_DRIVER":             "SQLITE",
		"PORT":                       "",
	}))

	assert.Equal(t, ProviderOpenRouter, cfg.Provider.Name)
	assert.Equal(t, "or-key", cfg.Provider.OpenRouter.APIKey)
	assert.Equal(t, "https://chat.example.com", cfg.Provider.OpenRouter.AppURL)
	assert.True(t, cfg.Chat.SerializePerProject)
	assert.True(t, cfg.Chat.DedupeInbound)
	assert.Equal(t, 15*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.Chat.IdempotencyTTL, "invalid value keeps default")
	assert.False(t, cfg.Provider.Gemini.InstructionChannel)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "8080", cfg.Server.Port, "empty value keeps default")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "postgres with url",
			mutate: func(c *Config) { c.Storage.DatabaseURL = "postgres://x" },
		},
		{
			name:    "postgres without url",
			mutate:  func(c *Config) {},
			wantErr: "DATABASE_URL not set",
		},
		{
			name:   "sqlite needs no url",
			mutate: func(c *Config) { c.Storage.Driver = DriverSQLite },
		},
		{
			name: "unknown provider",
			mutate: func(c *Config) {
				c.Storage.Driver = DriverSQLite
				c.Provider.Name = "claude"
			},
			wantErr: `unknown AI provider "claude"`,
		},
		{
			name: "unknown driver",
			mutate: func(c *Config) {
				c.Storage.Driver = "mysql"
			},
			wantErr: `unknown storage driver "mysql"`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage:
  driver: sqlite
  sqlite_path: /tmp/chat.db
provider:
  name: openai
  timeout: 30s
  openai:
    api_key: file-key
chat:
  serialize_per_project: true
`), 0o600))

	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("AI_PROVIDER", "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, ProviderOpenAI, cfg.Provider.Name)
	assert.Equal(t, 30*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, "env-key", cfg.Provider.OpenAI.APIKey)
	assert.True(t, cfg.Chat.SerializePerProject)
	assert.Equal(t, "gpt-3.5-turbo", cfg.Provider.OpenAI.Model, "unset keys keep defaults")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
