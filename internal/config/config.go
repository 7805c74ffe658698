// Package config loads runtime settings: built-in defaults, then an optional
// YAML file, then environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider names accepted by provider.name / AI_PROVIDER.
const (
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
)

// Storage drivers accepted by storage.driver / STORAGE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Provider ProviderConfig `yaml:"provider"`
	Chat     ChatConfig     `yaml:"chat"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type StorageConfig struct {
	Driver      string `yaml:"driver"`
	DatabaseURL string `yaml:"database_url"`
	SQLitePath  string `yaml:"sqlite_path"`
}

type ProviderConfig struct {
	Name    string        `yaml:"name"`
	Timeout time.Duration `yaml:"timeout"`

	OpenAI     OpenAIConfig     `yaml:"openai"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	Ollama     OllamaConfig     `yaml:"ollama"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type GeminiConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
	// InstructionChannel sends prompts and the formatting directive as the
	// request's system instruction. When false they are folded into the first
	// user turn instead.
	InstructionChannel bool `yaml:"instruction_channel"`
}

type OpenRouterConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
	AppURL  string `yaml:"app_url"`
	Title   string `yaml:"title"`
}

type OllamaConfig struct {
	Host  string `yaml:"host"`
	Model string `yaml:"model"`
}

type ChatConfig struct {
	SerializePerProject bool `yaml:"serialize_per_project"`
	// DedupeInbound sends the new user message once instead of both inside
	// the history window and as the trailing turn.
	DedupeInbound  bool          `yaml:"dedupe_inbound"`
	IdempotencyTTL time.Duration `yaml:"idempotency_ttl"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            "8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Driver:     DriverPostgres,
			SQLitePath: "data/chat.db",
		},
		Provider: ProviderConfig{
			Name:    ProviderGemini,
			Timeout: 60 * time.Second,
			OpenAI: OpenAIConfig{
				Model:   "gpt-3.5-turbo",
				BaseURL: "https://api.openai.com/v1",
			},
			Gemini: GeminiConfig{
				Model:              "gemini-1.5-flash-latest",
				InstructionChannel: true,
			},
			OpenRouter: OpenRouterConfig{
				Model:   "openai/gpt-3.5-turbo",
				BaseURL: "https://openrouter.ai/api/v1",
				AppURL:  "http://localhost:3000",
				Title:   "Chatbot Platform",
			},
			Ollama: OllamaConfig{
				Host: "http://localhost:11434",
			},
		},
		Chat: ChatConfig{
			IdempotencyTTL: 24 * time.Hour,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load builds the effective configuration. path may be empty, in which case
// CHATBOT_CONFIG is consulted; a named file that does not exist is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("CHATBOT_CONFIG")
	}
	if path != "" {
		if err := loadFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg, os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}
	seconds := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
				*dst = time.Duration(secs) * time.Second
			}
		}
	}

	str("PORT", &cfg.Server.Port)

	str("STORAGE_DRIVER", &cfg.Storage.Driver)
	str("DATABASE_URL", &cfg.Storage.DatabaseURL)
	str("SQLITE_PATH", &cfg.Storage.SQLitePath)

	str("AI_PROVIDER", &cfg.Provider.Name)
	seconds("PROVIDER_TIMEOUT_SECONDS", &cfg.Provider.Timeout)
	str("OPENAI_API_KEY", &cfg.Provider.OpenAI.APIKey)
	str("GEMINI_API_KEY", &cfg.Provider.Gemini.APIKey)
	boolean("GEMINI_INSTRUCTION_CHANNEL", &cfg.Provider.Gemini.InstructionChannel)
	str("OPENROUTER_API_KEY", &cfg.Provider.OpenRouter.APIKey)
	str("APP_URL", &cfg.Provider.OpenRouter.AppURL)
	str("OLLAMA_HOST", &cfg.Provider.Ollama.Host)
	str("OLLAMA_MODEL", &cfg.Provider.Ollama.Model)

	boolean("CHAT_SERIALIZE_PER_PROJECT", &cfg.Chat.SerializePerProject)
	boolean("CHAT_DEDUPE_INBOUND", &cfg.Chat.DedupeInbound)
	seconds("IDEMPOTENCY_TTL_SECONDS", &cfg.Chat.IdempotencyTTL)

	str("LOG_LEVEL", &cfg.Log.Level)

	cfg.Provider.Name = strings.ToLower(strings.TrimSpace(cfg.Provider.Name))
	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
}

// Validate checks structural settings only. Credentials are checked when the
// selected provider is constructed.
func (c Config) Validate() error {
	var errs []error

	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL not set"))
		}
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			errs = append(errs, errors.New("sqlite path not set"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}

	switch c.Provider.Name {
	case ProviderOpenAI, ProviderGemini, ProviderOpenRouter, ProviderOllama:
	default:
		errs = append(errs, fmt.Errorf("unknown AI provider %q", c.Provider.Name))
	}

	if c.Provider.Timeout <= 0 {
		errs = append(errs, errors.New("provider timeout must be positive"))
	}
	if c.Server.Port == "" {
		errs = append(errs, errors.New("port not set"))
	}

	return errors.Join(errs...)
}
