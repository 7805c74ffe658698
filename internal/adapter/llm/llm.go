// Package llm holds the completion backends behind port/llm.Provider and the
// factory that picks one at startup.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/alanyang/project-chat/internal/config"
	"github.com/alanyang/project-chat/internal/domain/conversation"
	portllm "github.com/alanyang/project-chat/internal/port/llm"
)

// Generation parameters shared by every hosted backend.
const (
	maxOutputTokens = 1000
	temperature     = 0.7
)

// New constructs the provider named in cfg.Name. Missing credentials and
// unknown names fail here so a misconfigured server never starts.
func New(ctx context.Context, cfg config.ProviderConfig) (portllm.Provider, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Name {
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.OpenAI, httpClient)
	case config.ProviderGemini:
		return NewGemini(ctx, cfg.Gemini, httpClient)
	case config.ProviderOpenRouter:
		return NewOpenRouter(cfg.OpenRouter, httpClient)
	case config.ProviderOllama:
		return NewOllama(cfg.Ollama, httpClient)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Name)
	}
}

func missingCredential(provider, what string) *conversation.ProviderError {
	return &conversation.ProviderError{
		Provider: provider,
		Err:      fmt.Errorf("%w: %s", conversation.ErrMissingCredential, what),
	}
}

var errEmptyResponse = errors.New("response contained no text")
