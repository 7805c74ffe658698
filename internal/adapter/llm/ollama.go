package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/alanyang/project-chat/internal/config"
	"github.com/alanyang/project-chat/internal/domain/conversation"
	portllm "github.com/alanyang/project-chat/internal/port/llm"
)

var _ portllm.Provider = (*Ollama)(nil)

// Ollama talks to a self-hosted model server. It needs no credential but must
// be told which pulled model to use.
type Ollama struct {
	client *api.Client
	model  string
}

func NewOllama(cfg config.OllamaConfig, httpClient *http.Client) (*Ollama, error) {
	if cfg.Model == "" {
		return nil, missingCredential(config.ProviderOllama, "OLLAMA_MODEL")
	}
	base, err := url.Parse(cfg.Host)
	if err != nil {
		return nil, &conversation.ProviderError{Provider: config.ProviderOllama, Err: fmt.Errorf("parse host: %w", err)}
	}
	return &Ollama{client: api.NewClient(base, httpClient), model: cfg.Model}, nil
}

func (o *Ollama) CreateChatCompletion(ctx context.Context, turns []conversation.Turn) (string, error) {
	msgs := make([]api.Message, 0, len(turns))
	for _, t := range turns {
		msgs = append(msgs, api.Message{Role: string(t.Role), Content: t.Content})
	}

	stream := false
	req := &api.ChatRequest{
		Model:    o.model,
		Messages: msgs,
		Stream:   &stream,
		Options: map[string]any{
			"temperature": temperature,
			"num_predict": maxOutputTokens,
		},
	}

	var sb strings.Builder
	err := o.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", &conversation.ProviderError{Provider: config.ProviderOllama, StatusCode: ollamaStatus(err), Err: err}
	}
	if sb.Len() == 0 {
		return "", &conversation.ProviderError{Provider: config.ProviderOllama, Err: errEmptyResponse}
	}
	return sb.String(), nil
}

func ollamaStatus(err error) int {
	var se api.StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	var sep *api.StatusError
	if errors.As(err, &sep) {
		return sep.StatusCode
	}
	return 0
}
