package llm

import (
	"context"
	"errors"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"github.com/alanyang/project-chat/internal/config"
	"github.com/alanyang/project-chat/internal/domain/conversation"
	portllm "github.com/alanyang/project-chat/internal/port/llm"
)

var _ portllm.Provider = (*OpenAI)(nil)

// OpenAI speaks the chat-completions protocol. It also backs OpenRouter, which
// exposes the same wire format under a different base URL.
type OpenAI struct {
	name   string
	model  string
	client *openai.Client
}

func NewOpenAI(cfg config.OpenAIConfig, httpClient *http.Client) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, missingCredential(config.ProviderOpenAI, "OPENAI_API_KEY")
	}
	return newChatCompletions(config.ProviderOpenAI, cfg.APIKey, cfg.BaseURL, cfg.Model, httpClient), nil
}

func newChatCompletions(name, apiKey, baseURL, model string, httpClient *http.Client) *OpenAI {
	oc := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		oc.BaseURL = baseURL
	}
	oc.HTTPClient = httpClient

	return &OpenAI{
		name:   name,
		model:  model,
		client: openai.NewClientWithConfig(oc),
	}
}

func (p *OpenAI) CreateChatCompletion(ctx context.Context, turns []conversation.Turn) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    toOpenAIMessages(turns),
		MaxTokens:   maxOutputTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", &conversation.ProviderError{Provider: p.name, StatusCode: openAIStatus(err), Err: err}
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &conversation.ProviderError{Provider: p.name, Err: errEmptyResponse}
	}
	return resp.Choices[0].Message.Content, nil
}

// Roles pass through unchanged; system turns stay system turns.
func toOpenAIMessages(turns []conversation.Turn) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, t := range turns {
		out = append(out, openai.ChatCompletionMessage{Role: string(t.Role), Content: t.Content})
	}
	return out
}

func openAIStatus(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
