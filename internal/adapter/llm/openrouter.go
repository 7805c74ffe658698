package llm

import (
	"net/http"

	"github.com/alanyang/project-chat/internal/config"
)

// NewOpenRouter returns a chat-completions client pointed at OpenRouter. The
// attribution headers OpenRouter asks for are added by a RoundTripper so the
// request body stays identical to the OpenAI one.
func NewOpenRouter(cfg config.OpenRouterConfig, httpClient *http.Client) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, missingCredential(config.ProviderOpenRouter, "OPENROUTER_API_KEY")
	}

	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	withHeaders := *httpClient
	withHeaders.Transport = &headerTransport{
		base: base,
		headers: map[string]string{
			"HTTP-Referer": cfg.AppURL,
			"X-Title":      cfg.Title,
		},
	}

	return newChatCompletions(config.ProviderOpenRouter, cfg.APIKey, cfg.BaseURL, cfg.Model, &withHeaders), nil
}

type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	for k, v := range t.headers {
		if v != "" {
			clone.Header.Set(k, v)
		}
	}
	return t.base.RoundTrip(clone)
}
