package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/alanyang/project-chat/internal/config"
	"github.com/alanyang/project-chat/internal/domain/conversation"
	portllm "github.com/alanyang/project-chat/internal/port/llm"
)

var _ portllm.Provider = (*Gemini)(nil)

// plainTextDirective keeps replies readable in a chat bubble that does not
// render markdown.
const plainTextDirective = "Please respond in plain text format without markdown formatting. " +
	"Use simple bullet points (•) instead of asterisks (*) for lists. " +
	"Keep responses clean and readable for a chat interface."

type Gemini struct {
	client             *genai.Client
	model              string
	instructionChannel bool
}

func NewGemini(ctx context.Context, cfg config.GeminiConfig, httpClient *http.Client) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, missingCredential(config.ProviderGemini, "GEMINI_API_KEY")
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, &conversation.ProviderError{Provider: config.ProviderGemini, Err: err}
	}
	return &Gemini{client: client, model: cfg.Model, instructionChannel: cfg.InstructionChannel}, nil
}

func (g *Gemini) CreateChatCompletion(ctx context.Context, turns []conversation.Turn) (string, error) {
	req := translateForGemini(turns, g.instructionChannel)

	gc := &genai.GenerateContentConfig{
		Temperature:     ptr(float32(temperature)),
		MaxOutputTokens: maxOutputTokens,
	}
	if req.instruction != "" {
		gc.SystemInstruction = genai.NewContentFromText(req.instruction, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, req.contents, gc)
	if err != nil {
		return "", &conversation.ProviderError{Provider: config.ProviderGemini, StatusCode: geminiStatus(err), Err: err}
	}

	text := firstCandidateText(resp)
	if text == "" {
		return "", &conversation.ProviderError{Provider: config.ProviderGemini, Err: errEmptyResponse}
	}
	return text, nil
}

type geminiRequest struct {
	instruction string
	contents    []*genai.Content
}

// translateForGemini folds every system turn into one instruction block
// followed by the plain-text directive. Assistant turns become "model" turns.
// With the instruction channel disabled the block is prepended to the opening
// turn instead, separated by a blank line, when that turn is from the user.
func translateForGemini(turns []conversation.Turn, instructionChannel bool) geminiRequest {
	var system []string
	var contents []*genai.Content

	for _, t := range turns {
		switch t.Role {
		case conversation.RoleSystem:
			system = append(system, t.Content)
		case conversation.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(t.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(t.Content, genai.RoleUser))
		}
	}

	instruction := strings.Join(append(system, plainTextDirective), "\n\n")
	if instructionChannel {
		return geminiRequest{instruction: instruction, contents: contents}
	}

	// Only an opening user turn carries the block; otherwise it is not sent.
	if len(contents) > 0 && contents[0].Role == genai.RoleUser {
		contents[0] = genai.NewContentFromText(instruction+"\n\n"+contents[0].Parts[0].Text, genai.RoleUser)
	}
	return geminiRequest{contents: contents}
}

func firstCandidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

func geminiStatus(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code
	}
	return 0
}

func ptr[T any](v T) *T { return &v }
