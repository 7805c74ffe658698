package llm

import (
	"context"

	"github.com/alanyang/project-chat/internal/domain/conversation"
)

// Provider is the single capability every AI backend exposes.
// Implementations return *conversation.ProviderError on any failure and never
// retry.
type Provider interface {
	CreateChatCompletion(ctx context.Context, turns []conversation.Turn) (string, error)
}
