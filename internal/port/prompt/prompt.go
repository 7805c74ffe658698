package prompt

import (
	"context"

	"github.com/google/uuid"

	domainprompt "github.com/alanyang/project-chat/internal/domain/prompt"
)

// Repository is the storage abstraction for project prompts.
// [DIP] service/prompt and the chat assembler depend on this interface.
// [LSP] Postgres and SQLite implementations are valid substitutes.
type Repository interface {
	Create(ctx context.Context, p domainprompt.Prompt) (domainprompt.Prompt, error)

	// GetByID returns domainprompt.ErrNotFound if no row matches.
	GetByID(ctx context.Context, id uuid.UUID) (domainprompt.Prompt, error)

	// ListByProject returns every prompt of the project ordered by created_at
	// descending (newest first).
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]domainprompt.Prompt, error)

	Delete(ctx context.Context, id uuid.UUID) error
}
