package message

import (
	"context"

	"github.com/google/uuid"

	domainmessage "github.com/alanyang/project-chat/internal/domain/message"
)

// Repository is the append-only message log.
type Repository interface {
	Create(ctx context.Context, m domainmessage.Message) (domainmessage.Message, error)

	// ListRecent returns at most limit messages of the project, newest first.
	// Callers reverse the slice when they need chronological order.
	ListRecent(ctx context.Context, projectID uuid.UUID, limit int) ([]domainmessage.Message, error)
}
