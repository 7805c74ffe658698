package message

import (
	"time"

	"github.com/google/uuid"

	"github.com/alanyang/project-chat/internal/domain/conversation"
)

// Message is one persisted chat turn. Messages are append-only.
type Message struct {
	ID        uuid.UUID         `json:"id"`
	ProjectID uuid.UUID         `json:"project_id"`
	Role      conversation.Role `json:"role"`
	Content   string            `json:"content"`
	CreatedAt time.Time         `json:"created_at"`
}

func New(projectID uuid.UUID, role conversation.Role, content string) Message {
	return Message{
		ID:        uuid.New(),
		ProjectID: projectID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

// Turn projects the message onto the provider-facing shape.
func (m Message) Turn() conversation.Turn {
	return conversation.Turn{Role: m.Role, Content: m.Content}
}
