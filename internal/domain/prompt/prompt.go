package prompt

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("prompt not found")

// Prompt is a project-scoped instruction document. Prompts are never edited in
// place; they are created or deleted.
type Prompt struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"project_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func New(projectID uuid.UUID, title, content string) Prompt {
	return Prompt{
		ID:        uuid.New(),
		ProjectID: projectID,
		Title:     title,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}
