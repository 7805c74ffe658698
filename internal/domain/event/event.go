package event

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeMessageCreated Type = "message_created"
	TypePromptCreated  Type = "prompt_created"
	TypePromptDeleted  Type = "prompt_deleted"
)

// Channel is a domain-scoped Postgres NOTIFY channel.
// All event types within a domain share one LISTEN connection.
type Channel string

const (
	ChannelChat   Channel = "chat"
	ChannelPrompt Channel = "prompt"
)

var typeToChannel = map[Type]Channel{
	TypeMessageCreated: ChannelChat,
	TypePromptCreated:  ChannelPrompt,
	TypePromptDeleted:  ChannelPrompt,
}

// ChannelFor returns the domain channel for a given event type.
func ChannelFor(t Type) Channel { return typeToChannel[t] }

// Event carries identifiers only, not full state.
// Subscribers fetch fresh state from the appropriate repository.
type Event struct {
	Type      Type      `json:"type"`
	ProjectID uuid.UUID `json:"project_id"`
	EntityID  uuid.UUID `json:"entity_id"`
	Timestamp time.Time `json:"timestamp"`
}

func New(eventType Type, projectID, entityID uuid.UUID) Event {
	return Event{
		Type:      eventType,
		ProjectID: projectID,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
	}
}
