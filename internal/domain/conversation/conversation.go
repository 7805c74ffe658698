package conversation

import (
	"errors"
	"fmt"
)

// Role tags a turn or a stored message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Turn is a role-tagged utterance exchanged with a provider. It has no identity
// and is never persisted directly.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Reply is what the orchestrator returns after a successful exchange.
type Reply struct {
	Message   string `json:"message"`
	MessageID string `json:"messageId"`
}

var (
	// ErrNotFoundOrForbidden covers both a missing project and one owned by
	// someone else. Callers must not be able to tell the two apart.
	ErrNotFoundOrForbidden = errors.New("project not found or access denied")

	// ErrGenerationFailed wraps any provider failure surfaced by the orchestrator.
	ErrGenerationFailed = errors.New("failed to generate response")

	// ErrMissingCredential is returned at provider construction time.
	ErrMissingCredential = errors.New("missing provider credential")
)

// ProviderError is returned by every provider adapter on bad status, malformed
// payload, transport failure, or missing credential.
type ProviderError struct {
	Provider   string
	StatusCode int // 0 when no HTTP response was received
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s provider error (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s provider error: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
