package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/alanyang/project-chat/internal/domain/event"
)

const notifyMethod = "notifications/message_created"

// SessionRegistry tracks which MCP sessions watch which projects and pushes
// message events to them.
type SessionRegistry struct {
	mu        sync.RWMutex
	bySession map[string]map[uuid.UUID]struct{} // sessionID → watched projects

	// mcpSrv is set after the MCP server is constructed.
	mcpMu  sync.RWMutex
	mcpSrv *mcpserver.MCPServer
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		bySession: make(map[string]map[uuid.UUID]struct{}),
	}
}

func (r *SessionRegistry) SetMCPServer(s *mcpserver.MCPServer) {
	r.mcpMu.Lock()
	r.mcpSrv = s
	r.mcpMu.Unlock()
}

// Watch subscribes a session to a project's message events.
func (r *SessionRegistry) Watch(sessionID string, projectID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.bySession[sessionID]
	if !ok {
		set = make(map[uuid.UUID]struct{})
		r.bySession[sessionID] = set
	}
	set[projectID] = struct{}{}
}

// Unregister drops every watch held by the session. Reports whether it had any.
func (r *SessionRegistry) Unregister(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bySession[sessionID]; !ok {
		return false
	}
	delete(r.bySession, sessionID)
	return true
}

// Watchers lists the sessions watching projectID.
func (r *SessionRegistry) Watchers(projectID uuid.UUID) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for sessionID, set := range r.bySession {
		if _, ok := set[projectID]; ok {
			out = append(out, sessionID)
		}
	}
	return out
}

// NotifyProject forwards e to every session watching e.ProjectID.
func (r *SessionRegistry) NotifyProject(_ context.Context, e event.Event) error {
	targets := r.Watchers(e.ProjectID)
	if len(targets) == 0 {
		return nil
	}

	r.mcpMu.RLock()
	srv := r.mcpSrv
	r.mcpMu.RUnlock()
	if srv == nil {
		return fmt.Errorf("mcp server not initialized")
	}

	params, err := toParams(e)
	if err != nil {
		return fmt.Errorf("serialize notification: %w", err)
	}

	var lastErr error
	for _, sessionID := range targets {
		if err := srv.SendNotificationToSpecificClient(sessionID, notifyMethod, params); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func toParams(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var params map[string]any
	if err := json.Unmarshal(data, &params); err != nil {
		return map[string]any{"data": v}, nil
	}
	return params, nil
}
