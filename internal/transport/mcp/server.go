package mcp

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	mcpserver "github.com/mark3labs/mcp-go/server"

	chatsvc "github.com/alanyang/project-chat/internal/service/chat"
	projectsvc "github.com/alanyang/project-chat/internal/service/project"
	promptsvc "github.com/alanyang/project-chat/internal/service/prompt"
	"github.com/alanyang/project-chat/internal/transport/httpx"
)

// Server wraps the mark3labs/mcp-go MCPServer and its StreamableHTTPServer.
// Tools live in tools.go, prompts in prompts.go, watch state in registry.go.
type Server struct {
	httpSrv *mcpserver.StreamableHTTPServer
	reg     *SessionRegistry
}

func New(
	projectSvc *projectsvc.Service,
	promptSvc *promptsvc.Service,
	chatSvc *chatsvc.Service,
) *Server {
	s := &Server{reg: NewSessionRegistry()}

	hooks := &mcpserver.Hooks{}
	hooks.OnUnregisterSession = append(hooks.OnUnregisterSession, s.onSessionClose)

	mcpSrv := mcpserver.NewMCPServer(
		"project-chat",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithPromptCapabilities(true),
		mcpserver.WithHooks(hooks),
	)
	s.reg.SetMCPServer(mcpSrv)

	RegisterTools(mcpSrv, s.reg, projectSvc, promptSvc, chatSvc)
	RegisterPrompts(mcpSrv, promptSvc)

	s.httpSrv = mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithHTTPContextFunc(userFromRequest),
	)
	return s
}

// Handler returns the http.Handler serving the MCP streamable endpoint.
func (s *Server) Handler() http.Handler {
	return s.httpSrv
}

func (s *Server) Registry() *SessionRegistry {
	return s.reg
}

func (s *Server) onSessionClose(ctx context.Context, session mcpserver.ClientSession) {
	if s.reg.Unregister(session.SessionID()) {
		slog.InfoContext(ctx, "mcp: session closed, dropped project watches", "session_id", session.SessionID())
	}
}

type userKey struct{}

// WithUser attaches the calling user to ctx the way the HTTP layer does.
func WithUser(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userKey{}, id)
}

func userFrom(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(userKey{}).(uuid.UUID)
	return id
}

func userFromRequest(ctx context.Context, r *http.Request) context.Context {
	id, err := uuid.Parse(r.Header.Get(httpx.UserHeader))
	if err != nil {
		return ctx
	}
	return WithUser(ctx, id)
}
