package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/alanyang/project-chat/internal/domain/conversation"
	chatsvc "github.com/alanyang/project-chat/internal/service/chat"
	projectsvc "github.com/alanyang/project-chat/internal/service/project"
	promptsvc "github.com/alanyang/project-chat/internal/service/prompt"
)

// RegisterTools registers all MCP tools on the server.
func RegisterTools(
	s *mcpserver.MCPServer,
	reg *SessionRegistry,
	projectSvc *projectsvc.Service,
	promptSvc *promptsvc.Service,
	chatSvc *chatsvc.Service,
) {
	s.AddTool(mcpmcp.NewTool("send_message",
		mcpmcp.WithDescription("Send a user message to a project's chatbot and return the assistant reply. Both turns are saved to the project history."),
		mcpmcp.WithString("project_id", mcpmcp.Required(), mcpmcp.Description("Project UUID")),
		mcpmcp.WithString("message", mcpmcp.Required(), mcpmcp.Description("User message text")),
	), sendMessageHandler(chatSvc))

	s.AddTool(mcpmcp.NewTool("get_history",
		mcpmcp.WithDescription("Read the project's most recent messages, oldest first."),
		mcpmcp.WithString("project_id", mcpmcp.Required(), mcpmcp.Description("Project UUID")),
		mcpmcp.WithNumber("limit", mcpmcp.Description("Maximum messages to return (default 50, max 200)")),
	), getHistoryHandler(chatSvc))

	s.AddTool(mcpmcp.NewTool("list_prompts",
		mcpmcp.WithDescription("List the instruction prompts attached to a project, newest first."),
		mcpmcp.WithString("project_id", mcpmcp.Required(), mcpmcp.Description("Project UUID")),
	), listPromptsHandler(promptSvc))

	s.AddTool(mcpmcp.NewTool("watch_project",
		mcpmcp.WithDescription("Receive a notifications/message_created notification on this session whenever a message is saved in the project."),
		mcpmcp.WithString("project_id", mcpmcp.Required(), mcpmcp.Description("Project UUID")),
	), watchProjectHandler(reg, projectSvc))
}

// ── Tool handlers ─────────────────────────────────────────────────────────

func sendMessageHandler(chatSvc *chatsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		projectID, user, res := callerAndProject(ctx, req)
		if res != nil {
			return res, nil
		}
		text := mcpmcp.ParseString(req, "message", "")
		if text == "" {
			return mcpmcp.NewToolResultText("error: message is required"), nil
		}

		reply, err := chatSvc.SendMessage(ctx, projectID, user, text)
		if err != nil {
			return errorResult(err), nil
		}
		return jsonResult(reply)
	}
}

func getHistoryHandler(chatSvc *chatsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		projectID, user, res := callerAndProject(ctx, req)
		if res != nil {
			return res, nil
		}

		msgs, err := chatSvc.GetHistory(ctx, projectID, user, mcpmcp.ParseInt(req, "limit", 0))
		if err != nil {
			return errorResult(err), nil
		}
		return jsonResult(msgs)
	}
}

func listPromptsHandler(promptSvc *promptsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		projectID, user, res := callerAndProject(ctx, req)
		if res != nil {
			return res, nil
		}

		prompts, err := promptSvc.List(ctx, projectID, user)
		if err != nil {
			return errorResult(err), nil
		}
		return jsonResult(prompts)
	}
}

func watchProjectHandler(reg *SessionRegistry, projectSvc *projectsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		projectID, user, res := callerAndProject(ctx, req)
		if res != nil {
			return res, nil
		}

		session := mcpserver.ClientSessionFromContext(ctx)
		if session == nil {
			return mcpmcp.NewToolResultText("error: watching requires a session"), nil
		}

		owned, err := projectSvc.OwnerOf(ctx, projectID, user)
		if err != nil {
			return errorResult(err), nil
		}
		if !owned {
			return errorResult(conversation.ErrNotFoundOrForbidden), nil
		}

		reg.Watch(session.SessionID(), projectID)
		return mcpmcp.NewToolResultText(fmt.Sprintf("watching project %s", projectID)), nil
	}
}

// ── helpers ───────────────────────────────────────────────────────────────

// callerAndProject returns a non-nil result when the call cannot proceed.
func callerAndProject(ctx context.Context, req mcpmcp.CallToolRequest) (uuid.UUID, uuid.UUID, *mcpmcp.CallToolResult) {
	user := userFrom(ctx)
	if user == uuid.Nil {
		return uuid.Nil, uuid.Nil, mcpmcp.NewToolResultText("error: missing or invalid X-User-ID")
	}
	projectID, err := uuid.Parse(mcpmcp.ParseString(req, "project_id", ""))
	if err != nil {
		return uuid.Nil, uuid.Nil, mcpmcp.NewToolResultText("error: invalid project_id")
	}
	return projectID, user, nil
}

func errorResult(err error) *mcpmcp.CallToolResult {
	switch {
	case errors.Is(err, conversation.ErrNotFoundOrForbidden):
		return mcpmcp.NewToolResultText("error: project not found or access denied")
	case errors.Is(err, conversation.ErrGenerationFailed):
		return mcpmcp.NewToolResultText("error: failed to generate response")
	default:
		return mcpmcp.NewToolResultText("error: internal server error")
	}
}

func jsonResult(v any) (*mcpmcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return mcpmcp.NewToolResultText(string(data)), nil
}
