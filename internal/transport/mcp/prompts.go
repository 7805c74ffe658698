package mcp

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	chatsvc "github.com/alanyang/project-chat/internal/service/chat"
	promptsvc "github.com/alanyang/project-chat/internal/service/prompt"
)

// RegisterPrompts exposes a project's combined instructions as an MCP prompt,
// rendered exactly as the chatbot's system turn.
func RegisterPrompts(s *mcpserver.MCPServer, promptSvc *promptsvc.Service) {
	s.AddPrompt(
		mcpmcp.NewPrompt("project_instructions",
			mcpmcp.WithPromptDescription("The instruction block a project's chatbot runs with."),
			mcpmcp.WithArgument("project_id",
				mcpmcp.ArgumentDescription("Project UUID"),
				mcpmcp.RequiredArgument(),
			),
		),
		instructionsHandler(promptSvc),
	)
}

func instructionsHandler(promptSvc *promptsvc.Service) mcpserver.PromptHandlerFunc {
	return func(ctx context.Context, req mcpmcp.GetPromptRequest) (*mcpmcp.GetPromptResult, error) {
		projectID, err := uuid.Parse(req.Params.Arguments["project_id"])
		if err != nil {
			return nil, fmt.Errorf("invalid project_id: %w", err)
		}
		user := userFrom(ctx)
		if user == uuid.Nil {
			return nil, fmt.Errorf("missing or invalid X-User-ID")
		}

		prompts, err := promptSvc.List(ctx, projectID, user)
		if err != nil {
			return nil, fmt.Errorf("list prompts: %w", err)
		}

		return mcpmcp.NewGetPromptResult(
			fmt.Sprintf("Instructions for project %s", projectID),
			[]mcpmcp.PromptMessage{
				mcpmcp.NewPromptMessage(
					mcpmcp.RoleUser,
					mcpmcp.TextContent{
						Type: "text",
						Text: chatsvc.SystemText(prompts),
					},
				),
			},
		), nil
	}
}
