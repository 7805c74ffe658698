package prompt

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainprompt "github.com/alanyang/project-chat/internal/domain/prompt"
	promptsvc "github.com/alanyang/project-chat/internal/service/prompt"
	"github.com/alanyang/project-chat/internal/transport/httpx"
)

// Register mounts the prompt endpoints on the authenticated /api group.
// Creation and listing hang off the owning project; deletion is addressed by
// prompt ID alone.
func Register(api *gin.RouterGroup, svc *promptsvc.Service) {
	api.POST("/projects/:id/prompts", createPrompt(svc))
	api.GET("/projects/:id/prompts", listPrompts(svc))
	api.DELETE("/prompts/:promptId", deletePrompt(svc))
}

type createPromptReq struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

func createPrompt(svc *promptsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}

		var req createPromptReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		p, err := svc.Create(c.Request.Context(), projectID, httpx.UserID(c), req.Title, req.Content)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"prompt": p})
	}
}

func listPrompts(svc *promptsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}

		prompts, err := svc.List(c.Request.Context(), projectID, httpx.UserID(c))
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		if prompts == nil {
			prompts = []domainprompt.Prompt{}
		}
		c.JSON(http.StatusOK, gin.H{"prompts": prompts})
	}
}

func deletePrompt(svc *promptsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		promptID, ok := httpx.ParamID(c, "promptId")
		if !ok {
			return
		}

		if err := svc.Delete(c.Request.Context(), promptID, httpx.UserID(c)); err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
