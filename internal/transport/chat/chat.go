package chat

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	chatsvc "github.com/alanyang/project-chat/internal/service/chat"
	"github.com/alanyang/project-chat/internal/transport/httpx"
)

// Register mounts the chat endpoints on the authenticated /api group.
// sendMiddleware runs only in front of POST /chat (the idempotency replay
// layer in production).
func Register(api *gin.RouterGroup, svc *chatsvc.Service, sendMiddleware ...gin.HandlerFunc) {
	send := append(append([]gin.HandlerFunc{}, sendMiddleware...), sendMessage(svc))
	api.POST("/projects/:id/chat", send...)
	api.GET("/projects/:id/messages", getHistory(svc))
}

type sendMessageReq struct {
	Message string `json:"message" binding:"required"`
}

func sendMessage(svc *chatsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}

		var req sendMessageReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		reply, err := svc.SendMessage(c.Request.Context(), projectID, httpx.UserID(c), req.Message)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, reply)
	}
}

func getHistory(svc *chatsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}

		limit := 0
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
				return
			}
			limit = n
		}

		msgs, err := svc.GetHistory(c.Request.Context(), projectID, httpx.UserID(c), limit)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"messages": msgs})
	}
}
