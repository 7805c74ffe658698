// Package httpx holds the request helpers shared by every HTTP handler:
// caller identity and the mapping from service errors to responses.
package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/alanyang/project-chat/internal/domain/conversation"
)

const (
	UserHeader = "X-User-ID"
	userKey    = "user_id"
)

// RequireUser rejects requests without a valid X-User-ID header and stores
// the parsed ID on the context for UserID.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.GetHeader(UserHeader))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid " + UserHeader})
			return
		}
		c.Set(userKey, id)
		c.Next()
	}
}

// UserID returns the caller set by RequireUser, or uuid.Nil outside it.
func UserID(c *gin.Context) uuid.UUID {
	v, ok := c.Get(userKey)
	if !ok {
		return uuid.Nil
	}
	id, _ := v.(uuid.UUID)
	return id
}

// ParamID parses a UUID path parameter. A malformed ID gets the same 404 as
// an unknown or foreign one.
func ParamID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		WriteError(c, conversation.ErrNotFoundOrForbidden)
		return uuid.Nil, false
	}
	return id, true
}

// WriteError maps a service error onto the public error body. Only the
// ownership and generation failures are distinguished; everything else is a
// generic 500 and the detail goes to the log.
func WriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, conversation.ErrNotFoundOrForbidden):
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found or access denied"})
	case errors.Is(err, conversation.ErrGenerationFailed):
		slog.ErrorContext(c.Request.Context(), "generation failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate response"})
	default:
		slog.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
