package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alanyang/project-chat/internal/metrics"
	portidempotency "github.com/alanyang/project-chat/internal/port/idempotency"
	"github.com/alanyang/project-chat/internal/transport/httpx"
)

const IdempotencyHeader = "Idempotency-Key"

// noisyPaths are scrape and probe paths logged at Debug to keep Info clean.
var noisyPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if c.Request.Method == http.MethodOptions {
			return
		}
		level := slog.LevelInfo
		if noisyPaths[c.Request.URL.Path] {
			level = slog.LevelDebug
		}

		slog.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+httpx.UserHeader+", "+IdempotencyHeader)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// MetricsMiddleware labels requests by route template so IDs in the path do
// not explode cardinality.
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordHTTPRequest(route, c.Request.Method, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

type storedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

type captureWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// IdempotencyMiddleware replays the first successful response for a repeated
// Idempotency-Key. Keys are scoped to the caller and the project in the path.
// The key is reserved before the handler runs, so a duplicate that arrives
// while the first request is in flight gets 409 instead of a second run.
// Requests without the header pass straight through; failed responses release
// the key so the client can retry.
func IdempotencyMiddleware(store portidempotency.Store, m *metrics.Metrics, opType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		user := httpx.UserID(c)
		scoped := user.String() + ":" + opType + ":" + c.Param("id") + ":" + key

		if replay(c, store, m, scoped) {
			return
		}

		reserved, err := store.Reserve(ctx, scoped, user, opType)
		if err != nil {
			slog.ErrorContext(ctx, "idempotency reserve failed", "error", err)
			c.Next()
			return
		}
		if !reserved {
			// Lost the race: the winner may have completed in the meantime.
			if replay(c, store, m, scoped) {
				return
			}
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "request with this " + IdempotencyHeader + " is already in progress"})
			return
		}

		// Store and Release must run even if the client has gone away.
		bg := context.WithoutCancel(ctx)
		completed := false
		defer func() {
			if completed {
				return
			}
			if err := store.Release(bg, scoped); err != nil {
				slog.ErrorContext(ctx, "idempotency release failed", "error", err)
			}
		}()

		cw := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = cw
		c.Next()

		status := cw.Status()
		if status < 200 || status >= 300 || !json.Valid(cw.buf.Bytes()) {
			return
		}
		rec, err := json.Marshal(storedResponse{Status: status, Body: cw.buf.Bytes()})
		if err != nil {
			return
		}
		if err := store.Store(bg, scoped, user, opType, rec); err != nil {
			slog.ErrorContext(ctx, "idempotency store failed", "error", err)
			return
		}
		completed = true
	}
}

// replay writes a stored response for key and reports whether it did.
func replay(c *gin.Context, store portidempotency.Store, m *metrics.Metrics, key string) bool {
	ctx := c.Request.Context()
	raw, found, err := store.Check(ctx, key)
	if err != nil {
		slog.ErrorContext(ctx, "idempotency lookup failed", "error", err)
		return false
	}
	if !found {
		return false
	}
	var prev storedResponse
	if err := json.Unmarshal(raw, &prev); err != nil {
		slog.ErrorContext(ctx, "idempotency record unreadable", "error", err)
		return false
	}
	m.RecordReplay()
	c.Header("Idempotent-Replayed", "true")
	c.Data(prev.Status, "application/json; charset=utf-8", prev.Body)
	c.Abort()
	return true
}
