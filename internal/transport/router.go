package transport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alanyang/project-chat/internal/domain/event"
	"github.com/alanyang/project-chat/internal/metrics"
	porteventbus "github.com/alanyang/project-chat/internal/port/eventbus"
	portidempotency "github.com/alanyang/project-chat/internal/port/idempotency"
	chatsvc "github.com/alanyang/project-chat/internal/service/chat"
	projectsvc "github.com/alanyang/project-chat/internal/service/project"
	promptsvc "github.com/alanyang/project-chat/internal/service/prompt"

	chathandler "github.com/alanyang/project-chat/internal/transport/chat"
	"github.com/alanyang/project-chat/internal/transport/httpx"
	mcptransport "github.com/alanyang/project-chat/internal/transport/mcp"
	projecthandler "github.com/alanyang/project-chat/internal/transport/project"
	prompthandler "github.com/alanyang/project-chat/internal/transport/prompt"
	wshandler "github.com/alanyang/project-chat/internal/transport/ws"
)

func NewRouter(
	ctx context.Context,
	projectSvc *projectsvc.Service,
	promptSvc *promptsvc.Service,
	chatSvc *chatsvc.Service,
	eventBus porteventbus.EventBus,
	idem portidempotency.Store,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	mcpSrv *mcptransport.Server,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestLogger())
	r.Use(CORSMiddleware())
	r.Use(MetricsMiddleware(m))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	if mcpSrv != nil {
		r.Any("/mcp", gin.WrapH(mcpSrv.Handler()))
	}

	api := r.Group("/api", httpx.RequireUser())

	projecthandler.Register(api.Group("/projects"), projectSvc)
	prompthandler.Register(api, promptSvc)
	chathandler.Register(api, chatSvc, IdempotencyMiddleware(idem, m, "send_message"))

	hub := wshandler.NewHub(projectSvc)
	hub.Register(api)

	// One subscription on the chat channel feeds both live surfaces; each
	// filters by project on its own.
	if _, err := eventBus.Subscribe(ctx, event.ChannelChat, func(ctx context.Context, e event.Event) {
		hub.Broadcast(e)
		if mcpSrv != nil {
			if err := mcpSrv.Registry().NotifyProject(ctx, e); err != nil {
				slog.ErrorContext(ctx, "mcp notify failed", "project_id", e.ProjectID, "error", err)
			}
		}
	}); err != nil {
		slog.Error("failed to subscribe chat channel", "error", err)
	}

	return r
}
