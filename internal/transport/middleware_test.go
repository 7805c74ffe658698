package transport_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/alanyang/project-chat/internal/adapter/memory"
	"github.com/alanyang/project-chat/internal/metrics"
	"github.com/alanyang/project-chat/internal/mocks"
	chatsvc "github.com/alanyang/project-chat/internal/service/chat"
	projectsvc "github.com/alanyang/project-chat/internal/service/project"
	promptsvc "github.com/alanyang/project-chat/internal/service/prompt"
	"github.com/alanyang/project-chat/internal/transport"
	"github.com/alanyang/project-chat/internal/transport/httpx"
)

func init() { gin.SetMode(gin.TestMode) }

// ── IdempotencyMiddleware ─────────────────────────────────────────────────────

func newIdempotentEngine(t *testing.T, handler gin.HandlerFunc) (*gin.Engine, *metrics.Metrics) {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	r := gin.New()
	r.POST("/projects/:id/send", httpx.RequireUser(),
		transport.IdempotencyMiddleware(memory.NewIdempotencyStore(time.Hour), m, "send_message"),
		handler)
	return r, m
}

func countingHandler(status int) (gin.HandlerFunc, *atomic.Int32) {
	var runs atomic.Int32
	return func(c *gin.Context) {
		n := runs.Add(1)
		c.JSON(status, gin.H{"run": n})
	}, &runs
}

func post(r http.Handler, user, project uuid.UUID, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/projects/"+project.String()+"/send", strings.NewReader(`{}`))
	req.Header.Set(httpx.UserHeader, user.String())
	if key != "" {
		req.Header.Set(transport.IdempotencyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysFirstSuccess(t *testing.T) {
	h, runs := countingHandler(http.StatusOK)
	r, m := newIdempotentEngine(t, h)
	user, project := uuid.New(), uuid.New()

	first := post(r, user, project, "k1")
	second := post(r, user, project, "k1")

	assert.Equal(t, int32(1), runs.Load())
	assert.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.IdempotentReplaysTotal))
}

func TestIdempotency_ScopedPerUser(t *testing.T) {
	h, runs := countingHandler(http.StatusOK)
	r, _ := newIdempotentEngine(t, h)
	project := uuid.New()

	post(r, uuid.New(), project, "shared")
	post(r, uuid.New(), project, "shared")
	assert.Equal(t, int32(2), runs.Load())
}

func TestIdempotency_ScopedPerProject(t *testing.T) {
	h, runs := countingHandler(http.StatusOK)
	r, _ := newIdempotentEngine(t, h)
	user := uuid.New()

	post(r, user, uuid.New(), "shared")
	w := post(r, user, uuid.New(), "shared")
	assert.Equal(t, int32(2), runs.Load())
	assert.Empty(t, w.Header().Get("Idempotent-Replayed"))
}

func TestIdempotency_NoKeyPassesThrough(t *testing.T) {
	h, runs := countingHandler(http.StatusOK)
	r, _ := newIdempotentEngine(t, h)
	user, project := uuid.New(), uuid.New()

	post(r, user, project, "")
	post(r, user, project, "")
	assert.Equal(t, int32(2), runs.Load())
}

func TestIdempotency_FailuresAreNotRemembered(t *testing.T) {
	h, runs := countingHandler(http.StatusInternalServerError)
	r, _ := newIdempotentEngine(t, h)
	user, project := uuid.New(), uuid.New()

	post(r, user, project, "k1")
	w := post(r, user, project, "k1")
	assert.Equal(t, int32(2), runs.Load())
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Header().Get("Idempotent-Replayed"))
}

func TestIdempotency_ConcurrentDuplicateRunsOnce(t *testing.T) {
	var runs atomic.Int32
	entered := make(chan struct{})
	proceed := make(chan struct{})
	r, _ := newIdempotentEngine(t, func(c *gin.Context) {
		runs.Add(1)
		close(entered)
		<-proceed
		c.JSON(http.StatusOK, gin.H{"message": "only once"})
	})
	user, project := uuid.New(), uuid.New()

	firstDone := make(chan *httptest.ResponseRecorder, 1)
	go func() { firstDone <- post(r, user, project, "dup") }()
	<-entered

	inFlight := post(r, user, project, "dup")
	assert.Equal(t, http.StatusConflict, inFlight.Code)
	assert.Contains(t, inFlight.Body.String(), "already in progress")

	close(proceed)
	first := <-firstDone
	require.Equal(t, http.StatusOK, first.Code)

	later := post(r, user, project, "dup")
	assert.Equal(t, http.StatusOK, later.Code)
	assert.Equal(t, "true", later.Header().Get("Idempotent-Replayed"))
	assert.JSONEq(t, first.Body.String(), later.Body.String())
	assert.Equal(t, int32(1), runs.Load())
}

func TestIdempotency_PanicReleasesKey(t *testing.T) {
	var runs atomic.Int32
	m := metrics.New(prometheus.NewRegistry())
	r := gin.New()
	r.Use(gin.Recovery())
	r.POST("/projects/:id/send", httpx.RequireUser(),
		transport.IdempotencyMiddleware(memory.NewIdempotencyStore(time.Hour), m, "send_message"),
		func(c *gin.Context) {
			if runs.Add(1) == 1 {
				panic("handler blew up")
			}
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})
	user, project := uuid.New(), uuid.New()

	assert.Equal(t, http.StatusInternalServerError, post(r, user, project, "k").Code)
	assert.Equal(t, http.StatusOK, post(r, user, project, "k").Code)
	assert.Equal(t, int32(2), runs.Load())
}

// ── Router ────────────────────────────────────────────────────────────────────

func newTestRouter(t *testing.T) (*gin.Engine, *prometheus.Registry) {
	t.Helper()
	ctrl := gomock.NewController(t)
	projects := mocks.NewMockProjectRepository(ctrl)
	prompts := mocks.NewMockPromptRepository(ctrl)
	messages := mocks.NewMockMessageRepository(ctrl)
	provider := mocks.NewMockProvider(ctrl)
	bus := memory.NewEventBus(4)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	pSvc := projectsvc.NewService(projects)
	prSvc := promptsvc.NewService(prompts, pSvc, bus)
	cSvc := chatsvc.NewService(pSvc, messages, prompts, provider, bus)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	r := transport.NewRouter(ctx, pSvc, prSvc, cSvc, bus, memory.NewIdempotencyStore(time.Hour), m, reg, nil)
	gin.SetMode(gin.TestMode)
	return r, reg
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `chat_http_requests_total{method="GET",route="/health",status="200"} 1`)
}

func TestRouter_APIRequiresUser(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/projects/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/projects/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), httpx.UserHeader)
}
