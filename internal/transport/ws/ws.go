package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/alanyang/project-chat/internal/domain/event"
	portproject "github.com/alanyang/project-chat/internal/port/project"
	"github.com/alanyang/project-chat/internal/transport/httpx"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex // gorilla allows one concurrent writer
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub fans project events out to the websocket clients watching that project.
type Hub struct {
	owners portproject.OwnershipChecker

	mu      sync.RWMutex
	clients map[uuid.UUID]map[*client]struct{}
}

func NewHub(owners portproject.OwnershipChecker) *Hub {
	return &Hub{
		owners:  owners,
		clients: make(map[uuid.UUID]map[*client]struct{}),
	}
}

// Register mounts GET /projects/:id/ws on the authenticated /api group.
func (h *Hub) Register(api *gin.RouterGroup) {
	api.GET("/projects/:id/ws", h.handleWS)
}

func (h *Hub) handleWS(c *gin.Context) {
	projectID, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	owned, err := h.owners.OwnerOf(c.Request.Context(), projectID, httpx.UserID(c))
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	if !owned {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found or access denied"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	cl := &client{conn: conn}
	h.add(projectID, cl)
	defer func() {
		h.remove(projectID, cl)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *Hub) add(projectID uuid.UUID, cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[projectID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[projectID] = set
	}
	set[cl] = struct{}{}
}

func (h *Hub) remove(projectID uuid.UUID, cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[projectID]
	delete(set, cl)
	if len(set) == 0 {
		delete(h.clients, projectID)
	}
}

// Clients reports how many sockets are watching projectID.
func (h *Hub) Clients(projectID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[projectID])
}

// Broadcast sends e to every client of e.ProjectID. Write failures are logged;
// the reader loop notices the dead connection and removes it.
func (h *Hub) Broadcast(e event.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		slog.Error("websocket broadcast marshal failed", "error", err)
		return
	}

	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients[e.ProjectID]))
	for cl := range h.clients[e.ProjectID] {
		targets = append(targets, cl)
	}
	h.mu.RUnlock()

	for _, cl := range targets {
		if err := cl.write(data); err != nil {
			slog.Error("websocket write failed", "project_id", e.ProjectID, "error", err)
		}
	}
}
