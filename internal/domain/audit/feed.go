package audit

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"passportdesk/internal/pkg/jwt"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // configure in prod
}

// feedEvent is what connected consoles receive for each appended record.
type feedEvent struct {
	Type  string `json:"type"`
	Entry any    `json:"entry"`
}

type connection struct {
	actorID int64
	conn    *websocket.Conn
	send    chan []byte
}

// Hub pushes freshly appended audit records to connected admin consoles.
type Hub struct {
	mu          sync.RWMutex
	connections map[*connection]struct{}
}

func NewHub() *Hub {
	return &Hub{connections: make(map[*connection]struct{})}
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c] = struct{}{}
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[c]; ok {
		delete(h.connections, c)
		close(c.send)
	}
}

// Broadcast sends a new record to every connected console.
func (h *Hub) Broadcast(rec *Log) {
	data, err := json.Marshal(feedEvent{Type: "audit_entry", Entry: toDTO(*rec)})
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.connections {
		select {
		case c.send <- data:
		default:
			// Client too slow — skip
		}
	}
}

// FeedHandler upgrades admin consoles to the live audit feed.
// Endpoint: GET /api/v1/audit/feed?token=JWT (websockets cannot send headers)
type FeedHandler struct {
	hub    *Hub
	tokens *jwt.Service
}

func NewFeedHandler(hub *Hub, tokens *jwt.Service) *FeedHandler {
	return &FeedHandler{hub: hub, tokens: tokens}
}

func (h *FeedHandler) Handle(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "token is required"})
		return
	}
	claims, err := h.tokens.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid token"})
		return
	}
	if !claims.Admin {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "admin access required"})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("audit_feed_upgrade_failed actor=%d error=%q", claims.ActorID, err)
		return
	}

	conn := &connection{actorID: claims.ActorID, conn: ws, send: make(chan []byte, 64)}
	h.hub.register(conn)

	go h.writePump(conn)
	go h.readPump(conn)
}

func (h *FeedHandler) writePump(c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound messages; it exists to process pongs and to
// notice the close.
func (h *FeedHandler) readPump(c *connection) {
	defer func() {
		h.hub.unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
