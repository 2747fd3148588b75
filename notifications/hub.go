package notifications

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/linesmerrill/lost-found-api/models"
)

const writeWait = 10 * time.Second

type hubClient struct {
	conn *websocket.Conn
	// gorilla connections support a single concurrent writer
	mu sync.Mutex
}

func (c *hubClient) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// Hub pushes notifications to recipients connected over a websocket
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]map[*hubClient]struct{}
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: map[string]map[*hubClient]struct{}{},
	}
}

// ServeWS upgrades the request and keeps the connection registered for
// userID until the client goes away
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Warnw("websocket upgrade failed", "userId", userID, "error", err)
		return
	}
	c := &hubClient{conn: conn}
	h.register(userID, c)
	zap.S().Debugf("user %s connected to notifications", userID)

	defer func() {
		h.unregister(userID, c)
		conn.Close()
		zap.S().Debugf("user %s disconnected from notifications", userID)
	}()

	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

// Deliver writes the notification to every connection of the recipient.
// A recipient without connections is not an error.
func (h *Hub) Deliver(ctx context.Context, n *models.Notification) error {
	var lastErr error
	for _, c := range h.connections(n.UserID) {
		err := c.writeJSON(map[string]interface{}{
			"event": "new_notification",
			"data":  n,
		})
		if err != nil {
			lastErr = err
			h.unregister(n.UserID, c)
			c.conn.Close()
		}
	}
	return lastErr
}

// Connected returns the number of open connections for userID
func (h *Hub) Connected(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[userID])
}

func (h *Hub) connections(userID string) []*hubClient {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*hubClient, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		out = append(out, c)
	}
	return out
}

func (h *Hub) register(userID string, c *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = map[*hubClient]struct{}{}
	}
	h.clients[userID][c] = struct{}{}
}

func (h *Hub) unregister(userID string, c *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients[userID], c)
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
}
