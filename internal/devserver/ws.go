package devserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/slicemaster/storefront/internal/order"
	"github.com/slicemaster/storefront/pkg/auth"
	"github.com/slicemaster/storefront/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// feedEnvelope is the JSON frame shape in both directions on /ws/orders.
type feedEnvelope struct {
	Type          string       `json:"type"`
	OrderID       string       `json:"orderId"`
	Status        order.Status `json:"status,omitempty"`
	EstimatedTime string       `json:"estimatedTime,omitempty"`
}

// feedClient is one connected order-feed consumer with its subscription set.
type feedClient struct {
	hub    *hub
	conn   *websocket.Conn
	userID string
	send   chan feedEnvelope

	mu   sync.Mutex
	subs map[string]struct{}
}

func (c *feedClient) subscribed(orderID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.subs[orderID]
	return ok
}

// readPump consumes SUBSCRIBE/UNSUBSCRIBE commands until the connection
// drops.
func (c *feedClient) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		var env feedEnvelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				logger.Debug("devserver: feed client read", "error", err)
			}
			return
		}
		c.mu.Lock()
		switch env.Type {
		case "SUBSCRIBE":
			c.subs[env.OrderID] = struct{}{}
		case "UNSUBSCRIBE":
			delete(c.subs, env.OrderID)
		}
		c.mu.Unlock()
	}
}

// writePump serializes all writes for one client and keeps the connection
// alive with pings.
func (c *feedClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case env, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			payload, err := json.Marshal(env)
			if err != nil {
				logger.Warn("devserver: marshal feed frame", "error", err)
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// hub tracks connected feed clients and fans status frames out to the ones
// subscribed to the order in question.
type hub struct {
	mu      sync.Mutex
	clients map[*feedClient]struct{}
}

func newHub() *hub {
	return &hub{clients: map[*feedClient]struct{}{}}
}

func (h *hub) register(c *feedClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	feedClients.Inc()
}

func (h *hub) unregister(c *feedClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		feedClients.Dec()
	}
	h.mu.Unlock()
}

func (h *hub) push(orderID string, env feedEnvelope) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if !c.subscribed(orderID) {
			continue
		}
		select {
		case c.send <- env:
		default:
			// Slow consumer; drop the frame rather than block the push.
		}
	}
}

// handleWS authenticates via the token query parameter and upgrades to the
// order feed.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.ValidateToken(r.URL.Query().Get("token"))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or missing token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("devserver: feed upgrade", "error", err)
		return
	}

	c := &feedClient{
		hub:    s.hub,
		conn:   conn,
		userID: claims.UserID,
		send:   make(chan feedEnvelope, 16),
		subs:   map[string]struct{}{},
	}
	s.hub.register(c)
	go c.writePump()
	go c.readPump()
}
