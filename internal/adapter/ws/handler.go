// Package ws streams planner progress to WebSocket clients.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/Strob0t/VoyageMind/internal/logger"
)

const (
	writeTimeout = 5 * time.Second

	// sendBuffer is how many messages a client may fall behind before it is
	// disconnected.
	sendBuffer = 64
)

// Message is the envelope for all WebSocket messages.
type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

// conn wraps a single WebSocket connection. An empty sessionID receives
// every plan's events. Messages queue on send and a per-connection writer
// drains them, so a slow client never holds up the broadcaster.
type conn struct {
	ws        *websocket.Conn
	cancel    context.CancelFunc
	sessionID string
	send      chan []byte
}

func (c *conn) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-c.send:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.ws.Write(wctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				slog.Debug("websocket write failed", "session_id", c.sessionID, "error", err)
				c.cancel()
				return
			}
		}
	}
}

func (c *conn) wants(sessionID string) bool {
	return c.sessionID == "" || c.sessionID == sessionID
}

// Hub manages all active WebSocket connections and broadcasts messages.
type Hub struct {
	mu    sync.RWMutex
	conns map[*conn]struct{}
	opts  websocket.AcceptOptions
}

// NewHub creates a hub that accepts connections from allowedOrigin.
// "*" or "" accepts any origin.
func NewHub(allowedOrigin string) *Hub {
	h := &Hub{conns: make(map[*conn]struct{})}
	if allowedOrigin == "" || allowedOrigin == "*" {
		h.opts.InsecureSkipVerify = true
	} else if u, err := url.Parse(allowedOrigin); err == nil && u.Host != "" {
		h.opts.OriginPatterns = []string{u.Host}
	}
	return h
}

// HandleWS upgrades the request and keeps the connection registered until
// the client goes away. ?session_id= restricts the stream to one plan.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &h.opts)
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	c := &conn{
		ws:        ws,
		cancel:    cancel,
		sessionID: r.URL.Query().Get("session_id"),
		send:      make(chan []byte, sendBuffer),
	}

	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
	go c.writeLoop(ctx)

	slog.Info("websocket connected", "remote", r.RemoteAddr, "session_id", c.sessionID)

	defer func() {
		h.remove(c)
		_ = ws.Close(websocket.StatusNormalClosure, "")
	}()
	// Clients never send anything meaningful; reading detects disconnects.
	for {
		if _, _, err := ws.Read(ctx); err != nil {
			return
		}
	}
}

// Broadcast queues a message for every connection subscribed to its
// session. It never blocks: a client whose queue is full is disconnected.
func (h *Hub) Broadcast(ctx context.Context, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.ErrorContext(ctx, "websocket marshal failed", "error", err)
		return
	}

	h.mu.RLock()
	targets := make([]*conn, 0, len(h.conns))
	for c := range h.conns {
		if c.wants(msg.SessionID) {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		select {
		case c.send <- data:
		default:
			slog.WarnContext(ctx, "websocket client too slow, disconnecting", "session_id", c.sessionID)
			h.remove(c)
		}
	}
}

// ConnectionCount returns the number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := h.conns
	h.conns = make(map[*conn]struct{})
	h.mu.Unlock()

	for c := range conns {
		_ = c.ws.Close(websocket.StatusGoingAway, "server shutting down")
		c.cancel()
	}
}

func (h *Hub) remove(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[c]; ok {
		c.cancel()
		delete(h.conns, c)
		slog.Info("websocket disconnected", "session_id", c.sessionID)
	}
}

// sessionOf reads the session the planner attached to ctx.
func sessionOf(ctx context.Context) string {
	return logger.SessionID(ctx)
}
