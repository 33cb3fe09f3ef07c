package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"quickpoll/internal/config"
	"quickpoll/internal/router"
	"quickpoll/pkg/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The service sits behind the auth proxy, which enforces origins.
		return true
	},
	HandshakeTimeout: 10 * time.Second,
}

// Handler upgrades HTTP requests to WebSocket connections and pumps inbound
// events into the router. Authentication happens upstream: the auth proxy
// sets the username header, and the handler only trusts it.
type Handler struct {
	router *router.Router
	cfg    *config.WebSocketConfig
}

// NewHandler creates a WebSocket handler.
func NewHandler(eventRouter *router.Router, cfg *config.WebSocketConfig) *Handler {
	return &Handler{router: eventRouter, cfg: cfg}
}

// HandleWebSocket handles a connection request: resolve the authenticated
// username, upgrade, assign a fresh session id and run the read loop until
// the peer goes away.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	username := r.Header.Get(h.cfg.AuthUserHeader)
	if username == "" {
		http.Error(w, "Missing authenticated user", http.StatusUnauthorized)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	sessionID := uuid.New().String()
	conn := NewConn(wsConn, username, sessionID, h.cfg.BufferSize, h.cfg.WriteTimeout)

	h.router.Connect(conn)
	h.handleConnection(conn)
}

// handleConnection runs the per-connection read loop with heartbeat
// monitoring. The read loop is the single place a disconnect is detected;
// everything downstream of it happens through router.Disconnect.
func (h *Handler) handleConnection(conn *Conn) {
	defer func() {
		h.router.Disconnect(conn)
		_ = conn.Close()
	}()

	if err := conn.conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout)); err != nil {
		log.Printf("Failed to set read deadline: %v", err)
		return
	}
	conn.conn.SetPongHandler(func(string) error {
		return conn.conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	})

	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ticker.C:
				deadline := time.Now().Add(h.cfg.WriteTimeout)
				if err := conn.conn.WriteControl(websocket.PingMessage, []byte{}, deadline); err != nil {
					return
				}
			case <-conn.ctx.Done():
				return
			}
		}
	}()

	for {
		messageType, data, err := conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error: session=%s err=%v", conn.SessionID(), err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var req types.Request
		if err := json.Unmarshal(data, &req); err != nil {
			log.Printf("Malformed request: session=%s err=%v", conn.SessionID(), err)
			continue
		}
		h.router.HandleEvent(context.Background(), conn, &req)
	}
}
