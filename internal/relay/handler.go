package relay

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/swapfee/aura-discord-panel-sub000/internal/logging"
	"github.com/swapfee/aura-discord-panel-sub000/internal/services"
)

// maxMessageBytes caps inbound client messages; subscribe requests are tiny.
const maxMessageBytes = 1024

// connectedFrame is the acknowledgment sent once after successful auth.
var connectedFrame = []byte(`{"type":"connected"}`)

// clientMessage is the only inbound shape the relay recognizes.
// Anything that fails to parse or carries another type is ignored.
type clientMessage struct {
	Type    string `json:"type"`
	GuildID string `json:"guildId"`
}

// Handler upgrades dashboard requests to websockets, authenticates them
// against the session cookie, and runs the connection lifecycle.
type Handler struct {
	hub      *Hub
	auth     *services.AuthService
	upgrader websocket.Upgrader
}

// NewHandler creates a Handler for the given hub. Cross-origin upgrades are
// only accepted from the allowed origins.
func NewHandler(hub *Hub, auth *services.AuthService, allowedOrigins []string) *Handler {
	allowed := make(map[string]bool)
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return &Handler{
		hub:  hub,
		auth: auth,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: 10 * time.Second,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin]
			},
		},
	}
}

// ServeHTTP runs the per-connection state machine: upgrade, authenticate,
// then read subscribe messages until the socket closes. A connection that
// fails authentication is closed without any payload, indistinguishable on
// the wire from a network drop.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		return
	}

	token, ok := SessionTokenFromHeader(r.Header.Get("Cookie"))
	if !ok {
		logging.LogSecurityEvent(r.Context(), logging.SecurityEventWSAuthFailed, "socket rejected: missing session cookie")
		ws.Close()
		return
	}

	claims, err := h.auth.ValidateToken(token)
	if err != nil {
		logging.LogSecurityEvent(r.Context(), logging.SecurityEventWSAuthFailed, "socket rejected: invalid session token")
		ws.Close()
		return
	}

	c := newConn(ws, claims.UserID)
	if !h.hub.register(c) {
		ws.Close()
		return
	}
	go c.writePump()

	// The ack is always the connection's first frame: broadcasts cannot
	// reach it before the first subscribe, which the read loop below applies.
	c.trySend(connectedFrame)

	h.readLoop(c)
}

func (h *Handler) readLoop(c *Conn) {
	defer h.hub.unregister(c)
	c.ws.SetReadLimit(maxMessageBytes)

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			// Malformed messages are dropped; the connection stays open.
			continue
		}
		if msg.Type == "subscribe" && msg.GuildID != "" {
			h.hub.Subscribe(c, msg.GuildID)
		}
	}
}
