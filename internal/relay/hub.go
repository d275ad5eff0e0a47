package relay

import (
	"encoding/json"
	"sync"
)

// Hub is the registry of open connections and the fan-out broadcaster.
// A connection is subscribed to at most one guild at a time; resubscribing
// replaces the previous guild. There is no explicit unsubscribe: closing
// the connection removes it from the registry.
type Hub struct {
	mu     sync.Mutex
	conns  map[*Conn]struct{}
	closed bool
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		conns: make(map[*Conn]struct{}),
	}
}

// register adds an authenticated connection to the registry.
// Returns false once the hub has been closed.
func (h *Hub) register(c *Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.conns[c] = struct{}{}
	return true
}

// unregister removes a connection and closes its send channel, which stops
// its write pump and closes the socket. Safe to call more than once.
func (h *Hub) unregister(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[c]; !ok {
		return
	}
	delete(h.conns, c)
	close(c.send)
}

// Subscribe sets the connection's guild, replacing any previous
// subscription. Idempotent; a no-op for connections no longer registered.
func (h *Hub) Subscribe(c *Conn, guildID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[c]; ok {
		c.guildID = guildID
	}
}

// Broadcast serializes the frame once and enqueues it on every open
// connection subscribed to the guild. Delivery is best-effort per
// connection; a full outbound buffer drops the frame rather than blocking.
func (h *Hub) Broadcast(guildID string, frame any) {
	if guildID == "" {
		return
	}
	payload, err := json.Marshal(frame)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.conns {
		if c.guildID == guildID {
			c.trySend(payload)
		}
	}
}

// Subscribers returns how many open connections are subscribed to the guild.
func (h *Hub) Subscribers(guildID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for c := range h.conns {
		if guildID != "" && c.guildID == guildID {
			n++
		}
	}
	return n
}

// ConnCount returns the number of open connections.
func (h *Hub) ConnCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Close drains the registry, closing every connection. Used at shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.conns {
		delete(h.conns, c)
		close(c.send)
	}
}
