package relay

import (
	"github.com/gorilla/websocket"
)

// sendBufferSize bounds the outbound queue per connection. A client that
// falls this far behind starts losing frames; live stats are self-correcting
// so delivery stays best-effort.
const sendBufferSize = 16

// Conn is one authenticated dashboard socket. The subscribed guild is
// guarded by the hub's mutex; only hub methods touch it.
type Conn struct {
	ws     *websocket.Conn
	send   chan []byte
	userID string

	guildID string
}

func newConn(ws *websocket.Conn, userID string) *Conn {
	return &Conn{
		ws:     ws,
		send:   make(chan []byte, sendBufferSize),
		userID: userID,
	}
}

// trySend enqueues a frame without blocking, dropping it when the buffer is
// full. Frames for one connection are written in enqueue order.
func (c *Conn) trySend(payload []byte) {
	select {
	case c.send <- payload:
	default:
	}
}

// writePump is the connection's single writer. It drains the send channel
// until the hub closes it, then closes the socket.
func (c *Conn) writePump() {
	defer c.ws.Close()
	for payload := range c.send {
		if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}
