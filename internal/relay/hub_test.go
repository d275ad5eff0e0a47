package relay

import (
	"encoding/json"
	"testing"

	"github.com/swapfee/aura-discord-panel-sub000/internal/models"
)

// testConn registers a connection without a live socket. The write pump is
// never started, so frames can be read straight off the send channel.
func testConn(t *testing.T, h *Hub, userID string) *Conn {
	t.Helper()
	c := newConn(nil, userID)
	if !h.register(c) {
		t.Fatal("register() returned false on open hub")
	}
	return c
}

func receivedFrames(c *Conn) []string {
	var frames []string
	for {
		select {
		case payload := <-c.send:
			frames = append(frames, string(payload))
		default:
			return frames
		}
	}
}

func TestBroadcastReachesOnlySubscribedGuild(t *testing.T) {
	h := NewHub()
	subscribed := make([]*Conn, 3)
	for i := range subscribed {
		subscribed[i] = testConn(t, h, "u1")
		h.Subscribe(subscribed[i], "g1")
	}
	other := testConn(t, h, "u2")
	h.Subscribe(other, "g2")
	unsubscribed := testConn(t, h, "u3")

	h.Broadcast("g1", models.QueueUpdateFrame{Type: "queue_update", QueueLength: 7})

	for i, c := range subscribed {
		if got := len(receivedFrames(c)); got != 1 {
			t.Errorf("subscribed[%d] received %d frames, want 1", i, got)
		}
	}
	if got := len(receivedFrames(other)); got != 0 {
		t.Errorf("other-guild connection received %d frames, want 0", got)
	}
	if got := len(receivedFrames(unsubscribed)); got != 0 {
		t.Errorf("unsubscribed connection received %d frames, want 0", got)
	}
}

func TestResubscribeReplacesGuild(t *testing.T) {
	h := NewHub()
	c := testConn(t, h, "u1")

	h.Subscribe(c, "gA")
	h.Subscribe(c, "gB")

	h.Broadcast("gA", models.SongPlayedFrame{Type: "song_played", Title: "One", Artist: "A"})
	if got := len(receivedFrames(c)); got != 0 {
		t.Fatalf("received %d frames for old guild, want 0", got)
	}

	h.Broadcast("gB", models.SongPlayedFrame{Type: "song_played", Title: "Two", Artist: "B"})
	if got := len(receivedFrames(c)); got != 1 {
		t.Fatalf("received %d frames for new guild, want 1", got)
	}
}

func TestIdempotentResubscribe(t *testing.T) {
	h := NewHub()
	c := testConn(t, h, "u1")

	h.Subscribe(c, "g1")
	h.Subscribe(c, "g1")

	if got := h.Subscribers("g1"); got != 1 {
		t.Errorf("Subscribers(g1) = %d, want 1", got)
	}

	h.Broadcast("g1", models.VoiceUpdateFrame{Type: "voice_update", ActiveListeners: 3})
	if got := len(receivedFrames(c)); got != 1 {
		t.Errorf("received %d frames, want exactly 1", got)
	}
}

func TestOrderingPreservedPerConnection(t *testing.T) {
	h := NewHub()
	c := testConn(t, h, "u1")
	h.Subscribe(c, "g1")

	for i := 0; i < 5; i++ {
		h.Broadcast("g1", models.QueueUpdateFrame{Type: "queue_update", QueueLength: i})
	}

	frames := receivedFrames(c)
	if len(frames) != 5 {
		t.Fatalf("received %d frames, want 5", len(frames))
	}
	for i, raw := range frames {
		var frame models.QueueUpdateFrame
		if err := json.Unmarshal([]byte(raw), &frame); err != nil {
			t.Fatalf("frame %d unparseable: %v", i, err)
		}
		if frame.QueueLength != i {
			t.Errorf("frame %d has queueLength %d, want %d", i, frame.QueueLength, i)
		}
	}
}

func TestSlowConnectionDropsFramesInsteadOfBlocking(t *testing.T) {
	h := NewHub()
	c := testConn(t, h, "u1")
	h.Subscribe(c, "g1")

	// Exceed the send buffer without draining; extras must be dropped.
	for i := 0; i < sendBufferSize+10; i++ {
		h.Broadcast("g1", models.QueueUpdateFrame{Type: "queue_update", QueueLength: i})
	}

	frames := receivedFrames(c)
	if len(frames) != sendBufferSize {
		t.Fatalf("received %d frames, want %d buffered", len(frames), sendBufferSize)
	}
	// What was delivered kept its order.
	var first models.QueueUpdateFrame
	if err := json.Unmarshal([]byte(frames[0]), &first); err != nil || first.QueueLength != 0 {
		t.Errorf("first frame = %s, want queueLength 0", frames[0])
	}
}

func TestUnregisterRemovesConnection(t *testing.T) {
	h := NewHub()
	c := testConn(t, h, "u1")
	h.Subscribe(c, "g1")

	h.unregister(c)

	if got := h.ConnCount(); got != 0 {
		t.Errorf("ConnCount() = %d, want 0", got)
	}
	h.Broadcast("g1", models.ConnectedFrame{Type: "connected"})
	// Channel is closed; no frame should have been enqueued.
	if _, ok := <-c.send; ok {
		t.Error("received frame after unregister")
	}

	// Double unregister must not panic.
	h.unregister(c)
}

func TestCloseDrainsRegistry(t *testing.T) {
	h := NewHub()
	testConn(t, h, "u1")
	testConn(t, h, "u2")

	h.Close()

	if got := h.ConnCount(); got != 0 {
		t.Errorf("ConnCount() = %d, want 0", got)
	}
	if h.register(newConn(nil, "u3")) {
		t.Error("register() succeeded on closed hub")
	}
}

func TestBroadcastEmptyGuildMatchesNothing(t *testing.T) {
	h := NewHub()
	c := testConn(t, h, "u1")

	h.Broadcast("", models.ConnectedFrame{Type: "connected"})

	if got := len(receivedFrames(c)); got != 0 {
		t.Errorf("received %d frames for empty guild broadcast, want 0", got)
	}
}
