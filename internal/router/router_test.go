package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/swapfee/aura-discord-panel-sub000/internal/config"
	"github.com/swapfee/aura-discord-panel-sub000/internal/database"
	"github.com/swapfee/aura-discord-panel-sub000/internal/db"
	"github.com/swapfee/aura-discord-panel-sub000/internal/relay"
	"github.com/swapfee/aura-discord-panel-sub000/internal/services"
)

func newTestServer(t *testing.T) (*httptest.Server, *relay.Hub, *config.Config) {
	t.Helper()

	cfg := &config.Config{
		Port:                 "0",
		JWTSecret:            "router-test-secret",
		InternalAPIKey:       "router-test-internal-key",
		BotAPIURL:            "http://localhost:0",
		DashboardURL:         "http://localhost:5173",
		SessionTokenDuration: time.Hour,
		RateLimitPerMinute:   1000,
	}

	sqlDB, err := database.New(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	if err := database.RunMigrations(sqlDB); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	hub := relay.NewHub()
	srv := httptest.NewServer(New(cfg, db.New(sqlDB), hub))
	t.Cleanup(func() {
		srv.Close()
		hub.Close()
	})
	return srv, hub, cfg
}

func sessionCookie(t *testing.T, cfg *config.Config, userID string) string {
	t.Helper()
	auth := services.NewAuthService(cfg.JWTSecret, cfg.SessionTokenDuration)
	token, err := auth.GenerateToken(userID, "melody")
	if err != nil {
		t.Fatalf("token generation failed: %v", err)
	}
	return relay.SessionCookie + "=" + token
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestDashboardRoutesRequireSession(t *testing.T) {
	srv, _, _ := newTestServer(t)

	paths := []string{
		"/api/auth/me",
		"/api/guilds",
		"/api/guilds/g1/stats/overview",
		"/api/guilds/g1/queue",
	}
	for _, path := range paths {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", path, resp.StatusCode)
		}
	}
}

func TestStatsWithSessionCookie(t *testing.T) {
	srv, _, cfg := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/guilds/g1/stats/overview", nil)
	req.Header.Set("Cookie", sessionCookie(t, cfg, "u1"))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

// Full path of a bot event: browser connects and subscribes over the
// socket, the bot posts to the ingress endpoint, the browser receives
// exactly the broadcast frame.
func TestEventFlowEndToEnd(t *testing.T) {
	srv, hub, cfg := newTestServer(t)

	header := http.Header{}
	header.Set("Cookie", sessionCookie(t, cfg, "u1"))
	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/ws", header)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer ws.Close()

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("never received connected ack: %v", err)
	}
	if string(data) != `{"type":"connected"}` {
		t.Fatalf("first frame = %s", data)
	}

	if err := ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"subscribe","guildId":"g42"}`)); err != nil {
		t.Fatalf("subscribe write failed: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && hub.Subscribers("g42") == 0 {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.Subscribers("g42") == 0 {
		t.Fatal("subscription never registered")
	}

	// Wrong key first: rejected and nothing may reach the socket.
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/internal/queue-update",
		strings.NewReader(`{"guildId":"g42","queueLength":7}`))
	req.Header.Set("x-internal-key", "wrong")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}

	// Correct key: ack plus one frame on the socket.
	req, _ = http.NewRequest(http.MethodPost, srv.URL+"/api/internal/queue-update",
		strings.NewReader(`{"guildId":"g42","queueLength":7}`))
	req.Header.Set("x-internal-key", cfg.InternalAPIKey)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var ack map[string]bool
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil || !ack["ok"] {
		t.Errorf("ack = %v, err = %v", ack, err)
	}

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err = ws.ReadMessage()
	if err != nil {
		t.Fatalf("subscriber never received frame: %v", err)
	}
	var frame map[string]any
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("frame unparseable: %v", err)
	}
	if frame["type"] != "queue_update" || frame["queueLength"] != float64(7) {
		t.Errorf("frame = %v", frame)
	}
}

func TestSocketRequiresSession(t *testing.T) {
	srv, _, _ := newTestServer(t)

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/ws", nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer ws.Close()

	// The handshake succeeds but the socket must close without an ack.
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, data, err := ws.ReadMessage(); err == nil {
		t.Fatalf("expected closed socket, read frame %s", data)
	}
}
