package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/swapfee/aura-discord-panel-sub000/internal/services"
)

func controlsRequest(t *testing.T, guildID, action string, body []byte) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/guilds/"+guildID+"/player/"+action, bytes.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("guildID", guildID)
	rctx.URLParams.Add("action", action)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestControlsHandler_ActionRelayedToBot(t *testing.T) {
	var gotPath string
	botSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer botSrv.Close()

	handler := NewControlsHandler(services.NewBotService(botSrv.URL, "key"))

	rec := httptest.NewRecorder()
	handler.Action(rec, controlsRequest(t, "g42", "skip", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	if gotPath != "/guilds/g42/player/skip" {
		t.Errorf("bot path = %q", gotPath)
	}
}

func TestControlsHandler_UnknownAction(t *testing.T) {
	handler := NewControlsHandler(services.NewBotService("http://localhost:0", "key"))

	rec := httptest.NewRecorder()
	handler.Action(rec, controlsRequest(t, "g42", "shuffle", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestControlsHandler_BotDown(t *testing.T) {
	// Closed server: the relay must surface a gateway error, not hang.
	botSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	botSrv.Close()

	handler := NewControlsHandler(services.NewBotService(botSrv.URL, "key"))

	rec := httptest.NewRecorder()
	handler.Action(rec, controlsRequest(t, "g42", "pause", nil))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestControlsHandler_Volume(t *testing.T) {
	var gotLevel int
	botSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]int
		json.NewDecoder(r.Body).Decode(&body)
		gotLevel = body["level"]
		w.WriteHeader(http.StatusNoContent)
	}))
	defer botSrv.Close()

	handler := NewControlsHandler(services.NewBotService(botSrv.URL, "key"))

	rec := httptest.NewRecorder()
	handler.Volume(rec, controlsRequest(t, "g42", "volume", []byte(`{"level":55}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotLevel != 55 {
		t.Errorf("level = %d, want 55", gotLevel)
	}
}

func TestControlsHandler_VolumeOutOfRange(t *testing.T) {
	handler := NewControlsHandler(services.NewBotService("http://localhost:0", "key"))

	for _, body := range []string{`{"level":-1}`, `{"level":101}`, `not json`} {
		rec := httptest.NewRecorder()
		handler.Volume(rec, controlsRequest(t, "g42", "volume", []byte(body)))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
}
