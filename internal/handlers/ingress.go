package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/swapfee/aura-discord-panel-sub000/internal/logging"
	"github.com/swapfee/aura-discord-panel-sub000/internal/models"
	"github.com/swapfee/aura-discord-panel-sub000/internal/relay"
)

// internalKeyHeader carries the pre-shared key the bot authenticates with.
const internalKeyHeader = "x-internal-key"

// IngressHandler is the bot-facing bridge into the live-update hub. Each
// endpoint acknowledges with {"ok":true} once the event is handed to the
// hub; the relay makes no delivery guarantee back to the bot.
type IngressHandler struct {
	hub         *relay.Hub
	internalKey string
}

// NewIngressHandler creates an IngressHandler guarding the hub with the given key.
func NewIngressHandler(hub *relay.Hub, internalKey string) *IngressHandler {
	return &IngressHandler{hub: hub, internalKey: internalKey}
}

// authorize checks the pre-shared key header.
func (h *IngressHandler) authorize(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get(internalKeyHeader) != h.internalKey {
		logging.LogSecurityEvent(r.Context(), logging.SecurityEventBadInternalKey, "ingress rejected: bad internal key")
		writeError(w, http.StatusUnauthorized, "invalid internal key")
		return false
	}
	return true
}

// SongPlayed broadcasts a song_played frame to the event's guild.
func (h *IngressHandler) SongPlayed(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	var event models.SongPlayedEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil || event.GuildID == "" {
		writeError(w, http.StatusBadRequest, "invalid event body")
		return
	}

	h.hub.Broadcast(event.GuildID, models.SongPlayedFrame{
		Type:   "song_played",
		Title:  event.Title,
		Artist: event.Artist,
	})
	writeJSON(w, http.StatusOK, models.OkResponse{Ok: true})
}

// QueueUpdate broadcasts a queue_update frame to the event's guild.
func (h *IngressHandler) QueueUpdate(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	var event models.QueueUpdateEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil || event.GuildID == "" {
		writeError(w, http.StatusBadRequest, "invalid event body")
		return
	}

	h.hub.Broadcast(event.GuildID, models.QueueUpdateFrame{
		Type:        "queue_update",
		QueueLength: event.QueueLength,
	})
	writeJSON(w, http.StatusOK, models.OkResponse{Ok: true})
}

// VoiceUpdate broadcasts a voice_update frame to the event's guild.
func (h *IngressHandler) VoiceUpdate(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	var event models.VoiceUpdateEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil || event.GuildID == "" {
		writeError(w, http.StatusBadRequest, "invalid event body")
		return
	}

	h.hub.Broadcast(event.GuildID, models.VoiceUpdateFrame{
		Type:            "voice_update",
		ActiveListeners: event.ActiveListeners,
	})
	writeJSON(w, http.StatusOK, models.OkResponse{Ok: true})
}
