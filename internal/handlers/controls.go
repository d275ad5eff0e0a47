package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/swapfee/aura-discord-panel-sub000/internal/models"
	"github.com/swapfee/aura-discord-panel-sub000/internal/services"
)

// ControlsHandler proxies playback commands from the dashboard to the bot.
type ControlsHandler struct {
	bot *services.BotService
}

// NewControlsHandler creates a ControlsHandler backed by the given bot API client.
func NewControlsHandler(bot *services.BotService) *ControlsHandler {
	return &ControlsHandler{bot: bot}
}

// Action relays pause/resume/skip/stop to the bot for a guild.
func (h *ControlsHandler) Action(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildID")
	action := chi.URLParam(r, "action")

	if !services.ValidAction(action) {
		writeError(w, http.StatusBadRequest, "unknown player action")
		return
	}

	if err := h.bot.PlayerAction(r.Context(), guildID, action); err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusBadGateway, "bot did not accept the command", err)
		return
	}

	writeJSON(w, http.StatusOK, models.OkResponse{Ok: true})
}

// Volume relays a volume change to the bot for a guild.
func (h *ControlsHandler) Volume(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildID")

	var req models.VolumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Level < 0 || req.Level > 100 {
		writeError(w, http.StatusBadRequest, "level must be between 0 and 100")
		return
	}

	if err := h.bot.SetVolume(r.Context(), guildID, req.Level); err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusBadGateway, "bot did not accept the command", err)
		return
	}

	writeJSON(w, http.StatusOK, models.OkResponse{Ok: true})
}
