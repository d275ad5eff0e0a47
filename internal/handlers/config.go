package handlers

import (
	"net/http"

	"github.com/swapfee/aura-discord-panel-sub000/internal/config"
)

type ConfigHandler struct {
	cfg *config.Config
}

func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{cfg: cfg}
}

// PublicConfig returns non-sensitive configuration for the frontend
func (h *ConfigHandler) PublicConfig(w http.ResponseWriter, r *http.Request) {
	// Only expose public, non-sensitive configuration
	response := map[string]interface{}{
		"discordClientId": h.cfg.DiscordClientID,
		"loginUrl":        "/api/auth/login",
	}

	writeJSON(w, http.StatusOK, response)
}
