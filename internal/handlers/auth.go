// Package handlers contains the HTTP handlers for the panel API.
package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/swapfee/aura-discord-panel-sub000/internal/config"
	"github.com/swapfee/aura-discord-panel-sub000/internal/db"
	"github.com/swapfee/aura-discord-panel-sub000/internal/logging"
	"github.com/swapfee/aura-discord-panel-sub000/internal/middleware"
	"github.com/swapfee/aura-discord-panel-sub000/internal/models"
	"github.com/swapfee/aura-discord-panel-sub000/internal/relay"
	"github.com/swapfee/aura-discord-panel-sub000/internal/services"
)

// stateCookie holds the OAuth CSRF state between redirect and callback.
const stateCookie = "aura_oauth_state"

// AuthHandler implements the Discord OAuth login flow and session endpoints.
type AuthHandler struct {
	cfg         *config.Config
	queries     *db.Queries
	authService *services.AuthService
	discord     *services.DiscordService
}

// NewAuthHandler creates an AuthHandler with the required dependencies.
func NewAuthHandler(cfg *config.Config, queries *db.Queries, authService *services.AuthService, discord *services.DiscordService) *AuthHandler {
	return &AuthHandler{
		cfg:         cfg,
		queries:     queries,
		authService: authService,
		discord:     discord,
	}
}

// Login redirects the browser to Discord's consent screen with a fresh
// CSRF state bound to a short-lived cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state := uuid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/api/auth",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.discord.AuthorizeURL(state), http.StatusTemporaryRedirect)
}

// Callback completes the OAuth flow: verifies state, exchanges the code,
// fetches the Discord identity, stores the user, and issues the session
// cookie before redirecting back to the dashboard.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(stateCookie)
	if err != nil || state == "" || cookie.Value != state {
		logging.LogSecurityEvent(r.Context(), logging.SecurityEventBadOAuthState, "oauth state mismatch")
		writeError(w, http.StatusBadRequest, "invalid oauth state")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	tokenResp, err := h.discord.ExchangeCode(r.Context(), code)
	if err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusBadGateway, "failed to exchange authorization code", err)
		return
	}

	user, err := h.discord.FetchUser(r.Context(), tokenResp.AccessToken)
	if err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusBadGateway, "failed to fetch discord user", err)
		return
	}

	username := user.GlobalName
	if username == "" {
		username = user.Username
	}

	if err := h.queries.UpsertDashboardUser(r.Context(), db.UpsertDashboardUserParams{
		DiscordID:    user.ID,
		Username:     username,
		Avatar:       user.Avatar,
		RefreshToken: tokenResp.RefreshToken,
		LastLoginAt:  time.Now(),
	}); err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to store user", err)
		return
	}
	h.discord.CacheAccessToken(user.ID, tokenResp)

	token, err := h.authService.GenerateToken(user.ID, username)
	if err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to generate session token", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     relay.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cfg.SessionTokenDuration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	// Clear the state cookie; it has done its job.
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/api/auth", MaxAge: -1})

	http.Redirect(w, r, h.cfg.DashboardURL, http.StatusTemporaryRedirect)
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     relay.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, models.OkResponse{Ok: true})
}

// Me returns the authenticated principal.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())

	resp := models.MeResponse{
		UserID:   claims.UserID,
		Username: claims.Username,
	}
	if user, err := h.queries.GetDashboardUser(r.Context(), claims.UserID); err == nil {
		resp.Avatar = user.Avatar
	}

	writeJSON(w, http.StatusOK, resp)
}

// Guilds lists the user's manageable Discord guilds, marking the ones the
// bot has analytics for.
func (h *AuthHandler) Guilds(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())

	user, err := h.queries.GetDashboardUser(r.Context(), claims.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusUnauthorized, "login required")
		return
	}
	if err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to load user", err)
		return
	}

	access, newRefresh, err := h.discord.AccessTokenForUser(r.Context(), claims.UserID, user.RefreshToken)
	if err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusBadGateway, "failed to refresh discord token", err)
		return
	}
	if newRefresh != "" {
		if err := h.queries.UpdateRefreshToken(r.Context(), claims.UserID, newRefresh); err != nil {
			writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to store refresh token", err)
			return
		}
	}

	guilds, err := h.discord.FetchGuilds(r.Context(), access)
	if err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusBadGateway, "failed to fetch guilds", err)
		return
	}

	known, err := h.queries.ListKnownGuilds(r.Context())
	if err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to list known guilds", err)
		return
	}
	tracked := make(map[string]bool, len(known))
	for _, id := range known {
		tracked[id] = true
	}

	response := make([]models.GuildResponse, 0, len(guilds))
	for _, g := range guilds {
		if !g.Manageable() {
			continue
		}
		response = append(response, models.GuildResponse{
			ID:      g.ID,
			Name:    g.Name,
			Icon:    g.Icon,
			Owner:   g.Owner,
			Tracked: tracked[g.ID],
		})
	}

	writeJSON(w, http.StatusOK, response)
}
