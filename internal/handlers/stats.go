package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/swapfee/aura-discord-panel-sub000/internal/db"
	"github.com/swapfee/aura-discord-panel-sub000/internal/models"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
	defaultDays      = 30
	maxDays          = 365
)

// StatsHandler serves the read-only analytics endpoints. The underlying
// tables are written by the bot process; the panel only aggregates.
type StatsHandler struct {
	queries *db.Queries
}

// NewStatsHandler creates a StatsHandler backed by the given queries.
func NewStatsHandler(queries *db.Queries) *StatsHandler {
	return &StatsHandler{queries: queries}
}

// Overview returns playback and voice totals for a guild.
func (h *StatsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildID")

	overview, err := h.queries.GetGuildOverview(r.Context(), guildID)
	if err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to load overview", err)
		return
	}
	voice, err := h.queries.GetVoiceStats(r.Context(), guildID)
	if err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to load voice stats", err)
		return
	}

	writeJSON(w, http.StatusOK, models.OverviewResponse{
		TotalPlays:        overview.TotalPlays,
		DistinctTracks:    overview.DistinctTracks,
		TotalListeningMs:  overview.TotalDurationMs,
		VoiceSessionCount: voice.SessionCount,
		VoiceTimeSeconds:  voice.TotalSeconds,
		AvgPeakListeners:  voice.AvgPeakListeners,
	})
}

// TopTracks returns the guild's most played tracks.
func (h *StatsHandler) TopTracks(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildID")
	limit := queryInt(r, "limit", defaultListLimit, maxListLimit)

	tracks, err := h.queries.GetTopTracks(r.Context(), db.GetTopTracksParams{
		GuildID: guildID,
		Limit:   int64(limit),
	})
	if err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to load top tracks", err)
		return
	}

	response := make([]models.TopTrackResponse, len(tracks))
	for i, t := range tracks {
		response[i] = models.TopTrackResponse{
			Title:     t.Title,
			Artist:    t.Artist,
			PlayCount: t.PlayCount,
		}
	}
	writeJSON(w, http.StatusOK, response)
}

// Recent returns the guild's latest plays, newest first.
func (h *StatsHandler) Recent(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildID")
	limit := queryInt(r, "limit", defaultListLimit, maxListLimit)

	plays, err := h.queries.GetRecentPlays(r.Context(), db.GetRecentPlaysParams{
		GuildID: guildID,
		Limit:   int64(limit),
	})
	if err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to load recent plays", err)
		return
	}

	response := make([]models.SongPlayResponse, len(plays))
	for i, p := range plays {
		response[i] = models.SongPlayResponse{
			ID:          p.ID,
			Title:       p.Title,
			Artist:      p.Artist,
			RequestedBy: p.RequestedBy,
			DurationMs:  p.DurationMs,
			PlayedAt:    p.PlayedAt,
		}
	}
	writeJSON(w, http.StatusOK, response)
}

// Daily returns per-day play counts for the requested window.
func (h *StatsHandler) Daily(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildID")
	days := queryInt(r, "days", defaultDays, maxDays)

	rows, err := h.queries.GetDailyPlays(r.Context(), db.GetDailyPlaysParams{
		GuildID: guildID,
		Since:   time.Now().UTC().AddDate(0, 0, -days),
	})
	if err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to load daily plays", err)
		return
	}

	response := make([]models.DailyPlaysResponse, len(rows))
	for i, d := range rows {
		response[i] = models.DailyPlaysResponse{Day: d.Day, PlayCount: d.PlayCount}
	}
	writeJSON(w, http.StatusOK, response)
}

// Voice returns voice session aggregates for a guild.
func (h *StatsHandler) Voice(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildID")

	stats, err := h.queries.GetVoiceStats(r.Context(), guildID)
	if err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to load voice stats", err)
		return
	}

	writeJSON(w, http.StatusOK, models.VoiceStatsResponse{
		SessionCount:     stats.SessionCount,
		TotalSeconds:     stats.TotalSeconds,
		MaxPeakListeners: stats.MaxPeakListeners,
		AvgPeakListeners: stats.AvgPeakListeners,
	})
}

// Queue returns the guild's current queue snapshot.
func (h *StatsHandler) Queue(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildID")

	items, err := h.queries.GetQueue(r.Context(), guildID)
	if err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to load queue", err)
		return
	}

	response := make([]models.QueueItemResponse, len(items))
	for i, it := range items {
		response[i] = models.QueueItemResponse{
			Position:    it.Position,
			Title:       it.Title,
			Artist:      it.Artist,
			RequestedBy: it.RequestedBy,
			AddedAt:     it.AddedAt,
		}
	}
	writeJSON(w, http.StatusOK, response)
}

// queryInt parses a positive integer query parameter with a default and cap.
func queryInt(r *http.Request, key string, def, max int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
