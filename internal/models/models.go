// Package models defines the request/response shapes of the panel API
// and the frames exchanged over the live-update socket.
package models

import "time"

// Auth

type MeResponse struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

type GuildResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Icon    string `json:"icon,omitempty"`
	Owner   bool   `json:"owner"`
	Tracked bool   `json:"tracked"`
}

// Analytics

type OverviewResponse struct {
	TotalPlays        int64   `json:"totalPlays"`
	DistinctTracks    int64   `json:"distinctTracks"`
	TotalListeningMs  int64   `json:"totalListeningMs"`
	VoiceSessionCount int64   `json:"voiceSessionCount"`
	VoiceTimeSeconds  int64   `json:"voiceTimeSeconds"`
	AvgPeakListeners  float64 `json:"avgPeakListeners"`
}

type TopTrackResponse struct {
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	PlayCount int64  `json:"playCount"`
}

type SongPlayResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Artist      string    `json:"artist"`
	RequestedBy string    `json:"requestedBy,omitempty"`
	DurationMs  int64     `json:"durationMs"`
	PlayedAt    time.Time `json:"playedAt"`
}

type DailyPlaysResponse struct {
	Day       string `json:"day"`
	PlayCount int64  `json:"playCount"`
}

type VoiceStatsResponse struct {
	SessionCount     int64   `json:"sessionCount"`
	TotalSeconds     int64   `json:"totalSeconds"`
	MaxPeakListeners int64   `json:"maxPeakListeners"`
	AvgPeakListeners float64 `json:"avgPeakListeners"`
}

type QueueItemResponse struct {
	Position    int64     `json:"position"`
	Title       string    `json:"title"`
	Artist      string    `json:"artist"`
	RequestedBy string    `json:"requestedBy,omitempty"`
	AddedAt     time.Time `json:"addedAt"`
}

// Playback controls

type VolumeRequest struct {
	Level int `json:"level"`
}

// Internal event ingress (bot -> panel)

type SongPlayedEvent struct {
	GuildID string `json:"guildId"`
	Title   string `json:"title"`
	Artist  string `json:"artist"`
}

type QueueUpdateEvent struct {
	GuildID     string `json:"guildId"`
	QueueLength int    `json:"queueLength"`
}

type VoiceUpdateEvent struct {
	GuildID         string `json:"guildId"`
	ActiveListeners int    `json:"activeListeners"`
}

type OkResponse struct {
	Ok bool `json:"ok"`
}

// Socket frames (panel -> browser)

type ConnectedFrame struct {
	Type string `json:"type"`
}

type SongPlayedFrame struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

type QueueUpdateFrame struct {
	Type        string `json:"type"`
	QueueLength int    `json:"queueLength"`
}

type VoiceUpdateFrame struct {
	Type            string `json:"type"`
	ActiveListeners int    `json:"activeListeners"`
}

// Error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
