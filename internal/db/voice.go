package db

import (
	"context"
	"database/sql"
	"time"
)

// VoiceSession is one stretch of the bot being connected to a voice channel.
// EndedAt is null while the session is live.
type VoiceSession struct {
	ID            string
	GuildID       string
	ChannelID     string
	StartedAt     time.Time
	EndedAt       sql.NullTime
	PeakListeners int64
}

type InsertVoiceSessionParams struct {
	ID            string
	GuildID       string
	ChannelID     string
	StartedAt     time.Time
	PeakListeners int64
}

// InsertVoiceSession records the start of a voice session.
func (q *Queries) InsertVoiceSession(ctx context.Context, arg InsertVoiceSessionParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO voice_sessions (id, guild_id, channel_id, started_at, peak_listeners)
		VALUES (?, ?, ?, ?, ?)`,
		arg.ID, arg.GuildID, arg.ChannelID, arg.StartedAt.Unix(), arg.PeakListeners)
	return err
}

type EndVoiceSessionParams struct {
	ID            string
	EndedAt       time.Time
	PeakListeners int64
}

// EndVoiceSession closes a voice session and records its final listener peak.
func (q *Queries) EndVoiceSession(ctx context.Context, arg EndVoiceSessionParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE voice_sessions SET ended_at = ?, peak_listeners = ?
		WHERE id = ?`,
		arg.EndedAt.Unix(), arg.PeakListeners, arg.ID)
	return err
}

type VoiceStatsRow struct {
	SessionCount     int64
	TotalSeconds     int64
	MaxPeakListeners int64
	AvgPeakListeners float64
}

// GetVoiceStats returns aggregate voice session stats for a guild.
// Only completed sessions count toward total time.
func (q *Queries) GetVoiceStats(ctx context.Context, guildID string) (VoiceStatsRow, error) {
	var s VoiceStatsRow
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN ended_at IS NOT NULL THEN ended_at - started_at ELSE 0 END), 0),
		       COALESCE(MAX(peak_listeners), 0),
		       COALESCE(AVG(peak_listeners), 0)
		FROM voice_sessions WHERE guild_id = ?`, guildID).
		Scan(&s.SessionCount, &s.TotalSeconds, &s.MaxPeakListeners, &s.AvgPeakListeners)
	return s, err
}
