package db

import (
	"context"
	"time"
)

// SongPlay is one completed playback, written by the bot process.
type SongPlay struct {
	ID          int64
	GuildID     string
	Title       string
	Artist      string
	RequestedBy string
	DurationMs  int64
	PlayedAt    time.Time
}

type InsertSongPlayParams struct {
	GuildID     string
	Title       string
	Artist      string
	RequestedBy string
	DurationMs  int64
	PlayedAt    time.Time
}

// InsertSongPlay records a playback. The bot writes through the same schema;
// the panel uses this for test fixtures and backfills.
func (q *Queries) InsertSongPlay(ctx context.Context, arg InsertSongPlayParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO song_plays (guild_id, title, artist, requested_by, duration_ms, played_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		arg.GuildID, arg.Title, arg.Artist, arg.RequestedBy, arg.DurationMs, arg.PlayedAt.Unix())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

type GetRecentPlaysParams struct {
	GuildID string
	Limit   int64
}

// GetRecentPlays returns the most recent plays for a guild, newest first.
func (q *Queries) GetRecentPlays(ctx context.Context, arg GetRecentPlaysParams) ([]SongPlay, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, guild_id, title, artist, requested_by, duration_ms, played_at
		FROM song_plays WHERE guild_id = ?
		ORDER BY played_at DESC, id DESC LIMIT ?`,
		arg.GuildID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plays []SongPlay
	for rows.Next() {
		var p SongPlay
		var playedAt int64
		if err := rows.Scan(&p.ID, &p.GuildID, &p.Title, &p.Artist, &p.RequestedBy, &p.DurationMs, &playedAt); err != nil {
			return nil, err
		}
		p.PlayedAt = time.Unix(playedAt, 0).UTC()
		plays = append(plays, p)
	}
	return plays, rows.Err()
}

type TopTrackRow struct {
	Title     string
	Artist    string
	PlayCount int64
}

type GetTopTracksParams struct {
	GuildID string
	Limit   int64
}

// GetTopTracks returns the most played tracks for a guild by play count.
func (q *Queries) GetTopTracks(ctx context.Context, arg GetTopTracksParams) ([]TopTrackRow, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT title, artist, COUNT(*) AS play_count
		FROM song_plays WHERE guild_id = ?
		GROUP BY title, artist
		ORDER BY play_count DESC, title ASC LIMIT ?`,
		arg.GuildID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []TopTrackRow
	for rows.Next() {
		var t TopTrackRow
		if err := rows.Scan(&t.Title, &t.Artist, &t.PlayCount); err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

type DailyPlaysRow struct {
	Day       string
	PlayCount int64
}

type GetDailyPlaysParams struct {
	GuildID string
	Since   time.Time
}

// GetDailyPlays returns per-day play counts since the given time.
func (q *Queries) GetDailyPlays(ctx context.Context, arg GetDailyPlaysParams) ([]DailyPlaysRow, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT date(played_at, 'unixepoch') AS day, COUNT(*) AS play_count
		FROM song_plays WHERE guild_id = ? AND played_at >= ?
		GROUP BY day ORDER BY day ASC`,
		arg.GuildID, arg.Since.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []DailyPlaysRow
	for rows.Next() {
		var d DailyPlaysRow
		if err := rows.Scan(&d.Day, &d.PlayCount); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

type GuildOverviewRow struct {
	TotalPlays      int64
	DistinctTracks  int64
	TotalDurationMs int64
}

// GetGuildOverview returns aggregate playback totals for a guild.
func (q *Queries) GetGuildOverview(ctx context.Context, guildID string) (GuildOverviewRow, error) {
	var o GuildOverviewRow
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(DISTINCT title || char(31) || artist),
		       COALESCE(SUM(duration_ms), 0)
		FROM song_plays WHERE guild_id = ?`, guildID).
		Scan(&o.TotalPlays, &o.DistinctTracks, &o.TotalDurationMs)
	return o, err
}

// ListKnownGuilds returns every guild ID with at least one recorded play.
func (q *Queries) ListKnownGuilds(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT DISTINCT guild_id FROM song_plays ORDER BY guild_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var guilds []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		guilds = append(guilds, id)
	}
	return guilds, rows.Err()
}
