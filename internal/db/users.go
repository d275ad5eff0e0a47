package db

import (
	"context"
	"time"
)

// DashboardUser is a Discord user who has logged into the panel.
// The refresh token lets the panel fetch the user's guild list without
// requiring a fresh OAuth round trip.
type DashboardUser struct {
	DiscordID    string
	Username     string
	Avatar       string
	RefreshToken string
	LastLoginAt  time.Time
}

type UpsertDashboardUserParams struct {
	DiscordID    string
	Username     string
	Avatar       string
	RefreshToken string
	LastLoginAt  time.Time
}

// UpsertDashboardUser inserts or updates a user row after a successful login.
func (q *Queries) UpsertDashboardUser(ctx context.Context, arg UpsertDashboardUserParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO dashboard_users (discord_id, username, avatar, refresh_token, last_login_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (discord_id) DO UPDATE SET
			username = excluded.username,
			avatar = excluded.avatar,
			refresh_token = excluded.refresh_token,
			last_login_at = excluded.last_login_at`,
		arg.DiscordID, arg.Username, arg.Avatar, arg.RefreshToken, arg.LastLoginAt.Unix())
	return err
}

// GetDashboardUser fetches a user by Discord ID.
func (q *Queries) GetDashboardUser(ctx context.Context, discordID string) (DashboardUser, error) {
	var u DashboardUser
	var lastLogin int64
	err := q.db.QueryRowContext(ctx, `
		SELECT discord_id, username, avatar, refresh_token, last_login_at
		FROM dashboard_users WHERE discord_id = ?`, discordID).
		Scan(&u.DiscordID, &u.Username, &u.Avatar, &u.RefreshToken, &lastLogin)
	if err != nil {
		return DashboardUser{}, err
	}
	u.LastLoginAt = time.Unix(lastLogin, 0).UTC()
	return u, nil
}

// UpdateRefreshToken stores a rotated Discord refresh token.
func (q *Queries) UpdateRefreshToken(ctx context.Context, discordID, refreshToken string) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE dashboard_users SET refresh_token = ? WHERE discord_id = ?`,
		refreshToken, discordID)
	return err
}
