package db

import (
	"context"
	"time"
)

// QueueItem is one pending track in a guild's playback queue.
type QueueItem struct {
	ID          int64
	GuildID     string
	Position    int64
	Title       string
	Artist      string
	RequestedBy string
	AddedAt     time.Time
}

// GetQueue returns a guild's queue in position order.
func (q *Queries) GetQueue(ctx context.Context, guildID string) ([]QueueItem, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, guild_id, position, title, artist, requested_by, added_at
		FROM queue_items WHERE guild_id = ?
		ORDER BY position ASC`, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []QueueItem
	for rows.Next() {
		var it QueueItem
		var addedAt int64
		if err := rows.Scan(&it.ID, &it.GuildID, &it.Position, &it.Title, &it.Artist, &it.RequestedBy, &addedAt); err != nil {
			return nil, err
		}
		it.AddedAt = time.Unix(addedAt, 0).UTC()
		items = append(items, it)
	}
	return items, rows.Err()
}

type ReplaceQueueItem struct {
	Title       string
	Artist      string
	RequestedBy string
	AddedAt     time.Time
}

// ReplaceQueue swaps a guild's queue for a new snapshot in one transaction.
// The bot writes queue state this way after every mutation.
func (q *Queries) ReplaceQueue(ctx context.Context, guildID string, items []ReplaceQueueItem) error {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM queue_items WHERE guild_id = ?`, guildID); err != nil {
		return err
	}

	for i, it := range items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO queue_items (guild_id, position, title, artist, requested_by, added_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			guildID, i, it.Title, it.Artist, it.RequestedBy, it.AddedAt.Unix()); err != nil {
			return err
		}
	}

	return tx.Commit()
}
