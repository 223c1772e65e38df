package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avelichko/matchbook/internal/domain/model"
)

var ErrMessageNotFound = errors.New("message not found")

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

// Insert appends a message and bumps the match's last_message_at. When a
// client token is supplied and a message with the same token already exists
// for the match, the stored message is returned instead and duplicate=true.
func (r *MessageRepo) Insert(ctx context.Context, matchID, senderID int64, content, clientToken string) (model.Message, bool, error) {
	if matchID <= 0 || senderID <= 0 || content == "" {
		return model.Message{}, false, fmt.Errorf("invalid message payload")
	}
	if r.pool == nil {
		return model.Message{}, false, fmt.Errorf("storage is unavailable")
	}

	var msg model.Message
	duplicate := false

	err := WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var token *string
		if clientToken != "" {
			token = &clientToken
		}

		err := tx.QueryRow(ctx, `
INSERT INTO messages (
	match_id,
	sender_id,
	content,
	client_token,
	is_read,
	created_at
) VALUES ($1, $2, $3, $4, FALSE, NOW())
ON CONFLICT (match_id, client_token) WHERE client_token IS NOT NULL
	DO NOTHING
RETURNING id, created_at
`, matchID, senderID, content, token).Scan(&msg.ID, &msg.CreatedAt)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("insert message: %w", err)
			}

			// Token collision: return the previously stored message.
			duplicate = true
			err = tx.QueryRow(ctx, `
SELECT id, sender_id, content, is_read, created_at
FROM messages
WHERE match_id = $1 AND client_token = $2
`, matchID, clientToken).Scan(&msg.ID, &msg.SenderID, &msg.Content, &msg.IsRead, &msg.CreatedAt)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return ErrMessageNotFound
				}
				return fmt.Errorf("lookup duplicate message: %w", err)
			}
			msg.MatchID = matchID
			return nil
		}

		msg.MatchID = matchID
		msg.SenderID = senderID
		msg.Content = content

		if _, err := tx.Exec(ctx, `
UPDATE matches
SET last_message_at = $2
WHERE id = $1
`, matchID, msg.CreatedAt); err != nil {
			return fmt.Errorf("bump last message at: %w", err)
		}

		return nil
	})
	if err != nil {
		return model.Message{}, false, err
	}

	return msg, duplicate, nil
}

// List returns the match's messages in send order, oldest first.
func (r *MessageRepo) List(ctx context.Context, matchID int64, sinceID int64, limit int) ([]model.Message, error) {
	if matchID <= 0 {
		return nil, fmt.Errorf("invalid match id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []model.Message{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, match_id, sender_id, content, is_read, created_at
FROM messages
WHERE match_id = $1 AND id > $2
ORDER BY created_at ASC, id ASC
LIMIT $3
`, matchID, sinceID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	items := make([]model.Message, 0, limit)
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.MatchID, &m.SenderID, &m.Content, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		items = append(items, m)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate messages: %w", rows.Err())
	}

	return items, nil
}

// MarkRead marks every message in the match that the reader did not send.
func (r *MessageRepo) MarkRead(ctx context.Context, matchID, readerID int64) (int64, error) {
	if matchID <= 0 || readerID <= 0 {
		return 0, fmt.Errorf("invalid mark read payload")
	}
	if r.pool == nil {
		return 0, nil
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE messages
SET is_read = TRUE
WHERE match_id = $1 AND sender_id <> $2 AND NOT is_read
`, matchID, readerID)
	if err != nil {
		return 0, fmt.Errorf("mark messages read: %w", err)
	}

	return tag.RowsAffected(), nil
}

// DeleteOlderThan removes messages of inactive matches that went quiet before
// the cutoff. Used by the cleanup job.
func (r *MessageRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.pool == nil {
		return 0, nil
	}

	tag, err := r.pool.Exec(ctx, `
DELETE FROM messages
WHERE match_id IN (
	SELECT id FROM matches
	WHERE NOT is_active AND COALESCE(last_message_at, created_at) < $1
)
`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete stale messages: %w", err)
	}

	return tag.RowsAffected(), nil
}
