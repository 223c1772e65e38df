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

var ErrMatchNotFound = errors.New("match not found")

type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

type MatchSummaryRecord struct {
	MatchID            int64
	OtherUserID        int64
	OtherDisplayName   string
	OtherAge           int
	OtherPhotos        []string
	LastMessagePreview string
	LastMessageAt      *time.Time
	UnreadCount        int
	CreatedAt          time.Time
}

// Upsert inserts a match row for the canonical pair, or reactivates an
// inactive one. It returns the match id and whether this call transitioned
// the pair into the matched state. An already-active pair returns
// newTransition=false: the conditional DO UPDATE produces no row then.
func (r *MatchRepo) Upsert(ctx context.Context, tx pgx.Tx, userAID, userBID int64) (int64, bool, error) {
	if userAID <= 0 || userBID <= 0 || userAID >= userBID {
		return 0, false, fmt.Errorf("invalid match pair")
	}
	if tx == nil {
		return 0, false, fmt.Errorf("transaction is required")
	}

	var id int64
	err := tx.QueryRow(ctx, `
INSERT INTO matches (
	user_a_id,
	user_b_id,
	is_active,
	created_at
) VALUES ($1, $2, TRUE, NOW())
ON CONFLICT (user_a_id, user_b_id)
	DO UPDATE SET is_active = TRUE
	WHERE matches.is_active = FALSE
RETURNING id
`, userAID, userBID).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, fmt.Errorf("upsert match: %w", err)
	}

	// Pair is already active; fetch the existing id.
	err = tx.QueryRow(ctx, `
SELECT id
FROM matches
WHERE user_a_id = $1 AND user_b_id = $2
`, userAID, userBID).Scan(&id)
	if err != nil {
		return 0, false, fmt.Errorf("lookup match: %w", err)
	}

	return id, false, nil
}

func (r *MatchRepo) GetByID(ctx context.Context, matchID int64) (model.Match, error) {
	if matchID <= 0 {
		return model.Match{}, fmt.Errorf("invalid match id")
	}
	if r.pool == nil {
		return model.Match{}, ErrMatchNotFound
	}

	var m model.Match
	err := r.pool.QueryRow(ctx, `
SELECT
	id,
	user_a_id,
	user_b_id,
	is_active,
	created_at,
	last_message_at
FROM matches
WHERE id = $1
`, matchID).Scan(
		&m.ID,
		&m.UserAID,
		&m.UserBID,
		&m.IsActive,
		&m.CreatedAt,
		&m.LastMessageAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, ErrMatchNotFound
		}
		return model.Match{}, fmt.Errorf("get match: %w", err)
	}

	return m, nil
}

// ListActiveForUser returns the user's active matches with the other party's
// summary and the latest message preview, most recently active first.
func (r *MatchRepo) ListActiveForUser(ctx context.Context, userID int64) ([]MatchSummaryRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return []MatchSummaryRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	m.id,
	CASE WHEN m.user_a_id = $1 THEN m.user_b_id ELSE m.user_a_id END AS other_user_id,
	p.display_name,
	p.age,
	p.photos,
	COALESCE(lm.content, ''),
	m.last_message_at,
	COALESCE(un.unread, 0),
	m.created_at
FROM matches m
JOIN profiles p
	ON p.user_id = CASE WHEN m.user_a_id = $1 THEN m.user_b_id ELSE m.user_a_id END
LEFT JOIN LATERAL (
	SELECT content
	FROM messages
	WHERE match_id = m.id
	ORDER BY created_at DESC, id DESC
	LIMIT 1
) lm ON TRUE
LEFT JOIN LATERAL (
	SELECT COUNT(*) AS unread
	FROM messages
	WHERE match_id = m.id AND sender_id <> $1 AND NOT is_read
) un ON TRUE
WHERE
	(m.user_a_id = $1 OR m.user_b_id = $1)
	AND m.is_active
	AND p.deleted_at IS NULL
ORDER BY m.last_message_at DESC NULLS LAST, m.created_at DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	items := make([]MatchSummaryRecord, 0, 16)
	for rows.Next() {
		var rec MatchSummaryRecord
		if err := rows.Scan(
			&rec.MatchID,
			&rec.OtherUserID,
			&rec.OtherDisplayName,
			&rec.OtherAge,
			&rec.OtherPhotos,
			&rec.LastMessagePreview,
			&rec.LastMessageAt,
			&rec.UnreadCount,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan match summary: %w", err)
		}
		items = append(items, rec)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate matches: %w", rows.Err())
	}

	return items, nil
}

func (r *MatchRepo) Deactivate(ctx context.Context, matchID int64) error {
	if matchID <= 0 {
		return fmt.Errorf("invalid match id")
	}
	if r.pool == nil {
		return ErrMatchNotFound
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE matches
SET is_active = FALSE
WHERE id = $1
`, matchID)
	if err != nil {
		return fmt.Errorf("deactivate match: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMatchNotFound
	}

	return nil
}

// DeactivateAllForUser turns off every active match the user participates in.
// Used when an account is terminated.
func (r *MatchRepo) DeactivateAllForUser(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return 0, nil
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE matches
SET is_active = FALSE
WHERE (user_a_id = $1 OR user_b_id = $1) AND is_active
`, userID)
	if err != nil {
		return 0, fmt.Errorf("deactivate matches for user: %w", err)
	}

	return tag.RowsAffected(), nil
}
