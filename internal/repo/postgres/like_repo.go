package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LikeRepo struct {
	pool *pgxpool.Pool
}

func NewLikeRepo(pool *pgxpool.Pool) *LikeRepo {
	return &LikeRepo{pool: pool}
}

type IncomingLikeRecord struct {
	FromUserID  int64
	DisplayName string
	Age         int
	City        string
	State       string
	Photos      []string
	LikedAt     time.Time
}

// Upsert records a directed like edge. The insert is idempotent: liking the
// same target again leaves the ledger unchanged and is not an error.
func (r *LikeRepo) Upsert(ctx context.Context, tx pgx.Tx, fromUserID, toUserID int64) error {
	if fromUserID <= 0 || toUserID <= 0 {
		return fmt.Errorf("invalid like payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO likes (
	from_user_id,
	to_user_id,
	created_at
) VALUES ($1, $2, NOW())
ON CONFLICT (from_user_id, to_user_id) DO NOTHING
`, fromUserID, toUserID); err != nil {
		return fmt.Errorf("upsert like: %w", err)
	}

	return nil
}

func (r *LikeRepo) Exists(ctx context.Context, tx pgx.Tx, fromUserID, toUserID int64) (bool, error) {
	if fromUserID <= 0 || toUserID <= 0 {
		return false, fmt.Errorf("invalid like lookup payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	var one int
	err := tx.QueryRow(ctx, `
SELECT 1
FROM likes
WHERE from_user_id = $1 AND to_user_id = $2
LIMIT 1
`, fromUserID, toUserID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup like: %w", err)
	}

	return true, nil
}

func (r *LikeRepo) ListIncomingProfiles(ctx context.Context, userID int64, limit int) ([]IncomingLikeRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 50
	}
	if r.pool == nil {
		return []IncomingLikeRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	l.from_user_id,
	p.display_name,
	p.age,
	COALESCE(p.city, ''),
	COALESCE(p.state, ''),
	p.photos,
	l.created_at
FROM likes l
JOIN profiles p ON p.user_id = l.from_user_id
WHERE
	l.to_user_id = $1
	AND p.deleted_at IS NULL
ORDER BY l.created_at DESC, l.id DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list incoming likes: %w", err)
	}
	defer rows.Close()

	items := make([]IncomingLikeRecord, 0, limit)
	for rows.Next() {
		var rec IncomingLikeRecord
		if err := rows.Scan(
			&rec.FromUserID,
			&rec.DisplayName,
			&rec.Age,
			&rec.City,
			&rec.State,
			&rec.Photos,
			&rec.LikedAt,
		); err != nil {
			return nil, fmt.Errorf("scan incoming like: %w", err)
		}
		items = append(items, rec)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate incoming likes: %w", rows.Err())
	}

	return items, nil
}
