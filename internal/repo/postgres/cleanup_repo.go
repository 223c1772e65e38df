package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CleanupRepo struct {
	pool *pgxpool.Pool
}

func NewCleanupRepo(pool *pgxpool.Pool) *CleanupRepo {
	return &CleanupRepo{pool: pool}
}

// PurgeTerminated removes all data belonging to accounts that were soft
// deleted before the cutoff: likes in both directions, filter settings,
// matches and their messages, and finally the profile rows themselves.
func (r *CleanupRepo) PurgeTerminated(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.pool == nil {
		return 0, nil
	}

	var purged int64
	err := WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
DELETE FROM messages
WHERE match_id IN (
	SELECT m.id FROM matches m
	JOIN profiles p ON p.user_id IN (m.user_a_id, m.user_b_id)
	WHERE p.deleted_at IS NOT NULL AND p.deleted_at < $1
)
`, cutoff); err != nil {
			return fmt.Errorf("purge messages: %w", err)
		}

		if _, err := tx.Exec(ctx, `
DELETE FROM matches
WHERE EXISTS (
	SELECT 1 FROM profiles p
	WHERE p.user_id IN (matches.user_a_id, matches.user_b_id)
		AND p.deleted_at IS NOT NULL AND p.deleted_at < $1
)
`, cutoff); err != nil {
			return fmt.Errorf("purge matches: %w", err)
		}

		if _, err := tx.Exec(ctx, `
DELETE FROM likes
WHERE EXISTS (
	SELECT 1 FROM profiles p
	WHERE p.user_id IN (likes.from_user_id, likes.to_user_id)
		AND p.deleted_at IS NOT NULL AND p.deleted_at < $1
)
`, cutoff); err != nil {
			return fmt.Errorf("purge likes: %w", err)
		}

		if _, err := tx.Exec(ctx, `
DELETE FROM filter_settings
WHERE user_id IN (
	SELECT user_id FROM profiles
	WHERE deleted_at IS NOT NULL AND deleted_at < $1
)
`, cutoff); err != nil {
			return fmt.Errorf("purge filter settings: %w", err)
		}

		tag, err := tx.Exec(ctx, `
DELETE FROM profiles
WHERE deleted_at IS NOT NULL AND deleted_at < $1
`, cutoff)
		if err != nil {
			return fmt.Errorf("purge profiles: %w", err)
		}
		purged = tag.RowsAffected()

		return nil
	})
	if err != nil {
		return 0, err
	}

	return purged, nil
}
