package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avelichko/matchbook/internal/domain/model"
)

type DiscoveryRepo struct {
	pool *pgxpool.Pool
}

func NewDiscoveryRepo(pool *pgxpool.Pool) *DiscoveryRepo {
	return &DiscoveryRepo{pool: pool}
}

// ListCandidates returns discoverable profiles inside the viewer's age range
// that the viewer has not liked yet. Distance and ethnicity are applied by
// the caller: distance needs the viewer's coordinates and the relaxation
// policy, which live above the storage layer.
func (r *DiscoveryRepo) ListCandidates(ctx context.Context, viewerID int64, ageMin, ageMax, limit int) ([]model.Profile, error) {
	if viewerID <= 0 {
		return nil, fmt.Errorf("invalid viewer id")
	}
	if limit <= 0 {
		limit = 200
	}
	if r.pool == nil {
		return []model.Profile{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	p.user_id,
	p.display_name,
	p.age,
	COALESCE(p.bio, ''),
	p.photos,
	p.lat,
	p.lon,
	COALESCE(p.city, ''),
	COALESCE(p.state, ''),
	p.ethnicities,
	p.interests,
	p.is_discoverable,
	p.is_premium,
	p.last_active,
	p.created_at,
	p.updated_at
FROM profiles p
WHERE
	p.user_id <> $1
	AND p.is_discoverable
	AND p.deleted_at IS NULL
	AND p.age BETWEEN $2 AND $3
	AND NOT EXISTS (
		SELECT 1 FROM likes l
		WHERE l.from_user_id = $1 AND l.to_user_id = p.user_id
	)
ORDER BY p.last_active DESC, p.user_id ASC
LIMIT $4
`, viewerID, ageMin, ageMax, limit)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	items := make([]model.Profile, 0, limit)
	for rows.Next() {
		var p model.Profile
		if err := rows.Scan(
			&p.UserID,
			&p.DisplayName,
			&p.Age,
			&p.Bio,
			&p.Photos,
			&p.Lat,
			&p.Lon,
			&p.City,
			&p.State,
			&p.Ethnicities,
			&p.Interests,
			&p.IsDiscoverable,
			&p.IsPremium,
			&p.LastActive,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		items = append(items, p)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate candidates: %w", rows.Err())
	}

	return items, nil
}
