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

var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) Get(ctx context.Context, userID int64) (model.Profile, error) {
	if userID <= 0 {
		return model.Profile{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return model.Profile{}, ErrProfileNotFound
	}

	var p model.Profile
	err := r.pool.QueryRow(ctx, `
SELECT
	user_id,
	display_name,
	age,
	COALESCE(bio, ''),
	photos,
	lat,
	lon,
	COALESCE(city, ''),
	COALESCE(state, ''),
	ethnicities,
	interests,
	is_discoverable,
	is_premium,
	last_active,
	created_at,
	updated_at
FROM profiles
WHERE user_id = $1 AND deleted_at IS NULL
LIMIT 1
`, userID).Scan(
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
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	return p, nil
}

func (r *ProfileRepo) Exists(ctx context.Context, userID int64) (bool, error) {
	if userID <= 0 {
		return false, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return false, nil
	}

	var one int
	err := r.pool.QueryRow(ctx, `
SELECT 1
FROM profiles
WHERE user_id = $1 AND deleted_at IS NULL
LIMIT 1
`, userID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup profile: %w", err)
	}

	return true, nil
}

func (r *ProfileRepo) Upsert(ctx context.Context, p model.Profile) (model.Profile, error) {
	if p.UserID <= 0 {
		return model.Profile{}, fmt.Errorf("invalid profile payload")
	}
	if r.pool == nil {
		return model.Profile{}, fmt.Errorf("postgres pool is nil")
	}

	err := r.pool.QueryRow(ctx, `
INSERT INTO profiles (
	user_id,
	display_name,
	age,
	bio,
	photos,
	lat,
	lon,
	city,
	state,
	ethnicities,
	interests,
	is_discoverable,
	is_premium,
	last_active,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW(), NOW())
ON CONFLICT (user_id) DO UPDATE SET
	display_name = EXCLUDED.display_name,
	age = EXCLUDED.age,
	bio = EXCLUDED.bio,
	photos = EXCLUDED.photos,
	lat = EXCLUDED.lat,
	lon = EXCLUDED.lon,
	city = EXCLUDED.city,
	state = EXCLUDED.state,
	ethnicities = EXCLUDED.ethnicities,
	interests = EXCLUDED.interests,
	is_discoverable = EXCLUDED.is_discoverable,
	is_premium = EXCLUDED.is_premium,
	last_active = NOW(),
	updated_at = NOW()
RETURNING created_at, updated_at, last_active
`,
		p.UserID,
		p.DisplayName,
		p.Age,
		p.Bio,
		p.Photos,
		p.Lat,
		p.Lon,
		p.City,
		p.State,
		p.Ethnicities,
		p.Interests,
		p.IsDiscoverable,
		p.IsPremium,
	).Scan(&p.CreatedAt, &p.UpdatedAt, &p.LastActive)
	if err != nil {
		return model.Profile{}, fmt.Errorf("upsert profile: %w", err)
	}

	return p, nil
}

func (r *ProfileRepo) TouchLastActive(ctx context.Context, userID int64, at time.Time) error {
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return nil
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE profiles
SET last_active = $2
WHERE user_id = $1 AND deleted_at IS NULL
`, userID, at.UTC()); err != nil {
		return fmt.Errorf("touch last active: %w", err)
	}

	return nil
}

// MarkTerminated soft-deletes the profile; the cleanup job hard-deletes the
// cascade after the grace period.
func (r *ProfileRepo) MarkTerminated(ctx context.Context, userID int64, at time.Time) (bool, error) {
	if userID <= 0 {
		return false, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	result, err := r.pool.Exec(ctx, `
UPDATE profiles
SET deleted_at = $2, is_discoverable = FALSE
WHERE user_id = $1 AND deleted_at IS NULL
`, userID, at.UTC())
	if err != nil {
		return false, fmt.Errorf("mark profile terminated: %w", err)
	}

	return result.RowsAffected() > 0, nil
}
