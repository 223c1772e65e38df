package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avelichko/matchbook/internal/domain/model"
)

var ErrFiltersNotFound = errors.New("filter settings not found")

type FilterRepo struct {
	pool *pgxpool.Pool
}

func NewFilterRepo(pool *pgxpool.Pool) *FilterRepo {
	return &FilterRepo{pool: pool}
}

func (r *FilterRepo) Get(ctx context.Context, userID int64) (model.FilterSettings, error) {
	if userID <= 0 {
		return model.FilterSettings{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return model.FilterSettings{}, ErrFiltersNotFound
	}

	var fs model.FilterSettings
	err := r.pool.QueryRow(ctx, `
SELECT
	user_id,
	age_min,
	age_max,
	max_distance_miles,
	ethnicities,
	updated_at
FROM filter_settings
WHERE user_id = $1
LIMIT 1
`, userID).Scan(
		&fs.UserID,
		&fs.AgeMin,
		&fs.AgeMax,
		&fs.MaxDistanceMiles,
		&fs.Ethnicities,
		&fs.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.FilterSettings{}, ErrFiltersNotFound
		}
		return model.FilterSettings{}, fmt.Errorf("get filter settings: %w", err)
	}

	return fs, nil
}

func (r *FilterRepo) Upsert(ctx context.Context, fs model.FilterSettings) (model.FilterSettings, error) {
	if fs.UserID <= 0 {
		return model.FilterSettings{}, fmt.Errorf("invalid filter settings payload")
	}
	if r.pool == nil {
		return model.FilterSettings{}, fmt.Errorf("postgres pool is nil")
	}

	err := r.pool.QueryRow(ctx, `
INSERT INTO filter_settings (
	user_id,
	age_min,
	age_max,
	max_distance_miles,
	ethnicities,
	updated_at
) VALUES ($1, $2, $3, $4, $5, NOW())
ON CONFLICT (user_id) DO UPDATE SET
	age_min = EXCLUDED.age_min,
	age_max = EXCLUDED.age_max,
	max_distance_miles = EXCLUDED.max_distance_miles,
	ethnicities = EXCLUDED.ethnicities,
	updated_at = NOW()
RETURNING updated_at
`, fs.UserID, fs.AgeMin, fs.AgeMax, fs.MaxDistanceMiles, fs.Ethnicities).Scan(&fs.UpdatedAt)
	if err != nil {
		return model.FilterSettings{}, fmt.Errorf("upsert filter settings: %w", err)
	}

	return fs, nil
}
