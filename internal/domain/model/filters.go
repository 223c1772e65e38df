package model

import "time"

// FilterSettings is a per-viewer preference record, one row per user.
// MaxDistanceMiles equal to the unbounded sentinel disables the distance
// filter entirely.
type FilterSettings struct {
	UserID           int64     `json:"user_id"`
	AgeMin           int       `json:"age_min"`
	AgeMax           int       `json:"age_max"`
	MaxDistanceMiles int       `json:"max_distance_miles"`
	Ethnicities      []string  `json:"ethnicities"`
	UpdatedAt        time.Time `json:"updated_at"`
}
