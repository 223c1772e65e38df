package model

import "time"

type Profile struct {
	UserID         int64      `json:"user_id"`
	DisplayName    string     `json:"display_name"`
	Age            int        `json:"age"`
	Bio            string     `json:"bio"`
	Photos         []string   `json:"photos"`
	Lat            float64    `json:"lat"`
	Lon            float64    `json:"lon"`
	City           string     `json:"city"`
	State          string     `json:"state"`
	Ethnicities    []string   `json:"ethnicities"`
	Interests      []string   `json:"interests"`
	IsDiscoverable bool       `json:"is_discoverable"`
	IsPremium      bool       `json:"is_premium"`
	LastActive     time.Time  `json:"last_active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
}
