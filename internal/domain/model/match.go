package model

import (
	"time"

	"github.com/avelichko/matchbook/internal/domain/enums"
)

// Match is an undirected pairing stored with the lower user id in UserAID so
// the (user_a_id, user_b_id) pair key is unique regardless of like order.
type Match struct {
	ID            int64      `json:"id"`
	UserAID       int64      `json:"user_a_id"`
	UserBID       int64      `json:"user_b_id"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
}

func (m Match) Status() enums.MatchStatus {
	if m.IsActive {
		return enums.MatchStatusActive
	}
	return enums.MatchStatusInactive
}
