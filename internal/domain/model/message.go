package model

import "time"

// Message is immutable once created except for IsRead, which transitions
// false to true exactly once, by the non-sending participant.
type Message struct {
	ID        int64     `json:"id"`
	MatchID   int64     `json:"match_id"`
	SenderID  int64     `json:"sender_id"`
	Content   string    `json:"content"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
