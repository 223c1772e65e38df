package dto

import (
	"time"

	"github.com/avelichko/matchbook/internal/domain/enums"
)

type MatchSummaryResponse struct {
	MatchID            int64      `json:"match_id"`
	OtherUserID        int64      `json:"other_user_id"`
	OtherDisplayName   string     `json:"other_display_name"`
	OtherAge           int        `json:"other_age"`
	OtherPhotoURL      *string    `json:"other_photo_url,omitempty"`
	LastMessagePreview string     `json:"last_message_preview,omitempty"`
	LastMessageAt      *time.Time `json:"last_message_at,omitempty"`
	UnreadCount        int        `json:"unread_count"`
	CreatedAt          time.Time  `json:"created_at"`
}

type MatchesResponse struct {
	Matches []MatchSummaryResponse `json:"matches"`
}

type UnmatchResponse struct {
	MatchID int64             `json:"match_id"`
	Status  enums.MatchStatus `json:"status"`
}
