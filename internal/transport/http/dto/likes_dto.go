package dto

import "time"

type RecordLikeRequest struct {
	ToUserID int64 `json:"to_user_id"`
}

type RecordLikeResponse struct {
	Liked      bool   `json:"liked"`
	IsNewMatch bool   `json:"is_new_match"`
	MatchID    *int64 `json:"match_id,omitempty"`
}

type IncomingLikeResponse struct {
	UserID      int64     `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Age         int       `json:"age"`
	City        string    `json:"city,omitempty"`
	State       string    `json:"state,omitempty"`
	PhotoURLs   []string  `json:"photo_urls"`
	LikedAt     time.Time `json:"liked_at"`
}

type IncomingLikesResponse struct {
	Likes []IncomingLikeResponse `json:"likes"`
}
