package dto

import "time"

type SendMessageRequest struct {
	Content     string `json:"content"`
	ClientToken string `json:"client_token,omitempty"`
}

type MessageResponse struct {
	ID        int64     `json:"id"`
	MatchID   int64     `json:"match_id"`
	SenderID  int64     `json:"sender_id"`
	Content   string    `json:"content"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type SendMessageResponse struct {
	Message   MessageResponse `json:"message"`
	Duplicate bool            `json:"duplicate"`
}

type MessageHistoryResponse struct {
	Messages []MessageResponse `json:"messages"`
}

type MarkReadResponse struct {
	Marked int64 `json:"marked"`
}
