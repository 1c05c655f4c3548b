package dto

import "time"

// MessageRequest is a chat message posted over HTTP.
type MessageRequest struct {
	Text string `json:"text"`
}

// MessageResponse describes a stored chat message.
type MessageResponse struct {
	ID                int64     `json:"id"`
	Text              string    `json:"text"`
	SenderDisplayName string    `json:"sender_display_name"`
	IsSupport         bool      `json:"is_support"`
	Timestamp         time.Time `json:"timestamp"`
}
