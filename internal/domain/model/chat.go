package model

import "time"

// ChatMessage is an immutable line of order conversation.
type ChatMessage struct {
	ID        int64
	OrderID   int64
	UserID    int64
	Body      string
	IsSupport bool
	CreatedAt time.Time
}

// ChatEntry is a message joined with the sender name for history views.
type ChatEntry struct {
	ChatMessage
	SenderName string
}

// Participant is one side of an order conversation, resolved once when the
// connection or request is authorized.
type Participant struct {
	UserID      int64
	OrderID     int64
	DisplayName string
	IsSupport   bool
}
