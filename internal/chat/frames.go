package chat

import (
	"encoding/json"
	"time"

	"github.com/polkiloo/prowriters/internal/domain/model"
)

const (
	FrameMessage = "message"
	FrameTyping  = "typing"
	FrameError   = "error"
)

// inbound is a frame sent by a client.
type inbound struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	IsTyping bool   `json:"is_typing"`
}

type messageFrame struct {
	Type              string    `json:"type"`
	Text              string    `json:"text"`
	SenderDisplayName string    `json:"sender_display_name"`
	IsSupport         bool      `json:"is_support"`
	Timestamp         time.Time `json:"timestamp"`
}

type typingFrame struct {
	Type              string `json:"type"`
	SenderDisplayName string `json:"sender_display_name"`
	IsTyping          bool   `json:"is_typing"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// MessageFrame encodes a persisted message as sent to room members.
func MessageFrame(p *model.Participant, msg *model.ChatMessage) []byte {
	return encode(messageFrame{
		Type:              FrameMessage,
		Text:              msg.Body,
		SenderDisplayName: p.DisplayName,
		IsSupport:         msg.IsSupport,
		Timestamp:         msg.CreatedAt.UTC(),
	})
}

func typingFrameFor(p model.Participant, typing bool) []byte {
	return encode(typingFrame{Type: FrameTyping, SenderDisplayName: p.DisplayName, IsTyping: typing})
}

func errorFrameFor(text string) []byte {
	return encode(errorFrame{Type: FrameError, Error: text})
}

// encode cannot fail for the frame structs above.
func encode(v any) []byte {
	data, _ := json.Marshal(v)
	return data
}
