package models

import "time"

// Message types supported by the chat protocol.
const (
	MessageTypeText   = "text"
	MessageTypeImage  = "image"
	MessageTypeFile   = "file"
	MessageTypeSystem = "system"
)

// ChatMessage represents a persisted chat message.
type ChatMessage struct {
	ID          int64      `json:"id"`
	RoomID      string     `json:"room_id"`
	SenderID    int64      `json:"sender_id"`
	Content     string     `json:"content"`
	MessageType string     `json:"message_type"`
	FileURL     string     `json:"file_url,omitempty"`
	IsEdited    bool       `json:"is_edited"`
	Timestamp   time.Time  `json:"timestamp"`
	EditedAt    *time.Time `json:"edited_at,omitempty"`
}
