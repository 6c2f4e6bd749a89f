package models

import "time"

// Room types mirror the marketplace objects a conversation is attached to.
const (
	RoomTypeProperty   = "property"
	RoomTypeService    = "service"
	RoomTypeInvestment = "investment"
	RoomTypeGeneral    = "general"
)

// ChatRoom represents a persisted chat room. The ID is an opaque string
// and may encode a domain reference, e.g. "property_42".
type ChatRoom struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	RoomType    string     `json:"room_type"`
	ReferenceID *int64     `json:"reference_id,omitempty"`
	CreatedBy   int64      `json:"created_by"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// Participant roles within a room.
const (
	RoleAdmin       = "admin"
	RoleModerator   = "moderator"
	RoleParticipant = "participant"
)

// Participant represents a user's membership in a chat room.
type Participant struct {
	ID         int64      `json:"id"`
	RoomID     string     `json:"room_id"`
	UserID     int64      `json:"user_id"`
	Role       string     `json:"role"`
	JoinedAt   time.Time  `json:"joined_at"`
	LastReadAt *time.Time `json:"last_read_at,omitempty"`
	IsActive   bool       `json:"is_active"`
}
