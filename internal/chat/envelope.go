package chat

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Inbound verbs accepted over a chat connection.
const (
	VerbChatMessage    = "chat_message"
	VerbJoinRoom       = "join_room"
	VerbLeaveRoom      = "leave_room"
	VerbTyping         = "typing"
	VerbGetOnlineUsers = "get_online_users"
	VerbGetChatHistory = "get_chat_history"
)

// Outbound event types.
const (
	EventChatMessage = "chat_message"
	EventMessageSent = "message_sent"
	EventUserJoined  = "user_joined"
	EventUserLeft    = "user_left"
	EventTyping      = "typing"
	EventOnlineUsers = "online_users"
	EventChatHistory = "chat_history"
	EventUserStatus  = "user_status"
)

// DefaultHistoryLimit is used when a history request omits the limit.
const DefaultHistoryLimit = 50

// Inbound is the decoded form of one client envelope. Exactly one
// concrete type exists per verb so dispatch can switch exhaustively.
type Inbound interface {
	verb() string
}

// ChatMessageIn carries a chat message to persist and fan out.
type ChatMessageIn struct {
	RoomID      string `json:"room_id"`
	Content     string `json:"content"`
	MessageType string `json:"message_type"`
}

// JoinRoomIn asks to join a room.
type JoinRoomIn struct {
	RoomID string `json:"room_id"`
}

// LeaveRoomIn asks to leave a room.
type LeaveRoomIn struct {
	RoomID string `json:"room_id"`
}

// TypingIn is an ephemeral typing indicator, never persisted.
type TypingIn struct {
	RoomID   string `json:"room_id"`
	IsTyping bool   `json:"is_typing"`
}

// GetOnlineUsersIn requests the live session list.
type GetOnlineUsersIn struct{}

// GetChatHistoryIn requests paginated room history.
type GetChatHistoryIn struct {
	RoomID string `json:"room_id"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

func (ChatMessageIn) verb() string    { return VerbChatMessage }
func (JoinRoomIn) verb() string       { return VerbJoinRoom }
func (LeaveRoomIn) verb() string      { return VerbLeaveRoom }
func (TypingIn) verb() string         { return VerbTyping }
func (GetOnlineUsersIn) verb() string { return VerbGetOnlineUsers }
func (GetChatHistoryIn) verb() string { return VerbGetChatHistory }

// UnknownVerbError marks an envelope whose type is not one of the six
// verbs. It is logged and skipped, not connection-fatal.
type UnknownVerbError struct {
	Verb string
}

func (e *UnknownVerbError) Error() string {
	return fmt.Sprintf("chat: unknown envelope type %q", e.Verb)
}

// DecodeInbound parses one wire envelope into its typed form. A JSON
// error means a malformed frame; an *UnknownVerbError means a
// well-formed envelope with an unrecognized type.
func DecodeInbound(data []byte) (Inbound, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}

	switch env.Type {
	case VerbChatMessage:
		var in ChatMessageIn
		if err := json.Unmarshal(data, &in); err != nil {
			return nil, err
		}
		in.Content = strings.TrimSpace(in.Content)
		if in.MessageType == "" {
			in.MessageType = "text"
		}
		return in, nil
	case VerbJoinRoom:
		var in JoinRoomIn
		if err := json.Unmarshal(data, &in); err != nil {
			return nil, err
		}
		return in, nil
	case VerbLeaveRoom:
		var in LeaveRoomIn
		if err := json.Unmarshal(data, &in); err != nil {
			return nil, err
		}
		return in, nil
	case VerbTyping:
		var in TypingIn
		if err := json.Unmarshal(data, &in); err != nil {
			return nil, err
		}
		return in, nil
	case VerbGetOnlineUsers:
		return GetOnlineUsersIn{}, nil
	case VerbGetChatHistory:
		in := GetChatHistoryIn{Limit: DefaultHistoryLimit}
		if err := json.Unmarshal(data, &in); err != nil {
			return nil, err
		}
		if in.Limit <= 0 {
			in.Limit = DefaultHistoryLimit
		}
		if in.Offset < 0 {
			in.Offset = 0
		}
		return in, nil
	default:
		return nil, &UnknownVerbError{Verb: env.Type}
	}
}

// wireTime formats a timestamp the way the wire protocol expects.
func wireTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ChatMessageEvent fans a persisted message out to room members.
type ChatMessageEvent struct {
	Type        string `json:"type"`
	MessageID   int64  `json:"message_id"`
	RoomID      string `json:"room_id"`
	SenderID    int64  `json:"sender_id"`
	SenderName  string `json:"sender_name"`
	Content     string `json:"content"`
	MessageType string `json:"message_type"`
	Timestamp   string `json:"timestamp"`
}

// MessageSentEvent acknowledges successful persistence to the sender.
type MessageSentEvent struct {
	Type      string `json:"type"`
	MessageID int64  `json:"message_id"`
	Timestamp string `json:"timestamp"`
}

// RoomEvent announces a membership change (user_joined / user_left).
type RoomEvent struct {
	Type      string `json:"type"`
	RoomID    string `json:"room_id"`
	UserID    int64  `json:"user_id"`
	Timestamp string `json:"timestamp"`
}

// TypingEvent relays a typing indicator to the rest of the room.
type TypingEvent struct {
	Type      string `json:"type"`
	RoomID    string `json:"room_id"`
	UserID    int64  `json:"user_id"`
	IsTyping  bool   `json:"is_typing"`
	Timestamp string `json:"timestamp"`
}

// OnlineUsersEvent replies to get_online_users.
type OnlineUsersEvent struct {
	Type      string        `json:"type"`
	Users     []SessionInfo `json:"users"`
	Timestamp string        `json:"timestamp"`
}

// HistoryMessage is one entry in a chat_history reply.
type HistoryMessage struct {
	MessageID   int64  `json:"message_id"`
	SenderID    int64  `json:"sender_id"`
	SenderName  string `json:"sender_name"`
	Content     string `json:"content"`
	MessageType string `json:"message_type"`
	Timestamp   string `json:"timestamp"`
}

// ChatHistoryEvent replies to get_chat_history in chronological order.
type ChatHistoryEvent struct {
	Type      string           `json:"type"`
	RoomID    string           `json:"room_id"`
	Messages  []HistoryMessage `json:"messages"`
	Timestamp string           `json:"timestamp"`
}

// UserStatusEvent announces presence transitions.
type UserStatusEvent struct {
	Type      string `json:"type"`
	UserID    int64  `json:"user_id"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func newRoomEvent(eventType, roomID string, userID int64) RoomEvent {
	return RoomEvent{
		Type:      eventType,
		RoomID:    roomID,
		UserID:    userID,
		Timestamp: wireTime(time.Now()),
	}
}

func newUserStatusEvent(userID int64, status string) UserStatusEvent {
	return UserStatusEvent{
		Type:      EventUserStatus,
		UserID:    userID,
		Status:    status,
		Timestamp: wireTime(time.Now()),
	}
}
