package chat

import (
	"errors"
	"testing"
)

func TestDecodeChatMessage(t *testing.T) {
	in, err := DecodeInbound([]byte(`{"type":"chat_message","room_id":"room1","content":"  hello  ","message_type":"image"}`))
	if err != nil {
		t.Fatal(err)
	}
	msg, ok := in.(ChatMessageIn)
	if !ok {
		t.Fatalf("expected ChatMessageIn, got %T", in)
	}
	if msg.RoomID != "room1" {
		t.Fatalf("expected room1, got %q", msg.RoomID)
	}
	if msg.Content != "hello" {
		t.Fatalf("content should be trimmed, got %q", msg.Content)
	}
	if msg.MessageType != "image" {
		t.Fatalf("expected image, got %q", msg.MessageType)
	}
}

func TestDecodeChatMessageDefaultsType(t *testing.T) {
	in, err := DecodeInbound([]byte(`{"type":"chat_message","room_id":"room1","content":"hi"}`))
	if err != nil {
		t.Fatal(err)
	}
	if got := in.(ChatMessageIn).MessageType; got != "text" {
		t.Fatalf("expected default type text, got %q", got)
	}
}

func TestDecodeJoinLeave(t *testing.T) {
	in, err := DecodeInbound([]byte(`{"type":"join_room","room_id":"room1"}`))
	if err != nil {
		t.Fatal(err)
	}
	if got := in.(JoinRoomIn).RoomID; got != "room1" {
		t.Fatalf("expected room1, got %q", got)
	}

	in, err = DecodeInbound([]byte(`{"type":"leave_room","room_id":"room2"}`))
	if err != nil {
		t.Fatal(err)
	}
	if got := in.(LeaveRoomIn).RoomID; got != "room2" {
		t.Fatalf("expected room2, got %q", got)
	}
}

func TestDecodeTyping(t *testing.T) {
	in, err := DecodeInbound([]byte(`{"type":"typing","room_id":"room1","is_typing":true}`))
	if err != nil {
		t.Fatal(err)
	}
	typing := in.(TypingIn)
	if typing.RoomID != "room1" || !typing.IsTyping {
		t.Fatalf("unexpected decode: %+v", typing)
	}
}

func TestDecodeGetOnlineUsers(t *testing.T) {
	in, err := DecodeInbound([]byte(`{"type":"get_online_users"}`))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := in.(GetOnlineUsersIn); !ok {
		t.Fatalf("expected GetOnlineUsersIn, got %T", in)
	}
}

func TestDecodeHistoryDefaults(t *testing.T) {
	in, err := DecodeInbound([]byte(`{"type":"get_chat_history","room_id":"room1"}`))
	if err != nil {
		t.Fatal(err)
	}
	hist := in.(GetChatHistoryIn)
	if hist.Limit != DefaultHistoryLimit {
		t.Fatalf("expected default limit %d, got %d", DefaultHistoryLimit, hist.Limit)
	}
	if hist.Offset != 0 {
		t.Fatalf("expected offset 0, got %d", hist.Offset)
	}
}

func TestDecodeHistoryNormalizesBounds(t *testing.T) {
	in, err := DecodeInbound([]byte(`{"type":"get_chat_history","room_id":"room1","limit":-5,"offset":-3}`))
	if err != nil {
		t.Fatal(err)
	}
	hist := in.(GetChatHistoryIn)
	if hist.Limit != DefaultHistoryLimit {
		t.Fatalf("negative limit should fall back to %d, got %d", DefaultHistoryLimit, hist.Limit)
	}
	if hist.Offset != 0 {
		t.Fatalf("negative offset should clamp to 0, got %d", hist.Offset)
	}
}

func TestDecodeUnknownVerb(t *testing.T) {
	_, err := DecodeInbound([]byte(`{"type":"presence_ping"}`))
	if err == nil {
		t.Fatal("expected an error for an unknown verb")
	}
	var unknown *UnknownVerbError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownVerbError, got %T", err)
	}
	if unknown.Verb != "presence_ping" {
		t.Fatalf("expected verb presence_ping, got %q", unknown.Verb)
	}
}

func TestDecodeMalformedFrame(t *testing.T) {
	_, err := DecodeInbound([]byte(`{"type": "chat_message"`))
	if err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
	var unknown *UnknownVerbError
	if errors.As(err, &unknown) {
		t.Fatal("malformed JSON must not decode as an unknown verb")
	}
}

func TestDecodeMissingType(t *testing.T) {
	_, err := DecodeInbound([]byte(`{"room_id":"room1"}`))
	var unknown *UnknownVerbError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownVerbError for a missing type, got %v", err)
	}
}
