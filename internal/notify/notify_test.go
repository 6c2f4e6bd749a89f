package notify

import (
	"testing"

	"github.com/rs/zerolog"
)

type recordingBroadcaster struct {
	direct    map[int64][]any
	broadcast map[string][]any
	online    map[int64]bool
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{
		direct:    make(map[int64][]any),
		broadcast: make(map[string][]any),
		online:    make(map[int64]bool),
	}
}

func (b *recordingBroadcaster) SendToUser(userID int64, v any) bool {
	if !b.online[userID] {
		return false
	}
	b.direct[userID] = append(b.direct[userID], v)
	return true
}

func (b *recordingBroadcaster) BroadcastToRoom(roomID string, v any, _ int64) {
	b.broadcast[roomID] = append(b.broadcast[roomID], v)
}

func TestBookingStatusChanged(t *testing.T) {
	br := newRecordingBroadcaster()
	br.online[1] = true
	svc := NewService(br, zerolog.Nop())

	if !svc.BookingStatusChanged(1, 10, 20, "confirmed", "Your viewing is confirmed") {
		t.Fatal("expected delivery to an online user")
	}
	if len(br.direct[1]) != 1 {
		t.Fatalf("expected 1 envelope, got %d", len(br.direct[1]))
	}
	evt, ok := br.direct[1][0].(BookingUpdateEvent)
	if !ok {
		t.Fatalf("expected BookingUpdateEvent, got %T", br.direct[1][0])
	}
	if evt.Type != "booking_update" || evt.BookingID != 10 || evt.Status != "confirmed" {
		t.Fatalf("unexpected envelope: %+v", evt)
	}
}

func TestBookingStatusChangedOffline(t *testing.T) {
	br := newRecordingBroadcaster()
	svc := NewService(br, zerolog.Nop())

	if svc.BookingStatusChanged(1, 10, 0, "cancelled", "") {
		t.Fatal("expected no delivery to an offline user")
	}
}

func TestAnnounceToRoom(t *testing.T) {
	br := newRecordingBroadcaster()
	svc := NewService(br, zerolog.Nop())

	svc.AnnounceToRoom("property_7", "Open house this Saturday")

	if len(br.broadcast["property_7"]) != 1 {
		t.Fatalf("expected 1 broadcast, got %d", len(br.broadcast["property_7"]))
	}
	evt := br.broadcast["property_7"][0].(AnnouncementEvent)
	if evt.Type != "announcement" || evt.Content != "Open house this Saturday" {
		t.Fatalf("unexpected envelope: %+v", evt)
	}
}
