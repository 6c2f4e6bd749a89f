// Package notify lets the CRUD side of the platform push events to live
// chat connections. It holds only the manager's delivery capability,
// never its internal state.
package notify

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/arunderam/dreambig-real-estate-platform-sub000/internal/metrics"
)

// Broadcaster is the delivery capability exposed by the chat connection
// manager.
type Broadcaster interface {
	SendToUser(userID int64, v any) bool
	BroadcastToRoom(roomID string, v any, excludeUserID int64)
}

// BookingUpdateEvent tells a user their booking changed state.
type BookingUpdateEvent struct {
	Type       string `json:"type"`
	BookingID  int64  `json:"booking_id"`
	PropertyID int64  `json:"property_id,omitempty"`
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	Timestamp  string `json:"timestamp"`
}

// AnnouncementEvent is a server-initiated notice to a whole room.
type AnnouncementEvent struct {
	Type      string `json:"type"`
	RoomID    string `json:"room_id"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// Service delivers platform notifications over live chat connections.
// Delivery is best-effort: an offline user simply misses the push.
type Service struct {
	br     Broadcaster
	logger zerolog.Logger
}

// NewService creates a notification service backed by the broadcaster.
func NewService(br Broadcaster, logger zerolog.Logger) *Service {
	return &Service{
		br:     br,
		logger: logger.With().Str("component", "notify").Logger(),
	}
}

// BookingStatusChanged pushes a booking_update to the booking's user.
// Returns false when the user has no live session.
func (s *Service) BookingStatusChanged(userID, bookingID, propertyID int64, status, message string) bool {
	delivered := s.br.SendToUser(userID, BookingUpdateEvent{
		Type:       "booking_update",
		BookingID:  bookingID,
		PropertyID: propertyID,
		Status:     status,
		Message:    message,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
	if delivered {
		metrics.NotificationsPushed.Inc()
	} else {
		s.logger.Debug().
			Int64("user_id", userID).
			Int64("booking_id", bookingID).
			Msg("booking update not delivered, user offline")
	}
	return delivered
}

// AnnounceToRoom pushes an ephemeral announcement to every member of a
// room. Nothing is persisted.
func (s *Service) AnnounceToRoom(roomID, content string) {
	s.br.BroadcastToRoom(roomID, AnnouncementEvent{
		Type:      "announcement",
		RoomID:    roomID,
		Content:   content,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}, 0)
	metrics.NotificationsPushed.Inc()
}
