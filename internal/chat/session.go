package chat

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Presence states derived from session existence.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Transport is the write side of one live connection. *websocket.Conn
// satisfies it directly.
type Transport interface {
	WriteJSON(v any) error
	Close() error
}

// Profile carries the authenticated user attributes attached to a session.
type Profile struct {
	Name  string
	Email string
	Role  string
}

// Session is the in-memory record of one live connection for one
// authenticated user. It is created on Connect and destroyed on
// disconnect or unrecoverable send failure. The manager owns it for its
// whole lifetime.
type Session struct {
	ID          string
	UserID      int64
	Name        string
	Email       string
	Role        string
	ConnectedAt time.Time

	transport Transport
	// writeMu serializes writes; the websocket allows one writer at a time
	// while acks and broadcasts arrive from different goroutines.
	writeMu sync.Mutex
}

func newSession(t Transport, userID int64, profile Profile) *Session {
	name := profile.Name
	if name == "" {
		name = "Unknown"
	}
	role := profile.Role
	if role == "" {
		role = "user"
	}
	return &Session{
		ID:          ulid.Make().String(),
		UserID:      userID,
		Name:        name,
		Email:       profile.Email,
		Role:        role,
		ConnectedAt: time.Now().UTC(),
		transport:   t,
	}
}

// send writes one outbound envelope to the session's transport.
func (s *Session) send(v any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.transport.WriteJSON(v)
}

// SessionInfo is the read-only session summary exposed by ListOnline and
// the online_users envelope.
type SessionInfo struct {
	UserID      int64  `json:"user_id"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Role        string `json:"role"`
	Status      string `json:"status"`
	SessionID   string `json:"session_id"`
	ConnectedAt string `json:"connected_at"`
}

func (s *Session) info() SessionInfo {
	return SessionInfo{
		UserID:      s.UserID,
		Name:        s.Name,
		Email:       s.Email,
		Role:        s.Role,
		Status:      StatusOnline,
		SessionID:   s.ID,
		ConnectedAt: wireTime(s.ConnectedAt),
	}
}
