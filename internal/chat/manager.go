package chat

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/arunderam/dreambig-real-estate-platform-sub000/internal/metrics"
)

// PresenceSink mirrors presence transitions to an external store so the
// rest of the platform can read online status. All calls are best-effort.
type PresenceSink interface {
	MarkOnline(ctx context.Context, info SessionInfo) error
	MarkOffline(ctx context.Context, userID int64) error
}

// Manager is the sole owner of the session registry and the room
// membership index. Every mutation of either structure, and every
// membership snapshot taken for a broadcast, happens under one mutex so
// that disconnect cleanup is atomic with respect to concurrent fan-out.
// Blocking transport writes always happen outside the lock.
type Manager struct {
	logger   zerolog.Logger
	presence PresenceSink // nil when Redis is not configured

	mu       sync.Mutex
	sessions map[int64]*Session
	rooms    map[string]map[int64]struct{}
}

// NewManager creates a connection manager. presence may be nil.
func NewManager(logger zerolog.Logger, presence PresenceSink) *Manager {
	return &Manager{
		logger:   logger.With().Str("component", "chat_manager").Logger(),
		presence: presence,
		sessions: make(map[int64]*Session),
		rooms:    make(map[string]map[int64]struct{}),
	}
}

// Connect registers a new session for the user, replacing any prior one.
// The superseded transport is closed explicitly; the source system left
// it dangling. Room memberships recorded under the same userID survive
// the replacement. Announces online presence to all other sessions.
func (m *Manager) Connect(t Transport, userID int64, profile Profile) *Session {
	sess := newSession(t, userID, profile)

	m.mu.Lock()
	old := m.sessions[userID]
	m.sessions[userID] = sess
	others := m.snapshotSessionsLocked(userID)
	m.mu.Unlock()

	if old != nil {
		_ = old.transport.Close()
		m.logger.Info().Int64("user_id", userID).Msg("superseded previous session")
	} else {
		metrics.ActiveConnections.Inc()
	}
	metrics.ConnectionsTotal.Inc()

	m.logger.Info().
		Int64("user_id", userID).
		Str("session_id", sess.ID).
		Msg("user connected to chat")

	m.fanOut(others, newUserStatusEvent(userID, StatusOnline))
	m.markPresence(sess, true)

	return sess
}

// Disconnect removes the user's session, clears its room memberships and
// announces offline presence. Calling it for an absent user is a no-op.
func (m *Manager) Disconnect(userID int64) {
	m.mu.Lock()
	sess := m.sessions[userID]
	m.mu.Unlock()
	if sess != nil {
		m.DisconnectSession(sess)
	}
}

// DisconnectSession is Disconnect keyed by session identity. A read loop
// whose session was superseded by a newer Connect must not tear down the
// replacement, so cleanup is a no-op unless this exact session is still
// registered.
func (m *Manager) DisconnectSession(sess *Session) {
	m.mu.Lock()
	cur, ok := m.sessions[sess.UserID]
	if !ok || cur != sess {
		m.mu.Unlock()
		return
	}
	delete(m.sessions, sess.UserID)
	for roomID, members := range m.rooms {
		if _, in := members[sess.UserID]; in {
			delete(members, sess.UserID)
			if len(members) == 0 {
				delete(m.rooms, roomID)
			}
		}
	}
	others := m.snapshotSessionsLocked(sess.UserID)
	m.mu.Unlock()

	_ = sess.transport.Close()
	metrics.ActiveConnections.Dec()

	m.logger.Info().
		Int64("user_id", sess.UserID).
		Str("session_id", sess.ID).
		Msg("user disconnected from chat")

	m.fanOut(others, newUserStatusEvent(sess.UserID, StatusOffline))
	m.markPresence(sess, false)
}

// JoinRoom adds the user to the room's member set, creating the room on
// first join. Returns false if the user has no live session. Re-joining
// is a no-op and emits no event. Other members receive user_joined.
func (m *Manager) JoinRoom(roomID string, userID int64) bool {
	m.mu.Lock()
	if _, ok := m.sessions[userID]; !ok {
		m.mu.Unlock()
		return false
	}
	members, ok := m.rooms[roomID]
	if !ok {
		members = make(map[int64]struct{})
		m.rooms[roomID] = members
	}
	if _, already := members[userID]; already {
		m.mu.Unlock()
		return true
	}
	members[userID] = struct{}{}
	m.mu.Unlock()

	m.logger.Info().Int64("user_id", userID).Str("room_id", roomID).Msg("user joined room")
	m.BroadcastToRoom(roomID, newRoomEvent(EventUserJoined, roomID, userID), userID)
	return true
}

// LeaveRoom removes the user's membership, deleting the room if it ends
// up empty, and notifies the remaining members. Idempotent.
func (m *Manager) LeaveRoom(roomID string, userID int64) {
	m.mu.Lock()
	members, ok := m.rooms[roomID]
	if !ok {
		m.mu.Unlock()
		return
	}
	if _, in := members[userID]; !in {
		m.mu.Unlock()
		return
	}
	delete(members, userID)
	if len(members) == 0 {
		delete(m.rooms, roomID)
	}
	m.mu.Unlock()

	m.logger.Info().Int64("user_id", userID).Str("room_id", roomID).Msg("user left room")
	m.BroadcastToRoom(roomID, newRoomEvent(EventUserLeft, roomID, userID), 0)
}

// SendToUser attempts delivery to the user's live session. A write
// failure means a dead transport: the session is cleaned up and false is
// returned. Returns false if the user has no session.
func (m *Manager) SendToUser(userID int64, v any) bool {
	m.mu.Lock()
	sess, ok := m.sessions[userID]
	m.mu.Unlock()
	if !ok {
		return false
	}

	if err := sess.send(v); err != nil {
		m.logger.Warn().
			Err(err).
			Int64("user_id", userID).
			Msg("send failed, cleaning up connection")
		metrics.SendFailures.Inc()
		m.DisconnectSession(sess)
		return false
	}
	metrics.EnvelopesSent.Inc()
	return true
}

// BroadcastToRoom delivers the envelope to every current room member
// except excludeUserID (0 excludes nobody). The member set is snapshotted
// under the lock; sends happen outside it, and one member's dead
// transport never aborts the rest of the fan-out.
func (m *Manager) BroadcastToRoom(roomID string, v any, excludeUserID int64) {
	m.mu.Lock()
	members := make([]int64, 0, len(m.rooms[roomID]))
	for uid := range m.rooms[roomID] {
		members = append(members, uid)
	}
	m.mu.Unlock()

	for _, uid := range members {
		if uid == excludeUserID {
			continue
		}
		m.SendToUser(uid, v)
	}
}

// ListOnline returns a snapshot of all live sessions, ordered by user ID.
func (m *Manager) ListOnline() []SessionInfo {
	m.mu.Lock()
	infos := make([]SessionInfo, 0, len(m.sessions))
	for _, sess := range m.sessions {
		infos = append(infos, sess.info())
	}
	m.mu.Unlock()

	sort.Slice(infos, func(i, j int) bool { return infos[i].UserID < infos[j].UserID })
	return infos
}

// RoomParticipants returns session summaries for the room's members that
// are currently online.
func (m *Manager) RoomParticipants(roomID string) []SessionInfo {
	m.mu.Lock()
	infos := make([]SessionInfo, 0, len(m.rooms[roomID]))
	for uid := range m.rooms[roomID] {
		if sess, ok := m.sessions[uid]; ok {
			infos = append(infos, sess.info())
		}
	}
	m.mu.Unlock()

	sort.Slice(infos, func(i, j int) bool { return infos[i].UserID < infos[j].UserID })
	return infos
}

// IsOnline reports whether the user has a live session.
func (m *Manager) IsOnline(userID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[userID]
	return ok
}

// Shutdown closes every live transport and clears both registries. Used
// at process teardown.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		sessions = append(sessions, sess)
	}
	m.sessions = make(map[int64]*Session)
	m.rooms = make(map[string]map[int64]struct{})
	m.mu.Unlock()

	for _, sess := range sessions {
		_ = sess.transport.Close()
		metrics.ActiveConnections.Dec()
		m.markPresence(sess, false)
	}
	m.logger.Info().Int("closed", len(sessions)).Msg("chat manager shut down")
}

// snapshotSessionsLocked returns all sessions except the excluded user.
// Caller must hold m.mu.
func (m *Manager) snapshotSessionsLocked(excludeUserID int64) []*Session {
	others := make([]*Session, 0, len(m.sessions))
	for uid, sess := range m.sessions {
		if uid == excludeUserID {
			continue
		}
		others = append(others, sess)
	}
	return others
}

// fanOut sends an envelope to a session snapshot, cleaning up any member
// whose transport turns out to be dead.
func (m *Manager) fanOut(sessions []*Session, v any) {
	for _, sess := range sessions {
		if err := sess.send(v); err != nil {
			metrics.SendFailures.Inc()
			m.DisconnectSession(sess)
			continue
		}
		metrics.EnvelopesSent.Inc()
	}
}

// markPresence publishes a presence transition to the sink, if any.
func (m *Manager) markPresence(sess *Session, online bool) {
	if m.presence == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var err error
	if online {
		err = m.presence.MarkOnline(ctx, sess.info())
	} else {
		err = m.presence.MarkOffline(ctx, sess.UserID)
	}
	if err != nil {
		m.logger.Warn().Err(err).Int64("user_id", sess.UserID).Msg("presence mirror update failed")
	}
}
