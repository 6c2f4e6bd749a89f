package chat

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/arunderam/dreambig-real-estate-platform-sub000/internal/metrics"
	"github.com/arunderam/dreambig-real-estate-platform-sub000/internal/models"
)

// Gateway is the message-store boundary the dispatcher depends on.
// store.DataStore satisfies it; handlers and tests may substitute fakes.
type Gateway interface {
	CreateMessage(ctx context.Context, roomID string, senderID int64, content, messageType string) (*models.ChatMessage, error)
	// GetMessages returns up to limit messages, most recent first.
	GetMessages(ctx context.Context, roomID string, limit, offset int) ([]models.ChatMessage, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

// Conn is a connection as the dispatcher sees it: framed reads plus the
// session's write side. *websocket.Conn satisfies it.
type Conn interface {
	Transport
	ReadMessage() (messageType int, p []byte, err error)
}

// Dispatcher runs the per-connection read loop, decoding envelopes and
// routing them to verb handlers. One Dispatcher serves all connections;
// per-connection state lives in the Session.
type Dispatcher struct {
	mgr             *Manager
	gateway         Gateway
	logger          zerolog.Logger
	historyLimitMax int
}

// NewDispatcher creates a dispatcher. historyLimitMax caps client-supplied
// history page sizes; zero or negative means the default cap of 200.
func NewDispatcher(mgr *Manager, gateway Gateway, logger zerolog.Logger, historyLimitMax int) *Dispatcher {
	if historyLimitMax <= 0 {
		historyLimitMax = 200
	}
	return &Dispatcher{
		mgr:             mgr,
		gateway:         gateway,
		logger:          logger.With().Str("component", "chat_dispatcher").Logger(),
		historyLimitMax: historyLimitMax,
	}
}

// Serve registers a session for the connection and reads envelopes until
// the transport closes or a frame fails to decode. Cleanup always runs:
// the session is removed from the registry and from every room, and
// offline presence is announced. The connection is single-use; a
// reconnecting client gets a brand-new session.
func (d *Dispatcher) Serve(ctx context.Context, conn Conn, userID int64, profile Profile) {
	sess := d.mgr.Connect(conn, userID, profile)
	defer d.mgr.DisconnectSession(sess)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if err := d.dispatch(ctx, sess, data); err != nil {
			d.logger.Warn().
				Err(err).
				Int64("user_id", userID).
				Msg("terminating connection on malformed frame")
			return
		}
	}
}

// dispatch decodes one envelope and invokes its handler. Handler-local
// failures are logged and swallowed; only a malformed frame propagates
// and ends the read loop.
func (d *Dispatcher) dispatch(ctx context.Context, sess *Session, data []byte) error {
	in, err := DecodeInbound(data)
	if err != nil {
		var unknown *UnknownVerbError
		if errors.As(err, &unknown) {
			d.logger.Warn().Str("verb", unknown.Verb).Int64("user_id", sess.UserID).Msg("unknown message type")
			return nil
		}
		return err
	}
	metrics.EnvelopesReceived.WithLabelValues(in.verb()).Inc()

	switch msg := in.(type) {
	case ChatMessageIn:
		d.handleChatMessage(ctx, sess, msg)
	case JoinRoomIn:
		if msg.RoomID != "" {
			d.mgr.JoinRoom(msg.RoomID, sess.UserID)
		}
	case LeaveRoomIn:
		if msg.RoomID != "" {
			d.mgr.LeaveRoom(msg.RoomID, sess.UserID)
		}
	case TypingIn:
		d.handleTyping(sess, msg)
	case GetOnlineUsersIn:
		d.handleGetOnlineUsers(sess)
	case GetChatHistoryIn:
		d.handleGetChatHistory(ctx, sess, msg)
	}
	return nil
}

// handleChatMessage validates, persists, then broadcasts. Empty content
// or a missing room ID drops the envelope silently. Broadcast goes to
// the other room members; the sender gets a message_sent ack only after
// successful persistence.
func (d *Dispatcher) handleChatMessage(ctx context.Context, sess *Session, in ChatMessageIn) {
	if in.Content == "" || in.RoomID == "" {
		return
	}

	msg, err := d.gateway.CreateMessage(ctx, in.RoomID, sess.UserID, in.Content, in.MessageType)
	if err != nil {
		d.logger.Error().
			Err(err).
			Int64("user_id", sess.UserID).
			Str("room_id", in.RoomID).
			Msg("failed to persist chat message")
		return
	}

	d.mgr.BroadcastToRoom(in.RoomID, ChatMessageEvent{
		Type:        EventChatMessage,
		MessageID:   msg.ID,
		RoomID:      in.RoomID,
		SenderID:    sess.UserID,
		SenderName:  d.senderName(ctx, sess),
		Content:     msg.Content,
		MessageType: msg.MessageType,
		Timestamp:   wireTime(msg.Timestamp),
	}, sess.UserID)

	d.mgr.SendToUser(sess.UserID, MessageSentEvent{
		Type:      EventMessageSent,
		MessageID: msg.ID,
		Timestamp: wireTime(msg.Timestamp),
	})
}

func (d *Dispatcher) handleTyping(sess *Session, in TypingIn) {
	if in.RoomID == "" {
		return
	}
	d.mgr.BroadcastToRoom(in.RoomID, TypingEvent{
		Type:      EventTyping,
		RoomID:    in.RoomID,
		UserID:    sess.UserID,
		IsTyping:  in.IsTyping,
		Timestamp: wireTime(time.Now()),
	}, sess.UserID)
}

func (d *Dispatcher) handleGetOnlineUsers(sess *Session) {
	d.mgr.SendToUser(sess.UserID, OnlineUsersEvent{
		Type:      EventOnlineUsers,
		Users:     d.mgr.ListOnline(),
		Timestamp: wireTime(time.Now()),
	})
}

// handleGetChatHistory fetches a history page and replies in
// chronological order. A store failure yields an empty page rather than
// a dropped connection.
func (d *Dispatcher) handleGetChatHistory(ctx context.Context, sess *Session, in GetChatHistoryIn) {
	if in.RoomID == "" {
		return
	}
	limit := in.Limit
	if limit > d.historyLimitMax {
		limit = d.historyLimitMax
	}

	msgs, err := d.gateway.GetMessages(ctx, in.RoomID, limit, in.Offset)
	if err != nil {
		d.logger.Error().
			Err(err).
			Str("room_id", in.RoomID).
			Msg("failed to fetch chat history")
		msgs = nil
	}

	names := make(map[int64]string)
	history := make([]HistoryMessage, 0, len(msgs))
	// Store returns newest first; walk backwards for chronological order.
	for i := len(msgs) - 1; i >= 0; i-- {
		msg := msgs[i]
		name, ok := names[msg.SenderID]
		if !ok {
			name = d.userName(ctx, msg.SenderID)
			names[msg.SenderID] = name
		}
		history = append(history, HistoryMessage{
			MessageID:   msg.ID,
			SenderID:    msg.SenderID,
			SenderName:  name,
			Content:     msg.Content,
			MessageType: msg.MessageType,
			Timestamp:   wireTime(msg.Timestamp),
		})
	}

	d.mgr.SendToUser(sess.UserID, ChatHistoryEvent{
		Type:      EventChatHistory,
		RoomID:    in.RoomID,
		Messages:  history,
		Timestamp: wireTime(time.Now()),
	})
}

// senderName resolves the sender's display name, preferring the store
// record over the session profile.
func (d *Dispatcher) senderName(ctx context.Context, sess *Session) string {
	if user, err := d.gateway.GetUser(ctx, sess.UserID); err == nil && user != nil && user.Name != "" {
		return user.Name
	}
	return sess.Name
}

func (d *Dispatcher) userName(ctx context.Context, userID int64) string {
	if user, err := d.gateway.GetUser(ctx, userID); err == nil && user != nil && user.Name != "" {
		return user.Name
	}
	return "Unknown"
}
