package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/arunderam/dreambig-real-estate-platform-sub000/internal/chat"
)

// upgrader converts an HTTP connection into a WebSocket connection.
// Clients connect from mobile apps and arbitrary web origins.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeWS is the chat connection entry point. The path carries the bearer
// credential; it is verified before any session exists, and a rejection
// closes the socket with a policy-violation code.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	if h.maxMessageBytes > 0 {
		conn.SetReadLimit(h.maxMessageBytes)
	}

	identity, err := h.verifier.Verify(r.Context(), token)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket auth rejected")
		if err := conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "authentication failed"),
			closeDeadline()); err != nil {
			h.logger.Debug().Err(err).Msg("close frame write failed")
		}
		conn.Close()
		return
	}

	h.dispatcher.Serve(r.Context(), conn, identity.UserID, chat.Profile{
		Name: identity.Name,
		Role: identity.Role,
	})
}

func closeDeadline() time.Time {
	return time.Now().Add(time.Second)
}
