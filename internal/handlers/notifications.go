package handlers

import (
	"encoding/json"
	"net/http"
)

// NotifyRequest is the internal hook the booking/CRUD layer calls to push
// an event over live chat connections.
type NotifyRequest struct {
	UserID     int64  `json:"user_id,omitempty"`
	RoomID     string `json:"room_id,omitempty"`
	BookingID  int64  `json:"booking_id,omitempty"`
	PropertyID int64  `json:"property_id,omitempty"`
	Status     string `json:"status,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Notify handles server-side notification pushes. Room announcements and
// per-user booking updates are both routed through the chat manager's
// delivery capability.
func (h *Handler) Notify(w http.ResponseWriter, r *http.Request) {
	var req NotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	switch {
	case req.RoomID != "":
		if req.Message == "" {
			h.Error(w, http.StatusBadRequest, "message is required")
			return
		}
		h.notifier.AnnounceToRoom(req.RoomID, req.Message)
		h.JSON(w, http.StatusOK, map[string]any{"delivered": true})

	case req.UserID > 0:
		if req.BookingID <= 0 || req.Status == "" {
			h.Error(w, http.StatusBadRequest, "booking_id and status are required")
			return
		}
		delivered := h.notifier.BookingStatusChanged(req.UserID, req.BookingID, req.PropertyID, req.Status, req.Message)
		h.JSON(w, http.StatusOK, map[string]any{"delivered": delivered})

	default:
		h.Error(w, http.StatusBadRequest, "user_id or room_id is required")
	}
}
