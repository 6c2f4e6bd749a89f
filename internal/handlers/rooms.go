package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/arunderam/dreambig-real-estate-platform-sub000/internal/api/middleware"
	"github.com/arunderam/dreambig-real-estate-platform-sub000/internal/models"
)

// CreateRoomRequest represents the room creation request.
type CreateRoomRequest struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	RoomType    string `json:"room_type,omitempty"`
	ReferenceID *int64 `json:"reference_id,omitempty"`
}

// RoomResponse represents a room in API responses.
type RoomResponse struct {
	RoomID            string `json:"room_id"`
	Name              string `json:"name"`
	Description       string `json:"description,omitempty"`
	RoomType          string `json:"room_type"`
	ReferenceID       *int64 `json:"reference_id,omitempty"`
	ParticipantsCount int    `json:"participants_count,omitempty"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at,omitempty"`
}

// ParticipantResponse represents a room participant.
type ParticipantResponse struct {
	UserID     int64  `json:"user_id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Online     bool   `json:"online"`
	JoinedAt   string `json:"joined_at"`
	LastReadAt string `json:"last_read_at,omitempty"`
}

// HistoryMessageResponse represents a message in the REST history reply.
type HistoryMessageResponse struct {
	MessageID   int64  `json:"message_id"`
	SenderID    int64  `json:"sender_id"`
	SenderName  string `json:"sender_name"`
	Content     string `json:"content"`
	MessageType string `json:"message_type"`
	FileURL     string `json:"file_url,omitempty"`
	IsEdited    bool   `json:"is_edited"`
	Timestamp   string `json:"timestamp"`
}

// CreateRoom handles room creation (authenticated).
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())

	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		h.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.RoomType == "" {
		req.RoomType = models.RoomTypeGeneral
	}

	room, err := h.db.CreateRoom(r.Context(), &models.ChatRoom{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		RoomType:    req.RoomType,
		ReferenceID: req.ReferenceID,
		CreatedBy:   identity.UserID,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create chat room")
		h.Error(w, http.StatusInternalServerError, "failed to create chat room")
		return
	}

	// Creator joins as admin
	if _, err := h.db.AddParticipant(r.Context(), room.ID, identity.UserID, models.RoleAdmin); err != nil {
		h.logger.Error().Err(err).Str("room_id", room.ID).Msg("failed to add room creator")
	}

	h.JSON(w, http.StatusCreated, roomResponse(room, 0))
}

// ListRooms handles listing the current user's chat rooms.
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())

	rooms, err := h.db.ListUserRooms(r.Context(), identity.UserID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	result := make([]RoomResponse, 0, len(rooms))
	for i := range rooms {
		participants, err := h.db.ListParticipants(r.Context(), rooms[i].ID)
		if err != nil {
			h.Error(w, http.StatusInternalServerError, "database error")
			return
		}
		result = append(result, roomResponse(&rooms[i], len(participants)))
	}

	h.JSON(w, http.StatusOK, result)
}

// GetRoom handles fetching room details with participants.
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	roomID := chi.URLParam(r, "id")

	room, err := h.db.GetRoom(r.Context(), roomID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if room == nil {
		h.Error(w, http.StatusNotFound, "chat room not found")
		return
	}

	participants, err := h.db.ListParticipants(r.Context(), roomID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if !isParticipant(participants, identity.UserID) {
		h.Error(w, http.StatusForbidden, "access denied to this chat room")
		return
	}

	details := make([]ParticipantResponse, 0, len(participants))
	for _, p := range participants {
		resp := ParticipantResponse{
			UserID:   p.UserID,
			Name:     "Unknown",
			Role:     p.Role,
			Online:   h.mgr.IsOnline(p.UserID),
			JoinedAt: p.JoinedAt.UTC().Format(time.RFC3339),
		}
		if user, err := h.db.GetUser(r.Context(), p.UserID); err == nil && user != nil {
			resp.Name = user.Name
		}
		if p.LastReadAt != nil {
			resp.LastReadAt = p.LastReadAt.UTC().Format(time.RFC3339)
		}
		details = append(details, resp)
	}

	h.JSON(w, http.StatusOK, map[string]any{
		"room":         roomResponse(room, len(participants)),
		"participants": details,
	})
}

// JoinRoom handles joining a chat room. The live membership index is
// updated as well when the user has an open connection.
func (h *Handler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	roomID := chi.URLParam(r, "id")

	room, err := h.db.GetRoom(r.Context(), roomID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if room == nil {
		h.Error(w, http.StatusNotFound, "chat room not found")
		return
	}

	participant, err := h.db.AddParticipant(r.Context(), roomID, identity.UserID, models.RoleParticipant)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to join chat room")
		return
	}

	h.mgr.JoinRoom(roomID, identity.UserID)

	h.JSON(w, http.StatusOK, map[string]any{
		"message":   "successfully joined chat room",
		"room_id":   roomID,
		"joined_at": participant.JoinedAt.UTC().Format(time.RFC3339),
	})
}

// LeaveRoom handles leaving a chat room.
func (h *Handler) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	roomID := chi.URLParam(r, "id")

	room, err := h.db.GetRoom(r.Context(), roomID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if room == nil {
		h.Error(w, http.StatusNotFound, "chat room not found")
		return
	}

	if err := h.db.RemoveParticipant(r.Context(), roomID, identity.UserID); err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to leave chat room")
		return
	}

	h.mgr.LeaveRoom(roomID, identity.UserID)

	h.JSON(w, http.StatusOK, map[string]any{
		"message": "successfully left chat room",
		"room_id": roomID,
	})
}

// GetMessages handles fetching paginated room history over REST. The
// store returns newest first; the response is chronological.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	roomID := chi.URLParam(r, "id")

	participants, err := h.db.ListParticipants(r.Context(), roomID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if !isParticipant(participants, identity.UserID) {
		h.Error(w, http.StatusForbidden, "access denied to this chat room")
		return
	}

	limit, offset := parsePagination(r, 50, 200)

	messages, err := h.db.GetMessages(r.Context(), roomID, limit, offset)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to fetch messages")
		return
	}

	names := make(map[int64]string)
	formatted := make([]HistoryMessageResponse, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		name, ok := names[msg.SenderID]
		if !ok {
			name = "Unknown"
			if user, err := h.db.GetUser(r.Context(), msg.SenderID); err == nil && user != nil {
				name = user.Name
			}
			names[msg.SenderID] = name
		}
		formatted = append(formatted, HistoryMessageResponse{
			MessageID:   msg.ID,
			SenderID:    msg.SenderID,
			SenderName:  name,
			Content:     msg.Content,
			MessageType: msg.MessageType,
			FileURL:     msg.FileURL,
			IsEdited:    msg.IsEdited,
			Timestamp:   msg.Timestamp.UTC().Format(time.RFC3339),
		})
	}

	h.JSON(w, http.StatusOK, map[string]any{
		"room_id":  roomID,
		"messages": formatted,
		"has_more": len(messages) == limit,
	})
}

// MarkRead handles marking a room as read for the current user.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	roomID := chi.URLParam(r, "id")

	participant, err := h.db.UpdateLastRead(r.Context(), roomID, identity.UserID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to mark room as read")
		return
	}
	if participant == nil {
		h.Error(w, http.StatusNotFound, "participant not found")
		return
	}

	resp := map[string]any{
		"message": "chat room marked as read",
		"room_id": roomID,
	}
	if participant.LastReadAt != nil {
		resp["last_read_at"] = participant.LastReadAt.UTC().Format(time.RFC3339)
	}
	h.JSON(w, http.StatusOK, resp)
}

// OnlineUsers handles listing currently connected users.
func (h *Handler) OnlineUsers(w http.ResponseWriter, r *http.Request) {
	online := h.mgr.ListOnline()
	h.JSON(w, http.StatusOK, map[string]any{
		"online_users": online,
		"count":        len(online),
	})
}

// CreatePropertyRoom creates or joins the chat room attached to a
// property listing. Room IDs follow the "property_<id>" convention.
func (h *Handler) CreatePropertyRoom(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())

	propertyID, err := strconv.ParseInt(chi.URLParam(r, "propertyID"), 10, 64)
	if err != nil || propertyID <= 0 {
		h.Error(w, http.StatusBadRequest, "invalid property ID")
		return
	}

	roomID := fmt.Sprintf("property_%d", propertyID)

	existing, err := h.db.GetRoom(r.Context(), roomID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if existing != nil {
		if _, err := h.db.AddParticipant(r.Context(), roomID, identity.UserID, models.RoleParticipant); err != nil {
			h.Error(w, http.StatusInternalServerError, "failed to join property chat room")
			return
		}
		h.mgr.JoinRoom(roomID, identity.UserID)
		h.JSON(w, http.StatusOK, map[string]any{
			"room_id": roomID,
			"name":    existing.Name,
			"message": "joined existing property chat room",
		})
		return
	}

	room, err := h.db.CreateRoom(r.Context(), &models.ChatRoom{
		ID:          roomID,
		Name:        fmt.Sprintf("Property %d", propertyID),
		Description: fmt.Sprintf("Chat room for property %d", propertyID),
		RoomType:    models.RoomTypeProperty,
		ReferenceID: &propertyID,
		CreatedBy:   identity.UserID,
	})
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to create property chat room")
		return
	}
	if _, err := h.db.AddParticipant(r.Context(), roomID, identity.UserID, models.RoleParticipant); err != nil {
		h.logger.Error().Err(err).Str("room_id", roomID).Msg("failed to add property room creator")
	}
	h.mgr.JoinRoom(roomID, identity.UserID)

	h.JSON(w, http.StatusCreated, map[string]any{
		"room_id": room.ID,
		"name":    room.Name,
		"message": "property chat room created successfully",
	})
}

func roomResponse(room *models.ChatRoom, participantCount int) RoomResponse {
	resp := RoomResponse{
		RoomID:            room.ID,
		Name:              room.Name,
		Description:       room.Description,
		RoomType:          room.RoomType,
		ReferenceID:       room.ReferenceID,
		ParticipantsCount: participantCount,
		CreatedAt:         room.CreatedAt.UTC().Format(time.RFC3339),
	}
	if room.UpdatedAt != nil {
		resp.UpdatedAt = room.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func isParticipant(participants []models.Participant, userID int64) bool {
	for _, p := range participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}
