package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/arunderam/dreambig-real-estate-platform-sub000/internal/auth"
	"github.com/arunderam/dreambig-real-estate-platform-sub000/internal/chat"
	"github.com/arunderam/dreambig-real-estate-platform-sub000/internal/notify"
	"github.com/arunderam/dreambig-real-estate-platform-sub000/internal/store"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	db              store.DataStore
	mgr             *chat.Manager
	dispatcher      *chat.Dispatcher
	verifier        auth.Verifier
	notifier        *notify.Service
	logger          zerolog.Logger
	maxMessageBytes int64
}

// NewHandler creates a new Handler with the given dependencies.
// maxMessageBytes caps inbound websocket frames; zero means no limit.
func NewHandler(db store.DataStore, mgr *chat.Manager, dispatcher *chat.Dispatcher, verifier auth.Verifier, notifier *notify.Service, logger zerolog.Logger, maxMessageBytes int64) *Handler {
	return &Handler{
		db:              db,
		mgr:             mgr,
		dispatcher:      dispatcher,
		verifier:        verifier,
		notifier:        notifier,
		logger:          logger,
		maxMessageBytes: maxMessageBytes,
	}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// parsePagination reads limit/offset query params with defaults and caps.
func parsePagination(r *http.Request, defaultLimit, maxLimit int) (limit, offset int) {
	limit = defaultLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	if s := r.URL.Query().Get("offset"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
