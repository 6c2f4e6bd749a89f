package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/arunderam/dreambig-real-estate-platform-sub000/internal/api/middleware"
	"github.com/arunderam/dreambig-real-estate-platform-sub000/internal/handlers"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(logger zerolog.Logger, h *handlers.Handler, auth *middleware.AuthMiddleware) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(32 * 1024))

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// CORS - web and mobile clients call from anywhere
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/health", h.Health)

	// Chat websocket entry point; the token rides in the path and is
	// verified before a session is created.
	r.Get("/ws/{token}", h.ServeWS)

	// Room administration REST surface (require bearer token)
	r.Route("/api/v1/chat", func(r chi.Router) {
		r.Use(auth.RequireAuth)

		r.Post("/rooms", h.CreateRoom)
		r.Get("/rooms", h.ListRooms)
		r.Get("/rooms/{id}", h.GetRoom)
		r.Post("/rooms/{id}/join", h.JoinRoom)
		r.Post("/rooms/{id}/leave", h.LeaveRoom)
		r.Get("/rooms/{id}/messages", h.GetMessages)
		r.Post("/rooms/{id}/read", h.MarkRead)
		r.Get("/online-users", h.OnlineUsers)
		r.Post("/rooms/property/{propertyID}", h.CreatePropertyRoom)

		// Internal hook for the booking/CRUD layer
		r.Post("/notifications", h.Notify)
	})

	return r
}
