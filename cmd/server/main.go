package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/arunderam/dreambig-real-estate-platform-sub000/internal/api"
	"github.com/arunderam/dreambig-real-estate-platform-sub000/internal/api/middleware"
	"github.com/arunderam/dreambig-real-estate-platform-sub000/internal/auth"
	"github.com/arunderam/dreambig-real-estate-platform-sub000/internal/chat"
	"github.com/arunderam/dreambig-real-estate-platform-sub000/internal/config"
	"github.com/arunderam/dreambig-real-estate-platform-sub000/internal/handlers"
	"github.com/arunderam/dreambig-real-estate-platform-sub000/internal/notify"
	"github.com/arunderam/dreambig-real-estate-platform-sub000/internal/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx := context.Background()

	// Initialize the message store: PostgreSQL when configured, SQLite
	// for development.
	var db store.DataStore
	if cfg.DatabaseURL != "" {
		logger.Info().Msg("running database migrations...")
		if err := store.RunMigrations(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
		logger.Info().Msg("migrations completed")

		pgStore, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		db = pgStore
		logger.Info().Msg("connected to PostgreSQL")
	} else {
		sqliteStore, err := store.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("sqlite open failed")
		}
		db = sqliteStore
		logger.Info().Str("path", cfg.SQLitePath).Msg("using SQLite store")
	}
	defer db.Close()

	// Optional Redis presence mirror
	var presence chat.PresenceSink
	if cfg.RedisURL != "" {
		redisStore, err := store.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisStore.Close()
		presence = &redisPresence{redis: redisStore}
		logger.Info().Msg("connected to Redis")
	}

	// Core chat subsystem
	mgr := chat.NewManager(logger, presence)
	dispatcher := chat.NewDispatcher(mgr, db, logger, cfg.HistoryLimitMax)

	verifier := auth.NewJWTVerifier(cfg.JWTSecret, db)
	notifier := notify.NewService(mgr, logger)

	h := handlers.NewHandler(db, mgr, dispatcher, verifier, notifier, logger, cfg.MaxMessageBytes)
	authMW := middleware.NewAuthMiddleware(verifier)
	router := api.NewRouter(logger, h, authMW)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  0, // websocket connections stay open
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting chat server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	// Close live chat connections, then drain HTTP with a 30 second timeout
	mgr.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}

// redisPresence adapts the Redis store to the manager's presence sink.
type redisPresence struct {
	redis *store.RedisStore
}

func (p *redisPresence) MarkOnline(ctx context.Context, info chat.SessionInfo) error {
	connectedAt, _ := time.Parse(time.RFC3339, info.ConnectedAt)
	return p.redis.MarkOnline(ctx, store.PresenceRecord{
		UserID:      info.UserID,
		Name:        info.Name,
		Role:        info.Role,
		ConnectedAt: connectedAt,
	})
}

func (p *redisPresence) MarkOffline(ctx context.Context, userID int64) error {
	return p.redis.MarkOffline(ctx, userID)
}
