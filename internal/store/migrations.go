package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// pgSchema creates the chat tables. Statements are idempotent so the
// migration can run on every boot.
var pgSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'user',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS chat_rooms (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		room_type TEXT NOT NULL DEFAULT 'general',
		reference_id BIGINT,
		created_by BIGINT REFERENCES users(id),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS chat_messages (
		id BIGSERIAL PRIMARY KEY,
		room_id TEXT REFERENCES chat_rooms(id),
		sender_id BIGINT REFERENCES users(id),
		content TEXT NOT NULL,
		message_type TEXT NOT NULL DEFAULT 'text',
		file_url TEXT NOT NULL DEFAULT '',
		is_edited BOOLEAN NOT NULL DEFAULT FALSE,
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		timestamp TIMESTAMPTZ NOT NULL DEFAULT now(),
		edited_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS chat_participants (
		id BIGSERIAL PRIMARY KEY,
		room_id TEXT REFERENCES chat_rooms(id),
		user_id BIGINT REFERENCES users(id),
		role TEXT NOT NULL DEFAULT 'participant',
		joined_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		last_read_at TIMESTAMPTZ,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		CONSTRAINT unique_room_participant UNIQUE (room_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_messages_room_ts ON chat_messages(room_id, timestamp DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_participants_user ON chat_participants(user_id)`,
}

// RunMigrations applies the chat schema to the PostgreSQL database.
func RunMigrations(databaseURL string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	for _, stmt := range pgSchema {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
