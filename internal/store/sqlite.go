package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/arunderam/dreambig-real-estate-platform-sub000/internal/metrics"
	"github.com/arunderam/dreambig-real-estate-platform-sub000/internal/models"
)

// SQLiteStore handles SQLite database operations. It is the development
// fallback when no DATABASE_URL is configured.
type SQLiteStore struct {
	db *sql.DB
}

var _ DataStore = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite store.
// If dbPath is empty, defaults to "./data/chat.db"
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/chat.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}

	// Initialize schema
	if err := store.initSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'user',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS chat_rooms (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		room_type TEXT NOT NULL DEFAULT 'general',
		reference_id INTEGER,
		created_by INTEGER REFERENCES users(id),
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS chat_messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		room_id TEXT REFERENCES chat_rooms(id),
		sender_id INTEGER REFERENCES users(id),
		content TEXT NOT NULL,
		message_type TEXT NOT NULL DEFAULT 'text',
		file_url TEXT NOT NULL DEFAULT '',
		is_edited INTEGER NOT NULL DEFAULT 0,
		is_deleted INTEGER NOT NULL DEFAULT 0,
		timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		edited_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS chat_participants (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		room_id TEXT REFERENCES chat_rooms(id),
		user_id INTEGER REFERENCES users(id),
		role TEXT NOT NULL DEFAULT 'participant',
		joined_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		last_read_at DATETIME,
		is_active INTEGER NOT NULL DEFAULT 1,
		UNIQUE (room_id, user_id)
	);

	CREATE INDEX IF NOT EXISTS idx_chat_messages_room_ts ON chat_messages(room_id, timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_chat_participants_user ON chat_participants(user_id);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetUser retrieves a user by ID.
func (s *SQLiteStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, role, created_at
		FROM users WHERE id = ?
	`, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// CreateMessage persists a chat message and returns the created record.
func (s *SQLiteStore) CreateMessage(ctx context.Context, roomID string, senderID int64, content, messageType string) (*models.ChatMessage, error) {
	start := time.Now()
	defer func() { metrics.StoreLatency.Observe(time.Since(start).Seconds()) }()

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_messages (room_id, sender_id, content, message_type, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`, roomID, senderID, content, messageType, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	metrics.MessagesPersisted.WithLabelValues(messageType).Inc()

	return &models.ChatMessage{
		ID:          id,
		RoomID:      roomID,
		SenderID:    senderID,
		Content:     content,
		MessageType: messageType,
		Timestamp:   now,
	}, nil
}

// GetMessages retrieves messages for a room, most recent first.
func (s *SQLiteStore) GetMessages(ctx context.Context, roomID string, limit, offset int) ([]models.ChatMessage, error) {
	start := time.Now()
	defer func() { metrics.StoreLatency.Observe(time.Since(start).Seconds()) }()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, room_id, sender_id, content, message_type, file_url, is_edited, timestamp, edited_at
		FROM chat_messages
		WHERE room_id = ? AND is_deleted = 0
		ORDER BY timestamp DESC, id DESC
		LIMIT ? OFFSET ?
	`, roomID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var msg models.ChatMessage
		err := rows.Scan(
			&msg.ID,
			&msg.RoomID,
			&msg.SenderID,
			&msg.Content,
			&msg.MessageType,
			&msg.FileURL,
			&msg.IsEdited,
			&msg.Timestamp,
			&msg.EditedAt,
		)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// CreateRoom creates a new chat room.
func (s *SQLiteStore) CreateRoom(ctx context.Context, room *models.ChatRoom) (*models.ChatRoom, error) {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_rooms (id, name, description, room_type, reference_id, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, room.ID, room.Name, room.Description, room.RoomType, room.ReferenceID, room.CreatedBy, now)
	if err != nil {
		return nil, err
	}
	return s.GetRoom(ctx, room.ID)
}

// GetRoom retrieves a room by ID.
func (s *SQLiteStore) GetRoom(ctx context.Context, id string) (*models.ChatRoom, error) {
	room := &models.ChatRoom{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, room_type, reference_id, created_by, is_active, created_at, updated_at
		FROM chat_rooms WHERE id = ?
	`, id).Scan(
		&room.ID,
		&room.Name,
		&room.Description,
		&room.RoomType,
		&room.ReferenceID,
		&room.CreatedBy,
		&room.IsActive,
		&room.CreatedAt,
		&room.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return room, nil
}

// ListUserRooms retrieves all rooms the user actively participates in.
func (s *SQLiteStore) ListUserRooms(ctx context.Context, userID int64) ([]models.ChatRoom, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.name, r.description, r.room_type, r.reference_id, r.created_by, r.is_active, r.created_at, r.updated_at
		FROM chat_rooms r
		JOIN chat_participants p ON p.room_id = r.id
		WHERE p.user_id = ? AND p.is_active = 1
		ORDER BY r.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []models.ChatRoom
	for rows.Next() {
		var room models.ChatRoom
		err := rows.Scan(
			&room.ID,
			&room.Name,
			&room.Description,
			&room.RoomType,
			&room.ReferenceID,
			&room.CreatedBy,
			&room.IsActive,
			&room.CreatedAt,
			&room.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

// AddParticipant adds a user to a room, reactivating a prior membership
// if one exists.
func (s *SQLiteStore) AddParticipant(ctx context.Context, roomID string, userID int64, role string) (*models.Participant, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_participants (room_id, user_id, role)
		VALUES (?, ?, ?)
		ON CONFLICT (room_id, user_id)
		DO UPDATE SET is_active = 1, role = excluded.role
	`, roomID, userID, role)
	if err != nil {
		return nil, err
	}
	return s.getParticipant(ctx, roomID, userID)
}

// RemoveParticipant deactivates a user's membership in a room.
func (s *SQLiteStore) RemoveParticipant(ctx context.Context, roomID string, userID int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE chat_participants SET is_active = 0
		WHERE room_id = ? AND user_id = ?
	`, roomID, userID)
	return err
}

// ListParticipants retrieves active participants in a room.
func (s *SQLiteStore) ListParticipants(ctx context.Context, roomID string) ([]models.Participant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, room_id, user_id, role, joined_at, last_read_at, is_active
		FROM chat_participants
		WHERE room_id = ? AND is_active = 1
	`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		var p models.Participant
		err := rows.Scan(
			&p.ID,
			&p.RoomID,
			&p.UserID,
			&p.Role,
			&p.JoinedAt,
			&p.LastReadAt,
			&p.IsActive,
		)
		if err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

// UpdateLastRead stamps the user's last read time for a room.
func (s *SQLiteStore) UpdateLastRead(ctx context.Context, roomID string, userID int64) (*models.Participant, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE chat_participants SET last_read_at = CURRENT_TIMESTAMP
		WHERE room_id = ? AND user_id = ?
	`, roomID, userID)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	return s.getParticipant(ctx, roomID, userID)
}

func (s *SQLiteStore) getParticipant(ctx context.Context, roomID string, userID int64) (*models.Participant, error) {
	p := &models.Participant{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, room_id, user_id, role, joined_at, last_read_at, is_active
		FROM chat_participants
		WHERE room_id = ? AND user_id = ?
	`, roomID, userID).Scan(
		&p.ID,
		&p.RoomID,
		&p.UserID,
		&p.Role,
		&p.JoinedAt,
		&p.LastReadAt,
		&p.IsActive,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}
