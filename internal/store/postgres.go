package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arunderam/dreambig-real-estate-platform-sub000/internal/metrics"
	"github.com/arunderam/dreambig-real-estate-platform-sub000/internal/models"
)

// PostgresStore handles PostgreSQL database operations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ DataStore = (*PostgresStore)(nil)

// NewPostgresStore creates a new PostgreSQL store with a connection pool.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// GetUser retrieves a user by ID.
func (s *PostgresStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, email, role, created_at
		FROM users WHERE id = $1
	`, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// CreateMessage persists a chat message and returns the created record.
func (s *PostgresStore) CreateMessage(ctx context.Context, roomID string, senderID int64, content, messageType string) (*models.ChatMessage, error) {
	start := time.Now()
	defer func() { metrics.StoreLatency.Observe(time.Since(start).Seconds()) }()

	msg := &models.ChatMessage{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO chat_messages (room_id, sender_id, content, message_type)
		VALUES ($1, $2, $3, $4)
		RETURNING id, room_id, sender_id, content, message_type, file_url, is_edited, timestamp, edited_at
	`, roomID, senderID, content, messageType).Scan(
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
	metrics.MessagesPersisted.WithLabelValues(messageType).Inc()
	return msg, nil
}

// GetMessages retrieves messages for a room, most recent first.
func (s *PostgresStore) GetMessages(ctx context.Context, roomID string, limit, offset int) ([]models.ChatMessage, error) {
	start := time.Now()
	defer func() { metrics.StoreLatency.Observe(time.Since(start).Seconds()) }()

	rows, err := s.pool.Query(ctx, `
		SELECT id, room_id, sender_id, content, message_type, file_url, is_edited, timestamp, edited_at
		FROM chat_messages
		WHERE room_id = $1 AND is_deleted = FALSE
		ORDER BY timestamp DESC
		LIMIT $2 OFFSET $3
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
func (s *PostgresStore) CreateRoom(ctx context.Context, room *models.ChatRoom) (*models.ChatRoom, error) {
	created := &models.ChatRoom{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO chat_rooms (id, name, description, room_type, reference_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, description, room_type, reference_id, created_by, is_active, created_at, updated_at
	`, room.ID, room.Name, room.Description, room.RoomType, room.ReferenceID, room.CreatedBy).Scan(
		&created.ID,
		&created.Name,
		&created.Description,
		&created.RoomType,
		&created.ReferenceID,
		&created.CreatedBy,
		&created.IsActive,
		&created.CreatedAt,
		&created.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetRoom retrieves a room by ID.
func (s *PostgresStore) GetRoom(ctx context.Context, id string) (*models.ChatRoom, error) {
	room := &models.ChatRoom{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, description, room_type, reference_id, created_by, is_active, created_at, updated_at
		FROM chat_rooms WHERE id = $1
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
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return room, nil
}

// ListUserRooms retrieves all rooms the user actively participates in.
func (s *PostgresStore) ListUserRooms(ctx context.Context, userID int64) ([]models.ChatRoom, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT r.id, r.name, r.description, r.room_type, r.reference_id, r.created_by, r.is_active, r.created_at, r.updated_at
		FROM chat_rooms r
		JOIN chat_participants p ON p.room_id = r.id
		WHERE p.user_id = $1 AND p.is_active = TRUE
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
func (s *PostgresStore) AddParticipant(ctx context.Context, roomID string, userID int64, role string) (*models.Participant, error) {
	p := &models.Participant{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO chat_participants (room_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT ON CONSTRAINT unique_room_participant
		DO UPDATE SET is_active = TRUE, role = EXCLUDED.role
		RETURNING id, room_id, user_id, role, joined_at, last_read_at, is_active
	`, roomID, userID, role).Scan(
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
	return p, nil
}

// RemoveParticipant deactivates a user's membership in a room.
func (s *PostgresStore) RemoveParticipant(ctx context.Context, roomID string, userID int64) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE chat_participants SET is_active = FALSE
		WHERE room_id = $1 AND user_id = $2
	`, roomID, userID)
	return err
}

// ListParticipants retrieves active participants in a room.
func (s *PostgresStore) ListParticipants(ctx context.Context, roomID string) ([]models.Participant, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, room_id, user_id, role, joined_at, last_read_at, is_active
		FROM chat_participants
		WHERE room_id = $1 AND is_active = TRUE
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
func (s *PostgresStore) UpdateLastRead(ctx context.Context, roomID string, userID int64) (*models.Participant, error) {
	p := &models.Participant{}
	err := s.pool.QueryRow(ctx, `
		UPDATE chat_participants SET last_read_at = now()
		WHERE room_id = $1 AND user_id = $2
		RETURNING id, room_id, user_id, role, joined_at, last_read_at, is_active
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
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}
