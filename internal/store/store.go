package store

import (
	"context"

	"github.com/arunderam/dreambig-real-estate-platform-sub000/internal/models"
)

// DataStore defines the interface for persistent storage of chat rooms,
// participants and messages. Both PostgresStore and SQLiteStore implement
// this interface.
type DataStore interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// User operations
	GetUser(ctx context.Context, id int64) (*models.User, error)

	// Message operations
	CreateMessage(ctx context.Context, roomID string, senderID int64, content, messageType string) (*models.ChatMessage, error)
	// GetMessages returns up to limit messages for a room, most recent first.
	GetMessages(ctx context.Context, roomID string, limit, offset int) ([]models.ChatMessage, error)

	// Room operations
	CreateRoom(ctx context.Context, room *models.ChatRoom) (*models.ChatRoom, error)
	GetRoom(ctx context.Context, id string) (*models.ChatRoom, error)
	ListUserRooms(ctx context.Context, userID int64) ([]models.ChatRoom, error)

	// Participant operations
	AddParticipant(ctx context.Context, roomID string, userID int64, role string) (*models.Participant, error)
	RemoveParticipant(ctx context.Context, roomID string, userID int64) error
	ListParticipants(ctx context.Context, roomID string) ([]models.Participant, error)
	UpdateLastRead(ctx context.Context, roomID string, userID int64) (*models.Participant, error)
}
