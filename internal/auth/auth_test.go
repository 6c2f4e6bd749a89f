package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/arunderam/dreambig-real-estate-platform-sub000/internal/models"
)

const testSecret = "test-secret"

// userTable is a DataStore stub backed by a map; only GetUser matters here.
type userTable map[int64]*models.User

func (u userTable) Close() {}

func (u userTable) Ping(context.Context) error { return nil }

func (u userTable) GetUser(_ context.Context, id int64) (*models.User, error) {
	return u[id], nil
}
func (u userTable) CreateMessage(context.Context, string, int64, string, string) (*models.ChatMessage, error) {
	return nil, nil
}
func (u userTable) GetMessages(context.Context, string, int, int) ([]models.ChatMessage, error) {
	return nil, nil
}
func (u userTable) CreateRoom(context.Context, *models.ChatRoom) (*models.ChatRoom, error) {
	return nil, nil
}
func (u userTable) GetRoom(context.Context, string) (*models.ChatRoom, error) { return nil, nil }
func (u userTable) ListUserRooms(context.Context, int64) ([]models.ChatRoom, error) {
	return nil, nil
}
func (u userTable) AddParticipant(context.Context, string, int64, string) (*models.Participant, error) {
	return nil, nil
}
func (u userTable) RemoveParticipant(context.Context, string, int64) error { return nil }
func (u userTable) ListParticipants(context.Context, string) ([]models.Participant, error) {
	return nil, nil
}
func (u userTable) UpdateLastRead(context.Context, string, int64) (*models.Participant, error) {
	return nil, nil
}

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func validClaims(subject string) Claims {
	return Claims{
		Name: "Alice Token",
		Role: "buyer",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestVerifyValidToken(t *testing.T) {
	users := userTable{1: {ID: 1, Name: "Alice", Role: "agent"}}
	v := NewJWTVerifier(testSecret, users)

	identity, err := v.Verify(context.Background(), signToken(t, testSecret, validClaims("1")))
	if err != nil {
		t.Fatal(err)
	}
	if identity.UserID != 1 {
		t.Fatalf("expected user 1, got %d", identity.UserID)
	}
	// The store record wins over the token claims.
	if identity.Name != "Alice" {
		t.Fatalf("expected store name, got %q", identity.Name)
	}
	if identity.Role != "agent" {
		t.Fatalf("expected store role, got %q", identity.Role)
	}
}

func TestVerifyFallsBackToClaims(t *testing.T) {
	users := userTable{1: {ID: 1}}
	v := NewJWTVerifier(testSecret, users)

	identity, err := v.Verify(context.Background(), signToken(t, testSecret, validClaims("1")))
	if err != nil {
		t.Fatal(err)
	}
	if identity.Name != "Alice Token" {
		t.Fatalf("expected claim name, got %q", identity.Name)
	}
	if identity.Role != "buyer" {
		t.Fatalf("expected claim role, got %q", identity.Role)
	}
}

func TestVerifyDefaultRole(t *testing.T) {
	users := userTable{1: {ID: 1, Name: "Alice"}}
	v := NewJWTVerifier(testSecret, users)

	claims := validClaims("1")
	claims.Role = ""
	identity, err := v.Verify(context.Background(), signToken(t, testSecret, claims))
	if err != nil {
		t.Fatal(err)
	}
	if identity.Role != "user" {
		t.Fatalf("expected default role user, got %q", identity.Role)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	v := NewJWTVerifier(testSecret, userTable{1: {ID: 1}})

	_, err := v.Verify(context.Background(), signToken(t, "other-secret", validClaims("1")))
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	v := NewJWTVerifier(testSecret, userTable{1: {ID: 1}})

	claims := validClaims("1")
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	_, err := v.Verify(context.Background(), signToken(t, testSecret, claims))
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyGarbageToken(t *testing.T) {
	v := NewJWTVerifier(testSecret, userTable{})
	_, err := v.Verify(context.Background(), "not.a.token")
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyNonNumericSubject(t *testing.T) {
	v := NewJWTVerifier(testSecret, userTable{})
	_, err := v.Verify(context.Background(), signToken(t, testSecret, validClaims("alice")))
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyMissingSubject(t *testing.T) {
	v := NewJWTVerifier(testSecret, userTable{})
	_, err := v.Verify(context.Background(), signToken(t, testSecret, validClaims("")))
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyUnknownUser(t *testing.T) {
	v := NewJWTVerifier(testSecret, userTable{})
	_, err := v.Verify(context.Background(), signToken(t, testSecret, validClaims("42")))
	if !errors.Is(err, ErrUnknownUser) {
		t.Fatalf("expected ErrUnknownUser, got %v", err)
	}
}
