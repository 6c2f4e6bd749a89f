package auth

import (
	"context"
	"errors"
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"github.com/arunderam/dreambig-real-estate-platform-sub000/internal/store"
)

var (
	ErrInvalidToken = errors.New("auth: invalid token")
	ErrUnknownUser  = errors.New("auth: unknown user")
)

// Identity is the result of verifying a bearer credential.
type Identity struct {
	UserID int64
	Name   string
	Role   string
}

// Verifier validates an opaque bearer credential and resolves the user
// behind it.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// Claims defines the JWT claims issued by the platform's auth service.
type Claims struct {
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier verifies HMAC-signed platform tokens and enriches the
// identity from the user table.
type JWTVerifier struct {
	secret []byte
	users  store.DataStore
}

var _ Verifier = (*JWTVerifier)(nil)

// NewJWTVerifier creates a verifier for tokens signed with the given secret.
func NewJWTVerifier(secret string, users store.DataStore) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), users: users}
}

// Verify parses and validates the token, then loads the user record for
// display-name enrichment. The `sub` claim carries the user ID.
func (v *JWTVerifier) Verify(ctx context.Context, tokenString string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := v.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnknownUser
	}

	identity := &Identity{
		UserID: user.ID,
		Name:   user.Name,
		Role:   user.Role,
	}
	if identity.Name == "" {
		identity.Name = claims.Name
	}
	if identity.Role == "" {
		identity.Role = claims.Role
	}
	if identity.Role == "" {
		identity.Role = "user"
	}
	return identity, nil
}
