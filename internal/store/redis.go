package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const presenceTTL = 2 * time.Minute

// PresenceRecord is the session summary mirrored into Redis so the rest
// of the platform can read online status without touching the connection
// manager.
type PresenceRecord struct {
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	ConnectedAt time.Time `json:"connected_at"`
}

// RedisStore mirrors chat presence into Redis. All writes are best-effort;
// the in-memory session registry stays the source of truth.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis store.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// presenceKey returns the key for one user's presence record.
func presenceKey(userID int64) string {
	return fmt.Sprintf("chat:presence:%d", userID)
}

const presenceSetKey = "chat:online"

// MarkOnline records a user's presence with a TTL.
func (s *RedisStore) MarkOnline(ctx context.Context, rec PresenceRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, presenceKey(rec.UserID), data, presenceTTL)
	pipe.SAdd(ctx, presenceSetKey, rec.UserID)
	_, err = pipe.Exec(ctx)
	return err
}

// MarkOffline removes a user's presence record.
func (s *RedisStore) MarkOffline(ctx context.Context, userID int64) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, presenceKey(userID))
	pipe.SRem(ctx, presenceSetKey, userID)
	_, err := pipe.Exec(ctx)
	return err
}

// OnlineUserIDs returns the user IDs currently marked online. Stale set
// members whose record expired are dropped from the result.
func (s *RedisStore) OnlineUserIDs(ctx context.Context) ([]int64, error) {
	members, err := s.client.SMembers(ctx, presenceSetKey).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		exists, err := s.client.Exists(ctx, presenceKey(id)).Result()
		if err != nil || exists == 0 {
			s.client.SRem(ctx, presenceSetKey, m)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
