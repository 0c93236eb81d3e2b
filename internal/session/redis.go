package session

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	fieldToken    = "access_token"
	fieldUsername = "username"
	fieldAvatar   = "avatar_url"
)

// RedisStore persists the session in a Redis hash so it survives across CLI
// invocations, the way the browser client kept it in local storage.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a store writing under the given key. An empty key
// defaults to "auctionhouse:session".
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = "auctionhouse:session"
	}
	return &RedisStore{client: client, key: key}
}

func (r *RedisStore) Load(ctx context.Context) (Session, error) {
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return Session{}, fmt.Errorf("failed to load session: %w", err)
	}
	return Session{
		AccessToken: fields[fieldToken],
		Username:    fields[fieldUsername],
		AvatarURL:   fields[fieldAvatar],
	}, nil
}

func (r *RedisStore) Save(ctx context.Context, s Session) error {
	err := r.client.HSet(ctx, r.key,
		fieldToken, s.AccessToken,
		fieldUsername, s.Username,
		fieldAvatar, s.AvatarURL,
	).Err()
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
