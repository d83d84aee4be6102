package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	fieldToken     = "token"
	fieldProfile   = "profile"
	fieldCreatedAt = "created_at"
)

// RedisStore keeps each session as a hash with token and profile fields.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Save implements Store.
func (s *RedisStore) Save(ctx context.Context, key string, rec Record, ttl time.Duration) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			fieldToken, rec.Token,
			fieldProfile, string(rec.Profile),
			fieldCreatedAt, rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		)
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save session: %w", err)
	}
	return nil
}

// Load implements Store.
func (s *RedisStore) Load(ctx context.Context, key string) (Record, error) {
	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return Record{}, fmt.Errorf("redis load session: %w", err)
	}
	if len(fields) == 0 {
		return Record{}, ErrNotFound
	}

	rec := Record{Token: fields[fieldToken]}
	if p := fields[fieldProfile]; p != "" {
		rec.Profile = json.RawMessage(p)
	}
	if ts, err := time.Parse(time.RFC3339Nano, fields[fieldCreatedAt]); err == nil {
		rec.CreatedAt = ts
	}
	return rec, nil
}

// setProfileScript writes the profile only into a live hash, so a record that
// expired between lookup and write is never recreated without a TTL.
var setProfileScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return 0
end
redis.call("HSET", KEYS[1], ARGV[1], ARGV[2])
return 1
`)

// SetProfile implements Store.
func (s *RedisStore) SetProfile(ctx context.Context, key string, profile json.RawMessage) error {
	updated, err := setProfileScript.Run(ctx, s.client, []string{key}, fieldProfile, string(profile)).Int()
	if err != nil {
		return fmt.Errorf("redis set profile: %w", err)
	}
	if updated == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Del(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis delete session: %w", err)
	}
	return n > 0, nil
}
