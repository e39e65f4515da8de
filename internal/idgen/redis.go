package idgen

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisSequence hands out decimal ids from a Redis counter. Values are
// never reused, even after the record holding one is deleted, and the
// sequence survives process restarts.
type RedisSequence struct {
	client redis.Cmdable
	key    string
}

// NewRedisSequence returns an allocator incrementing key on client.
func NewRedisSequence(client redis.Cmdable, key string) *RedisSequence {
	return &RedisSequence{client: client, key: key}
}

// Key builds the counter key for one collection of a service,
// e.g. "grubdash:ids:orders".
func Key(serviceName, collection string) string {
	return fmt.Sprintf("%s:ids:%s", serviceName, collection)
}

// NewRedisClient connects to addr and checks the connection with a PING.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("idgen: ping redis at %s: %w", addr, err)
	}
	return client, nil
}

// NextID skips counter values already used by seeded records.
func (s *RedisSequence) NextID(ctx context.Context, taken func(id string) bool) (string, error) {
	for range maxAttempts {
		n, err := s.client.Incr(ctx, s.key).Result()
		if err != nil {
			return "", fmt.Errorf("idgen: incr %s: %w", s.key, err)
		}
		id := strconv.FormatInt(n, 10)
		if !taken(id) {
			return id, nil
		}
	}
	return "", ErrExhausted
}
