package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisSink struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisSink writes documents as plain string values under prefix+key.
// A zero ttl keeps them forever.
func NewRedisSink(client *redis.Client, prefix string, ttl time.Duration) *RedisSink {
	return &RedisSink{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisSink) key(key string) string {
	return s.prefix + key
}

func (s *RedisSink) Put(ctx context.Context, key string, blob []byte) error {
	if err := s.client.Set(ctx, s.key(key), blob, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis archive put %s: %w", key, err)
	}
	return nil
}

// Get is used by operators and tests to read an archived document back.
func (s *RedisSink) Get(ctx context.Context, key string) ([]byte, error) {
	blob, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		return nil, fmt.Errorf("redis archive get %s: %w", key, err)
	}
	return blob, nil
}
