package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Storage is a namespaced key-value wrapper over a Redis client.
type Storage struct {
	db     redis.UniversalClient
	prefix string
}

// NewStorage creates a storage whose keys are prefixed with prefix.
func NewStorage(client redis.UniversalClient, prefix string) *Storage {
	return &Storage{db: client, prefix: prefix}
}

// Get returns nil for missing keys.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.db.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

// Set stores val. A zero ttl means no expiration.
func (s *Storage) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return s.db.Set(ctx, s.prefix+key, val, ttl).Err()
}

// Delete removes key; missing keys are not an error.
func (s *Storage) Delete(ctx context.Context, key string) error {
	return s.db.Del(ctx, s.prefix+key).Err()
}

// Exists reports whether key is present.
func (s *Storage) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.db.Exists(ctx, s.prefix+key).Result()
	return n > 0, err
}

// Conn returns the underlying client.
func (s *Storage) Conn() redis.UniversalClient {
	return s.db
}
