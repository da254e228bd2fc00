package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the cache port every component reads and writes through.
// The cache is acceleration, never a source of truth: a miss can happen at
// any time and callers must be able to recompute. Implementations absorb
// backend failures, so an unreachable store reads as a miss and writes as
// a no-op.
type Store interface {
	// Get returns the raw cached value and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores value under key for ttl. A non-positive ttl stores nothing.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	// Delete removes the given keys.
	Delete(ctx context.Context, keys ...string)
}

// RedisStore implements Store over a Redis connection.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed store and verifies the connection.
func NewRedisStore(addr string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// NewRedisStoreFromClient wraps an existing client, mainly for tests.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("cache get failed, treating as miss", "key", key, "error", err)
		return nil, false
	}
	return val, true
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		slog.Warn("cache set failed, skipping", "key", key, "error", err)
	}
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		slog.Warn("cache delete failed", "keys", keys, "error", err)
	}
}

// Close closes the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// GetJSON reads key and unmarshals it into v. A parse failure is treated as
// a miss so producers fall through to recomputation.
func GetJSON(ctx context.Context, s Store, key string, v any) bool {
	raw, ok := s.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		slog.Warn("cache entry unparseable, treating as miss", "key", key, "error", err)
		return false
	}
	return true
}

// SetJSON marshals v and stores it under key. Marshal failures are logged
// and dropped; caching is never allowed to fail a request.
func SetJSON(ctx context.Context, s Store, key string, v any, ttl time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		slog.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	s.Set(ctx, key, raw, ttl)
}
