package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on Redis. TTL enforcement is delegated to the
// server; capacity pressure is handled by the instance eviction policy.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed store and verifies connectivity.
func NewRedisStore(addr, password string, db int, prefix string) (*RedisStore, error) {
	if prefix == "" {
		prefix = "insighthub"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStore{client: client, prefix: prefix}, nil
}

func (s *RedisStore) Get(ctx context.Context, fingerprint string) (*Entry, error) {
	b, err := s.client.Get(ctx, s.key(fingerprint)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, err
	}
	if e.Expired(time.Now()) {
		_ = s.Delete(ctx, fingerprint)
		return nil, ErrCacheMiss
	}
	return &e, nil
}

func (s *RedisStore) Set(ctx context.Context, fingerprint string, e *Entry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(fingerprint), b, e.TTL).Err()
}

func (s *RedisStore) Delete(ctx context.Context, fingerprint string) error {
	return s.client.Unlink(ctx, s.key(fingerprint)).Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(fingerprint string) string {
	return s.prefix + ":insight:" + fingerprint
}
