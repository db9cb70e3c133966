package admission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists admission state in Redis so quota survives restarts and
// is shared across replicas. Keys self-expire a day after last write.
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

func (s *RedisStore) Get(ctx context.Context, identifier string) (*State, error) {
	b, err := s.client.Get(ctx, s.key(identifier)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var st State
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *RedisStore) Set(ctx context.Context, identifier string, st *State) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(identifier), b, 25*time.Hour).Err()
}

func (s *RedisStore) Delete(ctx context.Context, identifier string) error {
	return s.client.Unlink(ctx, s.key(identifier)).Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(identifier string) string {
	return s.prefix + ":admission:" + identifier
}
