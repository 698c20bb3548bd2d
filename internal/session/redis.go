package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisOptions configures a RedisStore connection.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// Prefix is prepended to every key.
	Prefix string
	// TTL expires saves that are not written again; zero keeps them.
	TTL time.Duration
}

// RedisStore keeps JSON-encoded values under prefixed keys.
type RedisStore[T any] struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// DialRedis connects and pings the server.
func DialRedis[T any](ctx context.Context, opts RedisOptions) (*RedisStore[T], error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStore[T](rdb, opts.Prefix, opts.TTL), nil
}

// NewRedisStore wraps an existing client.
func NewRedisStore[T any](rdb *redis.Client, prefix string, ttl time.Duration) *RedisStore[T] {
	if prefix == "" {
		prefix = "taleforge:save:"
	}
	return &RedisStore[T]{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *RedisStore[T]) key(id string) string {
	return s.prefix + id
}

func (s *RedisStore[T]) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore[T]) Get(ctx context.Context, id string) (T, bool, error) {
	var zero T
	b, err := s.rdb.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("load save %s: %w", id, err)
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return zero, false, fmt.Errorf("decode save %s: %w", id, err)
	}
	return v, true, nil
}

func (s *RedisStore[T]) Put(ctx context.Context, id string, v T) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode save %s: %w", id, err)
	}
	if err := s.rdb.Set(ctx, s.key(id), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("write save %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore[T]) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("delete save %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore[T]) NewID() string {
	return uuid.NewString()
}
