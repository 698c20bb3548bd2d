package session

import (
	"context"
	"os"
	"testing"
	"time"
)

// Redis tests need a running server; set TALEFORGE_TEST_REDIS_ADDR to run them.
func dialTestRedis(t *testing.T) *RedisStore[testSave] {
	t.Helper()
	addr := os.Getenv("TALEFORGE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TALEFORGE_TEST_REDIS_ADDR not set")
	}
	store, err := DialRedis[testSave](context.Background(), RedisOptions{
		Addr:   addr,
		Prefix: "taleforge:test:" + t.Name() + ":",
		TTL:    time.Minute,
	})
	if err != nil {
		t.Fatalf("Unexpected error dialing redis: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRedisStore(t *testing.T) {
	exerciseStore(t, dialTestRedis(t))
}

func TestRedisStoreAppliesTTL(t *testing.T) {
	store := dialTestRedis(t)
	ctx := context.Background()
	if err := store.Put(ctx, "ada", testSave{Name: "Ada"}); err != nil {
		t.Fatalf("Unexpected error on Put: %v", err)
	}
	ttl, err := store.rdb.TTL(ctx, store.key("ada")).Result()
	if err != nil {
		t.Fatalf("Unexpected error reading TTL: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("Expected a TTL within a minute, got %v", ttl)
	}
}

func TestNewRedisStoreDefaultPrefix(t *testing.T) {
	s := NewRedisStore[testSave](nil, "", 0)
	if got := s.key("x"); got != "taleforge:save:x" {
		t.Errorf("Expected default prefix, got %q", got)
	}
}
