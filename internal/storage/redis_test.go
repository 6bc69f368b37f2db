package storage

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/anurag9179/smartcashbook.client/internal/config"
)

// newTestRedisStore skips when no redis is reachable, so the suite passes on
// machines without one. Each test gets its own key and cleans it up.
func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "127.0.0.1:6379"
	}

	probe := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := probe.Ping(ctx).Err()
	_ = probe.Close()
	if err != nil {
		t.Skipf("redis not reachable at %s: %v", addr, err)
	}

	key := fmt.Sprintf("smartcashbook:test:token:%s:%d", t.Name(), os.Getpid())
	rs := NewRedisStore(config.RedisConfig{Addr: addr}, key, zap.NewNop())
	t.Cleanup(func() {
		_ = rs.Clear(context.Background())
		_ = rs.Close()
	})
	return rs
}

func TestRedisStore_MissingKey(t *testing.T) {
	rs := newTestRedisStore(t)

	tok, err := rs.Load(context.Background())
	if err != nil {
		t.Fatalf("Load on missing key: %v", err)
	}
	if tok != "" {
		t.Errorf("Load = %q, want empty for missing key", tok)
	}
}

func TestRedisStore_Roundtrip(t *testing.T) {
	rs := newTestRedisStore(t)
	ctx := context.Background()

	if err := rs.Save(ctx, "header.payload.sig"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	tok, err := rs.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tok != "header.payload.sig" {
		t.Errorf("Load = %q, want stored token", tok)
	}
}

func TestRedisStore_ClearIdempotent(t *testing.T) {
	rs := newTestRedisStore(t)
	ctx := context.Background()

	if err := rs.Save(ctx, "header.payload.sig"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := rs.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	// Clearing an already-missing key is not an error.
	if err := rs.Clear(ctx); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
	tok, err := rs.Load(ctx)
	if err != nil {
		t.Fatalf("Load after Clear: %v", err)
	}
	if tok != "" {
		t.Errorf("Load after Clear = %q, want empty", tok)
	}
}
