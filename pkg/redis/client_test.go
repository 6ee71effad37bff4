package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/eyira/storefront/pkg/config"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := New(context.Background(), config.RedisConfig{Address: mr.Addr()}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestSetNXAndExists(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)
	key := client.IdempotencyKey("fulfillment", "cs_test_1")

	exists, err := client.Exists(ctx, key)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Fatalf("expected key to be absent")
	}

	set, err := client.SetNX(ctx, key, "1", time.Hour)
	if err != nil || !set {
		t.Fatalf("expected first SetNX to succeed, set=%v err=%v", set, err)
	}
	set, err = client.SetNX(ctx, key, "1", time.Hour)
	if err != nil || set {
		t.Fatalf("expected second SetNX to be rejected, set=%v err=%v", set, err)
	}
	if ttl := mr.TTL(key); ttl != time.Hour {
		t.Fatalf("expected ttl 1h, got %v", ttl)
	}

	exists, err = client.Exists(ctx, key)
	if err != nil || !exists {
		t.Fatalf("expected key to be present, exists=%v err=%v", exists, err)
	}
}

func TestIdempotencyKeyNamespacing(t *testing.T) {
	c := &Client{}
	if got := c.IdempotencyKey("fulfillment", "cs_1"); got != "eyira:idempotency:fulfillment:cs_1" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := c.IdempotencyKey("", "cs_1"); got != "eyira:idempotency:cs_1" {
		t.Fatalf("empty scope should be skipped, got %q", got)
	}
}

func TestOptionsFromConfigRequiresTarget(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error without url or address")
	}
	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379/2", PoolSize: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.DB != 2 || opts.PoolSize != 7 {
		t.Fatalf("unexpected options db=%d pool=%d", opts.DB, opts.PoolSize)
	}
}

func TestUninitializedClientErrors(t *testing.T) {
	c := &Client{}
	if err := c.Ping(context.Background()); err == nil {
		t.Fatal("expected ping error on empty client")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close on empty client should be nil, got %v", err)
	}
}
