package redis

import (
	"testing"

	"github.com/tmoreno/bulkbridge-backend/pkg/config"
)

func TestIdempotencyKeyNamespacing(t *testing.T) {
	c := &Client{}
	got := c.IdempotencyKey("accept_offer", "abc-123")
	want := "bb:idempotency:accept_offer:abc-123"
	if got != want {
		t.Fatalf("IdempotencyKey = %q, want %q", got, want)
	}
}

func TestOptionsFromConfigRequiresTarget(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error when neither URL nor address set")
	}
}

func TestOptionsFromConfigParsesURL(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6380/2", PoolSize: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6380" {
		t.Fatalf("addr = %q", opts.Addr)
	}
	if opts.DB != 2 {
		t.Fatalf("db = %d", opts.DB)
	}
	if opts.PoolSize != 7 {
		t.Fatalf("pool size = %d", opts.PoolSize)
	}
}
