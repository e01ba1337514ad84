package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"taxi-booking/internal/config"
	"taxi-booking/internal/logger"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/go-redis/redis/v8"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis, context.Context) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	log := logger.New(&config.LoggerConfig{Level: "error", Format: "json"})
	return &Client{client: rdb, log: log}, mr, context.Background()
}

func TestConnectSuccess(t *testing.T) {
	mr := miniredis.RunT(t)
	log := logger.New(&config.LoggerConfig{Level: "error", Format: "json"})
	cfg := &config.RedisConfig{Host: "127.0.0.1", Port: mr.Port(), DB: 0}

	client, err := Connect(cfg, log)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func TestConnectFailure(t *testing.T) {
	log := logger.New(&config.LoggerConfig{Level: "error", Format: "json"})
	cfg := &config.RedisConfig{Host: "127.0.0.1", Port: "0", DB: 0}
	if _, err := Connect(cfg, log); err == nil {
		t.Fatalf("expected connect error")
	}
}

func TestCloseNil(t *testing.T) {
	var client *Client
	if err := client.Close(); err != nil {
		t.Fatalf("expected nil error on nil client close, got %v", err)
	}
}

func TestCacheKey(t *testing.T) {
	cases := map[string]string{
		CacheKey(KeyPrefixAirport, "12"):           "airport:12",
		CacheKey(KeyPrefixCar, "select", "4", "2"): "car:select:4:2",
		CacheKey(KeyPrefixSettings):                "settings",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("expected %s, got %s", want, got)
		}
	}
}

func TestSetGet(t *testing.T) {
	client, mr, ctx := newTestClient(t)

	type airport struct {
		Name string  `json:"name"`
		Toll float64 `json:"toll"`
	}

	val := airport{Name: "JFK", Toll: 12.5}
	if err := client.Set(ctx, "airport:1", val, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	var got airport
	if err := client.Get(ctx, "airport:1", &got); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != val {
		t.Fatalf("unexpected value: %+v", got)
	}

	mr.FastForward(2 * time.Minute)
	if err := client.Get(ctx, "airport:1", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after ttl, got %v", err)
	}
}

func TestGetMissingKey(t *testing.T) {
	client, _, ctx := newTestClient(t)
	var dest struct{}
	err := client.Get(ctx, "absent", &dest)
	if !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestGetCorruptedValue(t *testing.T) {
	client, mr, ctx := newTestClient(t)
	_ = mr.Set("broken", "{not json")
	var dest map[string]string
	err := client.Get(ctx, "broken", &dest)
	if err == nil || errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected unmarshal error, got %v", err)
	}
}

func TestInvalidateEntity(t *testing.T) {
	client, mr, ctx := newTestClient(t)

	_ = mr.Set("settings:common", "a")
	_ = mr.Set("settings:other", "b")
	_ = mr.Set("settings_backup", "keep")
	_ = mr.Set("airport:3", "c")

	if err := client.InvalidateEntity(ctx, KeyPrefixSettings); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}

	if mr.Exists("settings:common") || mr.Exists("settings:other") {
		t.Fatalf("expected settings keys removed")
	}
	if !mr.Exists("settings_backup") || !mr.Exists("airport:3") {
		t.Fatalf("expected unrelated keys kept")
	}
}

func TestDeleteByPrefix_NoKeys(t *testing.T) {
	client, _, ctx := newTestClient(t)
	if err := client.DeleteByPrefix(ctx, "nothing"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestCountInWindow(t *testing.T) {
	client, mr, ctx := newTestClient(t)

	count, ttl, err := client.CountInWindow(ctx, "rl:ip", 10*time.Second)
	if err != nil || count != 1 {
		t.Fatalf("expected first count 1, got %d err=%v", count, err)
	}
	if ttl != 10*time.Second {
		t.Fatalf("expected full window ttl, got %v", ttl)
	}

	mr.FastForward(4 * time.Second)
	count, ttl, err = client.CountInWindow(ctx, "rl:ip", 10*time.Second)
	if err != nil || count != 2 {
		t.Fatalf("expected second count 2, got %d err=%v", count, err)
	}
	if ttl <= 0 || ttl > 6*time.Second {
		t.Fatalf("window must not be extended, ttl=%v", ttl)
	}

	mr.FastForward(7 * time.Second)
	if count, _, _ := client.CountInWindow(ctx, "rl:ip", 10*time.Second); count != 1 {
		t.Fatalf("expected new window, got %d", count)
	}
}

func TestWindowUsage(t *testing.T) {
	client, _, ctx := newTestClient(t)

	if _, _, err := client.WindowUsage(ctx, "rl:absent"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}

	_, _, _ = client.CountInWindow(ctx, "rl:ip", time.Minute)
	_, _, _ = client.CountInWindow(ctx, "rl:ip", time.Minute)

	count, ttl, err := client.WindowUsage(ctx, "rl:ip")
	if err != nil || count != 2 {
		t.Fatalf("expected usage 2, got %d err=%v", count, err)
	}
	if ttl <= 0 {
		t.Fatalf("expected positive ttl, got %v", ttl)
	}
	again, _, _ := client.WindowUsage(ctx, "rl:ip")
	if again != 2 {
		t.Fatalf("usage must not increment, got %d", again)
	}
}

func TestHealth(t *testing.T) {
	client, _, ctx := newTestClient(t)
	if err := client.Health(ctx); err != nil {
		t.Fatalf("health failed: %v", err)
	}
	var nilClient *Client
	if err := nilClient.Health(ctx); err == nil {
		t.Fatalf("expected error for nil client")
	}
}
