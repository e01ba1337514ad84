package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taxi-booking/internal/apperror"
	"taxi-booking/internal/config"
)

func newTestRateLimiter(t *testing.T, limit int) *RateLimiter {
	t.Helper()
	rdb, _ := newTestRedis(t)
	return NewRateLimiter(rdb, newTestLogger(), &config.RateLimitConfig{
		Enabled:       true,
		Requests:      limit,
		WindowSeconds: 60,
		KeyPrefix:     "test",
	})
}

func TestRateLimiter_Allow(t *testing.T) {
	limiter := newTestRateLimiter(t, 2)
	ctx := context.Background()

	d := limiter.Allow(ctx, "10.0.0.1")
	if !d.Allowed || d.Remaining != 1 || d.Used != 1 {
		t.Fatalf("first request should be allowed with remaining=1, got %+v", d)
	}

	d = limiter.Allow(ctx, "10.0.0.1")
	if !d.Allowed || d.Remaining != 0 {
		t.Fatalf("second request should be allowed with remaining=0, got %+v", d)
	}

	d = limiter.Allow(ctx, "10.0.0.1")
	if d.Allowed || d.Remaining != 0 {
		t.Fatalf("third request should be blocked, got %+v", d)
	}
	if d.ResetAt.Before(time.Now()) {
		t.Fatalf("expected reset in the future, got %v", d.ResetAt)
	}

	if d := limiter.Allow(ctx, "10.0.0.2"); !d.Allowed {
		t.Fatalf("other client should have its own window")
	}
}

func TestRateLimiter_UsageDoesNotCount(t *testing.T) {
	limiter := newTestRateLimiter(t, 3)
	ctx := context.Background()

	before, err := limiter.Usage(ctx, "::1")
	if err != nil || before.Used != 0 || before.Remaining != 3 {
		t.Fatalf("unexpected usage before requests: %+v err=%v", before, err)
	}

	limiter.Allow(ctx, "::1")
	limiter.Allow(ctx, "::1")

	usage, err := limiter.Usage(ctx, "::1")
	if err != nil || usage.Used != 2 || usage.Remaining != 1 || !usage.Allowed {
		t.Fatalf("unexpected usage: %+v err=%v", usage, err)
	}
	again, _ := limiter.Usage(ctx, "::1")
	if again.Used != 2 {
		t.Fatalf("usage must not increment the counter, got %d", again.Used)
	}
}

func TestRateLimiter_NewDisabled(t *testing.T) {
	if limiter := NewRateLimiter(nil, nil, nil); limiter.Enabled() {
		t.Fatalf("expected limiter disabled without cfg/redis")
	}
	limiter := NewRateLimiter(nil, nil, &config.RateLimitConfig{Enabled: false})
	if limiter.Enabled() {
		t.Fatalf("expected limiter disabled when cfg disabled")
	}
	if d := limiter.Allow(context.Background(), "x"); !d.Allowed {
		t.Fatalf("disabled limiter must allow everything")
	}
}

type failingRateRedis struct{}

func (failingRateRedis) CountInWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	return 0, 0, errors.New("redis down")
}

func (failingRateRedis) WindowUsage(ctx context.Context, key string) (int64, time.Duration, error) {
	return 0, 0, errors.New("redis down")
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	limiter := &RateLimiter{
		redis:   failingRateRedis{},
		log:     newTestLogger(),
		enabled: true,
		limit:   1,
		window:  time.Minute,
		prefix:  "rl",
		now:     time.Now,
	}
	for i := 0; i < 3; i++ {
		if d := limiter.Allow(context.Background(), "ip"); !d.Allowed {
			t.Fatalf("expected request %d allowed when redis is down", i)
		}
	}
}

func TestRateLimiter_UsageStorageError(t *testing.T) {
	limiter := &RateLimiter{
		redis:   failingRateRedis{},
		log:     newTestLogger(),
		enabled: true,
		limit:   5,
		window:  time.Minute,
		prefix:  "rl",
		now:     time.Now,
	}
	if _, err := limiter.Usage(context.Background(), "ip"); !apperror.Is(err, apperror.KindUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestRateLimiter_WindowExpires(t *testing.T) {
	rdb, mr := newTestRedis(t)
	limiter := NewRateLimiter(rdb, newTestLogger(), &config.RateLimitConfig{
		Enabled:       true,
		Requests:      1,
		WindowSeconds: 10,
		KeyPrefix:     "test",
	})
	ctx := context.Background()

	limiter.Allow(ctx, "10.0.0.9")
	if d := limiter.Allow(ctx, "10.0.0.9"); d.Allowed {
		t.Fatalf("second request in window must be blocked")
	}
	mr.FastForward(11 * time.Second)
	if d := limiter.Allow(ctx, "10.0.0.9"); !d.Allowed || d.Used != 1 {
		t.Fatalf("new window must start from 1, got %+v", d)
	}
}

func TestExtractClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Real-IP", "10.0.0.1")
	if ip := ExtractClientIP(r); ip != "10.0.0.1" {
		t.Fatalf("expected real ip, got %s", ip)
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Forwarded-For", "10.0.0.2, 10.0.0.3")
	if ip := ExtractClientIP(r); ip != "10.0.0.2" {
		t.Fatalf("expected first forwarded ip, got %s", ip)
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.168.0.1:1234"
	if ip := ExtractClientIP(r); ip != "192.168.0.1" {
		t.Fatalf("expected remote addr ip, got %s", ip)
	}
}
