package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"taxi-booking/internal/apperror"
	"taxi-booking/internal/config"
	"taxi-booking/internal/logger"
	"taxi-booking/internal/redis"
)

// RateDecision результат проверки лимита для клиента.
type RateDecision struct {
	Allowed   bool
	Limit     int64
	Used      int64
	Remaining int64
	ResetAt   time.Time
}

// RateLimiter ограничивает число запросов клиента в фиксированном окне; счётчики живут в Redis.
type RateLimiter struct {
	redis   rateRedis
	log     *logger.Logger
	enabled bool
	limit   int64
	window  time.Duration
	prefix  string
	now     func() time.Time
}

type rateRedis interface {
	CountInWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	WindowUsage(ctx context.Context, key string) (int64, time.Duration, error)
}

// NewRateLimiter создаёт rate limiter; без Redis или при выключенной настройке пропускает всё.
func NewRateLimiter(redisClient *redis.Client, log *logger.Logger, cfg *config.RateLimitConfig) *RateLimiter {
	if redisClient == nil || cfg == nil || !cfg.Enabled || cfg.Requests <= 0 || cfg.WindowSeconds <= 0 {
		return &RateLimiter{enabled: false, now: time.Now}
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "ratelimit"
	}

	return &RateLimiter{
		redis:   redisClient,
		log:     log,
		enabled: true,
		limit:   int64(cfg.Requests),
		window:  time.Duration(cfg.WindowSeconds) * time.Second,
		prefix:  prefix,
		now:     time.Now,
	}
}

// Allow учитывает запрос клиента. Ошибка Redis не блокирует запрос: лимитер пропускает его и пишет в лог.
func (r *RateLimiter) Allow(ctx context.Context, client string) RateDecision {
	now := r.now()
	if !r.enabled {
		return r.fresh(now)
	}

	key := r.makeKey(client)
	count, ttl, err := r.redis.CountInWindow(ctx, key, r.window)
	if err != nil && count == 0 {
		r.log.WithError(err).WithField("key", key).Warn("Rate limiter unavailable, request allowed")
		return r.fresh(now)
	}
	if err != nil {
		r.log.WithError(err).WithField("key", key).Warn("Failed to set rate limit ttl")
	}

	return RateDecision{
		Allowed:   count <= r.limit,
		Limit:     r.limit,
		Used:      count,
		Remaining: remainingOf(r.limit, count),
		ResetAt:   now.Add(ttl),
	}
}

// Usage возвращает состояние окна клиента, не увеличивая счётчик.
func (r *RateLimiter) Usage(ctx context.Context, client string) (RateDecision, error) {
	now := r.now()
	if !r.enabled {
		return r.fresh(now), nil
	}

	count, ttl, err := r.redis.WindowUsage(ctx, r.makeKey(client))
	if errors.Is(err, redis.ErrCacheMiss) {
		return r.fresh(now), nil
	}
	if err != nil {
		return RateDecision{}, apperror.Upstream("rate limit storage unavailable", err)
	}
	if ttl <= 0 {
		ttl = r.window
	}

	return RateDecision{
		Allowed:   count < r.limit,
		Limit:     r.limit,
		Used:      count,
		Remaining: remainingOf(r.limit, count),
		ResetAt:   now.Add(ttl),
	}, nil
}

// fresh описывает ещё не открытое окно
func (r *RateLimiter) fresh(now time.Time) RateDecision {
	return RateDecision{Allowed: true, Limit: r.limit, Remaining: r.limit, ResetAt: now.Add(r.window)}
}

func remainingOf(limit, used int64) int64 {
	if used >= limit {
		return 0
	}
	return limit - used
}

func (r *RateLimiter) makeKey(client string) string {
	safeKey := strings.ReplaceAll(client, ":", "_")
	return fmt.Sprintf("%s:%s", r.prefix, safeKey)
}

// Limit возвращает лимит для текущего окна.
func (r *RateLimiter) Limit() int64 {
	return r.limit
}

// Enabled сообщает, включён ли rate limiting.
func (r *RateLimiter) Enabled() bool {
	return r.enabled
}

// ExtractClientIP получает IP клиента из заголовков прокси или RemoteAddr.
func ExtractClientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
