package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"taxi-booking/internal/config"
	"taxi-booking/internal/logger"

	"github.com/go-redis/redis/v8"
)

// Префиксы ключей кеша справочников и расстояний
const (
	KeyPrefixAirport      = "airport"
	KeyPrefixExtraCharges = "extra_charges"
	KeyPrefixSettings     = "settings"
	KeyPrefixGoogleKey    = "google_api_key"
	KeyPrefixDistance     = "distance"
	KeyPrefixCar          = "car"
)

// ErrCacheMiss возвращается, когда ключа нет в кеше
var ErrCacheMiss = errors.New("cache miss")

// Client обёртка над go-redis: JSON кеш справочников и счётчики окон rate limiter
type Client struct {
	client *redis.Client
	log    *logger.Logger
}

// Connect создает подключение к Redis и проверяет его PING
func Connect(cfg *config.RedisConfig, log *logger.Logger) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", rdb.Options().Addr, err)
	}

	log.WithField("addr", rdb.Options().Addr).Info("Successfully connected to Redis")

	return &Client{client: rdb, log: log}, nil
}

// Close закрывает подключение к Redis
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// CacheKey собирает ключ вида prefix:part1:part2
func CacheKey(prefix string, parts ...string) string {
	return strings.Join(append([]string{prefix}, parts...), ":")
}

// Set кладёт значение в кеш как JSON
func (c *Client) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}

	c.log.WithField("key", key).Debug("Cached value")
	return nil
}

// Get читает JSON-значение по ключу; отсутствие ключа - ErrCacheMiss
func (c *Client) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("key %s: %w", key, ErrCacheMiss)
		}
		return fmt.Errorf("failed to get key %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal value for key %s: %w", key, err)
	}
	return nil
}

// CountInWindow увеличивает счётчик окна и возвращает его значение и остаток TTL.
// Окно открывается первым запросом: TTL ставится, только если у ключа его ещё нет.
func (c *Client) CountInWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	var (
		incr *redis.IntCmd
		pttl *redis.DurationCmd
	)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pttl = pipe.PTTL(ctx, key)
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count request for key %s: %w", key, err)
	}

	ttl := pttl.Val()
	if ttl <= 0 {
		if err := c.client.PExpire(ctx, key, window).Err(); err != nil {
			return incr.Val(), window, fmt.Errorf("failed to open window for key %s: %w", key, err)
		}
		ttl = window
	}
	return incr.Val(), ttl, nil
}

// WindowUsage читает счётчик окна и остаток TTL, не изменяя их; нет окна - ErrCacheMiss
func (c *Client) WindowUsage(ctx context.Context, key string) (int64, time.Duration, error) {
	var (
		get  *redis.StringCmd
		pttl *redis.DurationCmd
	)
	_, err := c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		get = pipe.Get(ctx, key)
		pttl = pipe.PTTL(ctx, key)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, 0, fmt.Errorf("failed to read window for key %s: %w", key, err)
	}

	count, err := get.Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, 0, fmt.Errorf("key %s: %w", key, ErrCacheMiss)
		}
		return 0, 0, fmt.Errorf("failed to parse window counter %s: %w", key, err)
	}
	return count, pttl.Val(), nil
}

// Health проверяет состояние Redis
func (c *Client) Health(ctx context.Context) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("redis is not initialized")
	}
	return c.client.Ping(ctx).Err()
}

// InvalidateEntity сбрасывает все закешированные записи справочника
func (c *Client) InvalidateEntity(ctx context.Context, prefix string) error {
	return c.DeleteByPrefix(ctx, prefix+":")
}

// DeleteByPrefix удаляет ключи по префиксу (использует SCAN).
func (c *Client) DeleteByPrefix(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	var keys []string

	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan keys by prefix %s: %w", prefix, err)
	}
	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete keys by prefix %s: %w", prefix, err)
	}

	c.log.WithFields(map[string]interface{}{
		"prefix": prefix,
		"count":  len(keys),
	}).Debug("Invalidated cached keys")

	return nil
}
