package services

import (
	"context"
	"time"

	"taxi-booking/internal/apperror"
	"taxi-booking/internal/logger"
	"taxi-booking/internal/models"
	"taxi-booking/internal/redis"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// ReferenceEvents публикует изменения справочников для остальных инстансов.
type ReferenceEvents interface {
	PublishReferenceChanged(entity string, action models.ReferenceAction, id int64) error
}

// referenceCache кеширует справочники в Redis; без Redis просто пропускает кеш.
type referenceCache struct {
	redis  *redis.Client
	log    *logger.Logger
	ttl    time.Duration
	events ReferenceEvents
}

func newReferenceCache(rdb *redis.Client, log *logger.Logger, ttl time.Duration, events ReferenceEvents) referenceCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return referenceCache{redis: rdb, log: log, ttl: ttl, events: events}
}

func (c referenceCache) get(ctx context.Context, key string, dest interface{}) bool {
	if c.redis == nil {
		return false
	}
	return c.redis.Get(ctx, key, dest) == nil
}

func (c referenceCache) set(ctx context.Context, key string, value interface{}) {
	if c.redis == nil {
		return
	}
	if err := c.redis.Set(ctx, key, value, c.ttl); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("Failed to cache reference data")
	}
}

// changed сбрасывает локальный кеш по префиксу и рассылает событие (best effort).
func (c referenceCache) changed(ctx context.Context, prefix, entity string, action models.ReferenceAction, id int64) {
	if c.redis != nil {
		if err := c.redis.InvalidateEntity(ctx, prefix); err != nil {
			c.log.WithError(err).WithField("prefix", prefix).Warn("Failed to invalidate reference cache")
		}
	}
	if c.events != nil {
		if err := c.events.PublishReferenceChanged(entity, action, id); err != nil {
			c.log.WithError(err).WithField("entity", entity).Warn("Failed to publish reference change")
		}
	}
}

// normalizePage ограничивает параметры пагинации.
func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// fieldErrors собирает ошибки валидации по полям.
type fieldErrors map[string][]string

func (f fieldErrors) add(field, msg string) {
	f[field] = append(f[field], msg)
}

func (f fieldErrors) check(cond bool, field, msg string) {
	if !cond {
		f.add(field, msg)
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return apperror.ValidationFields("Validation failed.", f)
}

func activeOrDefault(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}
