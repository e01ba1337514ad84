package kafka

import (
	"context"
	"fmt"

	"taxi-booking/internal/logger"
	"taxi-booking/internal/models"
	"taxi-booking/internal/redis"
)

// CacheInvalidator сбрасывает кэш справочника по префиксу его ключей
type CacheInvalidator interface {
	InvalidateEntity(ctx context.Context, prefix string) error
}

// entityPrefixes сущность справочника -> префикс ключей её кэша
var entityPrefixes = map[string]string{
	models.EntityAirport:      redis.KeyPrefixAirport,
	models.EntityCar:          redis.KeyPrefixCar,
	models.EntityExtraCharge:  redis.KeyPrefixExtraCharges,
	models.EntitySettings:     redis.KeyPrefixSettings,
	models.EntityGoogleAPIKey: redis.KeyPrefixGoogleKey,
}

// ReferenceChangedHandler сбрасывает кэш справочника при событии reference.changed,
// чтобы все экземпляры сервиса видели изменения, сделанные на соседних.
func ReferenceChangedHandler(cache CacheInvalidator, log *logger.Logger) EventHandler {
	return func(ctx context.Context, event *models.Event) error {
		entity, _ := event.Data["entity"].(string)
		prefix, ok := entityPrefixes[entity]
		if !ok {
			log.WithField("entity", entity).Debug("Reference entity is not cached")
			return nil
		}
		if err := cache.InvalidateEntity(ctx, prefix); err != nil {
			return fmt.Errorf("invalidate %s cache: %w", entity, err)
		}
		log.WithField("entity", entity).WithField("action", event.Data["action"]).Debug("Reference cache invalidated")
		return nil
	}
}
