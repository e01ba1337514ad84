package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"net/http"
	"strings"
	"time"

	"taxi-booking/internal/apperror"
	"taxi-booking/internal/config"
	"taxi-booking/internal/logger"
	"taxi-booking/internal/models"
	"taxi-booking/internal/redis"

	"googlemaps.github.io/maps"
)

const metersPerMile = 1609.344

// APIKeySource отдаёт актуальный ключ Google Maps из справочника
type APIKeySource interface {
	ActiveKey(ctx context.Context) (string, error)
}

// DistanceService считает расстояние и время в пути через Google Distance Matrix с кешированием в Redis.
type DistanceService struct {
	redis  *redis.Client
	log    *logger.Logger
	keys   APIKeySource
	client *http.Client
	cfg    *config.MapsConfig
}

// NewDistanceService создает сервис расстояний.
func NewDistanceService(redis *redis.Client, log *logger.Logger, keys APIKeySource, cfg *config.MapsConfig) *DistanceService {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &DistanceService{
		redis:  redis,
		log:    log,
		keys:   keys,
		client: &http.Client{Timeout: timeout},
		cfg:    cfg,
	}
}

// Distance возвращает расстояние в милях и длительность поездки между двумя адресами.
// Любая ошибка провайдера прерывает расчёт, повторов нет.
func (s *DistanceService) Distance(ctx context.Context, origin, destination string) (*models.RouteEstimate, error) {
	origin = strings.TrimSpace(origin)
	destination = strings.TrimSpace(destination)
	if origin == "" || destination == "" {
		return nil, apperror.Validation("origin and destination are required", nil)
	}

	key := redis.CacheKey(redis.KeyPrefixDistance, s.provider(), hashKey(origin+"|"+destination))

	if s.redis != nil {
		var cached models.RouteEstimate
		if err := s.redis.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	var (
		route *models.RouteEstimate
		err   error
	)
	if s.provider() == providerOffline {
		route = offlineRoute(origin, destination)
	} else {
		route, err = s.googleDistance(ctx, origin, destination)
		if err != nil {
			s.log.WithError(err).WithFields(map[string]interface{}{
				"origin":      origin,
				"destination": destination,
			}).Error("Distance lookup failed")
			return nil, err
		}
	}

	// Пишем в кеш (best effort)
	if s.redis != nil {
		ttl := time.Duration(s.cfg.CacheTTLMinutes) * time.Minute
		if ttl > 0 {
			if err := s.redis.Set(ctx, key, route, ttl); err != nil {
				s.log.WithError(err).WithField("key", key).Warn("Failed to cache distance result")
			}
		}
	}

	return route, nil
}

// googleDistance вызывает Distance Matrix API (imperial, driving).
func (s *DistanceService) googleDistance(ctx context.Context, origin, destination string) (*models.RouteEstimate, error) {
	apiKey, err := s.apiKey(ctx)
	if err != nil {
		return nil, err
	}

	opts := []maps.ClientOption{maps.WithAPIKey(apiKey), maps.WithHTTPClient(s.client)}
	if s.cfg.BaseURL != "" {
		opts = append(opts, maps.WithBaseURL(s.cfg.BaseURL))
	}
	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, apperror.Configuration("failed to create maps client", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.client.Timeout)
	defer cancel()

	resp, err := client.DistanceMatrix(ctx, &maps.DistanceMatrixRequest{
		Origins:      []string{origin},
		Destinations: []string{destination},
		Mode:         maps.TravelModeDriving,
		Units:        maps.UnitsImperial,
	})
	if err != nil {
		return nil, apperror.Upstream("distance provider request failed", err)
	}
	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return nil, apperror.Upstream("distance provider returned no route", nil)
	}

	element := resp.Rows[0].Elements[0]
	if element.Status != "OK" {
		return nil, apperror.Upstream(fmt.Sprintf("distance provider returned status %s", element.Status), nil)
	}

	return &models.RouteEstimate{
		DistanceMiles:   round2(float64(element.Distance.Meters) / metersPerMile),
		Duration:        FormatDuration(element.Duration),
		DurationSeconds: int64(element.Duration.Seconds()),
	}, nil
}

// apiKey берёт самый свежий активный ключ из базы, иначе ключ из конфигурации.
func (s *DistanceService) apiKey(ctx context.Context) (string, error) {
	if s.keys != nil {
		key, err := s.keys.ActiveKey(ctx)
		if err == nil && key != "" {
			return key, nil
		}
		if err != nil && !apperror.Is(err, apperror.KindNotFound) {
			s.log.WithError(err).Warn("Failed to load Google API key, using configured key")
		}
	}
	if s.cfg.GoogleAPIKey == "" {
		return "", apperror.Configuration("google maps api key is not configured", nil)
	}
	return s.cfg.GoogleAPIKey, nil
}

const (
	providerGoogle  = "google"
	providerOffline = "offline"
)

// provider нормализует MAPS_PROVIDER; всё, кроме offline, считается Google
func (s *DistanceService) provider() string {
	if strings.EqualFold(strings.TrimSpace(s.cfg.Provider), providerOffline) {
		return providerOffline
	}
	return providerGoogle
}

// Ready сообщает, может ли сервис считать маршруты: offline режим или наличие ключа Google Maps
func (s *DistanceService) Ready(ctx context.Context) error {
	if s.provider() == providerOffline {
		return nil
	}
	_, err := s.apiKey(ctx)
	return err
}

// FormatDuration форматирует длительность в виде "1 hour 5 mins".
func FormatDuration(d time.Duration) string {
	totalMinutes := int(math.Round(d.Minutes()))
	if totalMinutes < 1 {
		totalMinutes = 1
	}
	hours, minutes := totalMinutes/60, totalMinutes%60

	var parts []string
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, plural(minutes, "min"))
	}
	return strings.Join(parts, " ")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// offlineRoute детерминированно выводит маршрут из адресов; только для локальной разработки.
func offlineRoute(origin, destination string) *models.RouteEstimate {
	h := fnv.New64a()
	_, _ = h.Write([]byte(origin + "|" + destination))
	val := h.Sum64()

	miles := 1 + float64(val%5000)/100.0 // 1..51 миль, шаг 0.01
	seconds := int64(miles / 30 * 3600)   // 30 mph

	return &models.RouteEstimate{
		DistanceMiles:   round2(miles),
		Duration:        FormatDuration(time.Duration(seconds) * time.Second),
		DurationSeconds: seconds,
	}
}

// hashKey делает короткий ключ для пары адресов.
func hashKey(value string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(value))
	return fmt.Sprintf("%x", h.Sum64())
}
