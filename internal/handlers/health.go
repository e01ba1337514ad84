package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/IBM/sarama"
)

// KafkaHealthFunc проверяет доступность брокеров
type KafkaHealthFunc func(brokers []string) error

// DependencyCheck проверяет одну внешнюю зависимость
type DependencyCheck func(ctx context.Context) error

type dependency struct {
	name     string
	critical bool
	check    DependencyCheck
}

// HealthHandler проверяет состояние зависимостей сервиса
type HealthHandler struct {
	deps []dependency
}

// NewHealthHandler создает обработчик здоровья для БД, Redis и Kafka; kafkaCheck по умолчанию CheckKafkaHealth
func NewHealthHandler(db DBHealth, redisClient RedisHealth, kafkaBrokers []string, kafkaCheck KafkaHealthFunc) *HealthHandler {
	if kafkaCheck == nil {
		kafkaCheck = CheckKafkaHealth
	}
	h := &HealthHandler{}
	h.WithCheck("database", true, func(context.Context) error { return db.Health() })
	h.WithCheck("redis", true, redisClient.Health)
	h.WithCheck("kafka", true, func(context.Context) error { return kafkaCheck(kafkaBrokers) })
	return h
}

// WithCheck добавляет проверку. Некритичная зависимость переводит /health в degraded,
// но не снимает сервис с readiness.
func (h *HealthHandler) WithCheck(name string, critical bool, check DependencyCheck) *HealthHandler {
	h.deps = append(h.deps, dependency{name: name, critical: critical, check: check})
	return h
}

// HealthResponse ответ проверки здоровья
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
	Version  string            `json:"version"`
	Uptime   string            `json:"uptime"`
}

var startTime = time.Now()

// Health GET /health: состояние всех зависимостей
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	services := make(map[string]string, len(h.deps))
	status := "healthy"
	for _, dep := range h.deps {
		if err := dep.check(ctx); err != nil {
			services[dep.name] = "unhealthy: " + err.Error()
			if dep.critical {
				status = "unhealthy"
			} else if status == "healthy" {
				status = "degraded"
			}
			continue
		}
		services[dep.name] = "healthy"
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSONResponse(w, statusCode, HealthResponse{
		Status:   status,
		Services: services,
		Version:  "1.0.0",
		Uptime:   time.Since(startTime).String(),
	})
}

// Readiness GET /health/readiness: только критичные зависимости
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	for _, dep := range h.deps {
		if !dep.critical {
			continue
		}
		if err := dep.check(ctx); err != nil {
			writeErrorResponse(w, http.StatusServiceUnavailable, dep.name+" not ready")
			return
		}
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Liveness GET /health/liveness
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{
		"status": "alive",
		"uptime": time.Since(startTime).String(),
	})
}

// CheckKafkaHealth подключается к брокерам и сразу закрывает клиента
func CheckKafkaHealth(brokers []string) error {
	if len(brokers) == 0 {
		return fmt.Errorf("no brokers configured")
	}

	cfg := sarama.NewConfig()
	cfg.Net.DialTimeout = 3 * time.Second
	cfg.Net.ReadTimeout = 5 * time.Second
	cfg.Net.WriteTimeout = 5 * time.Second
	cfg.Metadata.Retry.Max = 1
	cfg.Metadata.Retry.Backoff = 500 * time.Millisecond

	client, err := sarama.NewClient(brokers, cfg)
	if err != nil {
		return fmt.Errorf("kafka brokers unreachable: %w", err)
	}
	return client.Close()
}
