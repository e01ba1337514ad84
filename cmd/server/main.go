package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taxi-booking/internal/config"
	"taxi-booking/internal/database"
	"taxi-booking/internal/handlers"
	"taxi-booking/internal/kafka"
	"taxi-booking/internal/logger"
	"taxi-booking/internal/models"
	"taxi-booking/internal/redis"
	"taxi-booking/internal/services"

	"github.com/joho/godotenv"
)

// Фабричные функции для подключения внешних сервисов (подменяемые в тестах).
var (
	dbConnect        = database.Connect
	redisConnect     = redis.Connect
	newKafkaProducer = kafka.NewProducer
	newKafkaConsumer = kafka.NewConsumer
	kafkaHealthCheck = handlers.CheckKafkaHealth
	loadConfig       = config.Load
	newLogger        = logger.New
)

// application агрегирует собранные зависимости.
type application struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *database.DB
	redis    *redis.Client
	producer *kafka.Producer
	consumer *kafka.Consumer
	handler  http.Handler
	server   *http.Server
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: .env not loaded: %v\n", err)
	}

	app, err := buildApplication()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build app: %v\n", err)
		os.Exit(1)
	}
	app.log.Info("Starting taxi booking server...")

	go func() {
		app.log.WithField("address", app.server.Addr).Info("HTTP server starting")
		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	app.log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	app.shutdown(ctx)
	app.log.Info("Server exited")
}

// shutdown останавливает сервер и закрывает соединения в обратном порядке
func (app *application) shutdown(ctx context.Context) {
	if err := app.consumer.Stop(); err != nil {
		app.log.WithError(err).Warn("Kafka consumer stop failed")
	}
	if err := app.server.Shutdown(ctx); err != nil {
		app.log.WithError(err).Error("Server forced to shutdown")
	}
	_ = app.producer.Close()
	_ = app.redis.Close()
	_ = app.db.Close()
}

// buildApplication создает все зависимости (подменяемые в тестах).
func buildApplication() (*application, error) {
	cfg := loadConfig()
	log := newLogger(&cfg.Logger)

	db, err := dbConnect(&cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.Database.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := db.Migrate(ctx)
		cancel()
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("db migrate: %w", err)
		}
		log.Info("Database schema is up to date")
	}

	redisClient, err := redisConnect(&cfg.Redis, log)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("redis connect: %w", err)
	}

	producer, err := newKafkaProducer(&cfg.Kafka, log)
	if err != nil {
		_ = redisClient.Close()
		_ = db.Close()
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	consumer, err := newKafkaConsumer(&cfg.Kafka, log)
	if err != nil {
		_ = producer.Close()
		_ = redisClient.Close()
		_ = db.Close()
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}

	ttl := time.Duration(cfg.Cache.ReferenceTTLMinutes) * time.Minute

	airportService := services.NewAirportService(db, log, redisClient, ttl, producer)
	carService := services.NewCarService(db, log, redisClient, ttl, producer)
	extraChargeService := services.NewExtraChargeService(db, log, redisClient, ttl, producer)
	settingsService := services.NewSettingsService(db, log, redisClient, ttl, producer)
	keyService := services.NewGoogleAPIKeyService(db, log, redisClient, ttl, producer)
	smsService := services.NewSMSNumberService(db, log, producer)
	distanceService := services.NewDistanceService(redisClient, log, keyService, &cfg.Maps)
	fareService := services.NewFareService(airportService, distanceService, extraChargeService, carService, settingsService, producer, log)
	rateLimiter := services.NewRateLimiter(redisClient, log, &cfg.RateLimit)

	registerEventHandlers(consumer, redisClient, log)
	if err := consumer.Start(); err != nil {
		_ = consumer.Stop()
		_ = producer.Close()
		_ = redisClient.Close()
		_ = db.Close()
		return nil, fmt.Errorf("kafka consumer start: %w", err)
	}

	health := handlers.NewHealthHandler(db, redisClient, cfg.Kafka.Brokers, kafkaHealthCheck).
		WithCheck("maps", false, distanceService.Ready)

	router := &handlers.Router{
		Fare:      handlers.NewFareHandler(fareService, log),
		Airports:  handlers.NewAirportHandler(airportService, log),
		Cars:      handlers.NewCarHandler(carService, log),
		Extras:    handlers.NewExtraChargeHandler(extraChargeService, log),
		SMS:       handlers.NewSMSNumberHandler(smsService, log),
		Keys:      handlers.NewGoogleAPIKeyHandler(keyService, log),
		Settings:  handlers.NewSettingsHandler(settingsService, log),
		Health:    health,
		RateLimit: handlers.NewRateLimitHandler(rateLimiter, log, &cfg.RateLimit),
		Limiter:   rateLimiter,
	}
	handler := router.Routes(log, &cfg.CORS)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	return &application{
		cfg:      cfg,
		log:      log,
		db:       db,
		redis:    redisClient,
		producer: producer,
		consumer: consumer,
		handler:  handler,
		server:   server,
	}, nil
}

// registerEventHandlers регистрирует обработчики событий Kafka
func registerEventHandlers(consumer *kafka.Consumer, cache kafka.CacheInvalidator, log *logger.Logger) {
	consumer.RegisterHandler(models.EventTypeReferenceChanged, kafka.ReferenceChangedHandler(cache, log))

	consumer.RegisterHandler(models.EventTypeFareCalculated, func(ctx context.Context, event *models.Event) error {
		log.WithField("event_id", event.ID).WithField("quote_id", event.Data["quote_id"]).Debug("Fare calculated event received")
		return nil
	})
}
