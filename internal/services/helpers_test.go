package services

import (
	"strings"
	"testing"

	"taxi-booking/internal/config"
	"taxi-booking/internal/database"
	"taxi-booking/internal/logger"
	"taxi-booking/internal/models"
	"taxi-booking/internal/redis"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
)

func newTestLogger() *logger.Logger {
	return logger.New(&config.LoggerConfig{Level: "error", Format: "json"})
}

func newMockDB(t *testing.T) (*database.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	return &database.DB{DB: db}, mock
}

func newTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skip: cannot start miniredis in this environment: %v", err)
		}
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	parts := strings.Split(mr.Addr(), ":")
	cfg := &config.RedisConfig{
		Host: parts[0],
		Port: parts[1],
		DB:   0,
	}

	rdb, err := redis.Connect(cfg, newTestLogger())
	if err != nil {
		t.Fatalf("failed to connect redis: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })

	return rdb, mr
}

type referenceChange struct {
	entity string
	action models.ReferenceAction
	id     int64
}

type recordingEvents struct {
	changes []referenceChange
	err     error
}

func (r *recordingEvents) PublishReferenceChanged(entity string, action models.ReferenceAction, id int64) error {
	r.changes = append(r.changes, referenceChange{entity: entity, action: action, id: id})
	return r.err
}
