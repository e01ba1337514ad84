package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"taxi-booking/internal/apperror"
	"taxi-booking/internal/database"
	"taxi-booking/internal/logger"
	"taxi-booking/internal/models"
	"taxi-booking/internal/redis"
)

const googleAPIKeyColumns = "id, api_key, label, active, created_at, updated_at"

// GoogleAPIKeyService управляет ключами Google Maps.
type GoogleAPIKeyService struct {
	db    *database.DB
	log   *logger.Logger
	cache referenceCache
}

// NewGoogleAPIKeyService создаёт сервис ключей.
func NewGoogleAPIKeyService(db *database.DB, log *logger.Logger, rdb *redis.Client, ttl time.Duration, events ReferenceEvents) *GoogleAPIKeyService {
	return &GoogleAPIKeyService{
		db:    db,
		log:   log,
		cache: newReferenceCache(rdb, log, ttl, events),
	}
}

func validateGoogleAPIKey(req *models.GoogleAPIKeyRequest) error {
	errs := fieldErrors{}
	req.APIKey = strings.TrimSpace(req.APIKey)
	errs.check(req.APIKey != "", "api_key", "The api key field is required.")
	errs.check(len(req.APIKey) <= 255, "api_key", "The api key may not be greater than 255 characters.")
	errs.check(!strings.ContainsAny(req.APIKey, " \t\n"), "api_key", "The api key may not contain whitespace.")
	errs.check(len(req.Label) <= 255, "label", "The label may not be greater than 255 characters.")
	return errs.err()
}

// CreateKey сохраняет новый ключ.
func (s *GoogleAPIKeyService) CreateKey(ctx context.Context, req *models.GoogleAPIKeyRequest) (*models.GoogleAPIKey, error) {
	if err := validateGoogleAPIKey(req); err != nil {
		return nil, err
	}

	now := time.Now()
	key := &models.GoogleAPIKey{
		APIKey:    req.APIKey,
		Label:     req.Label,
		Active:    activeOrDefault(req.Active),
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `
		INSERT INTO google_api_keys (api_key, label, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	if err := s.db.QueryRowContext(ctx, query, key.APIKey, key.Label, key.Active, key.CreatedAt, key.UpdatedAt).Scan(&key.ID); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Conflict("api key already exists", err)
		}
		return nil, fmt.Errorf("failed to create google api key: %w", err)
	}

	s.log.WithField("google_api_key_id", key.ID).Info("Google API key created")
	s.cache.changed(ctx, redis.KeyPrefixGoogleKey, models.EntityGoogleAPIKey, models.ReferenceCreated, key.ID)
	return key, nil
}

// UpdateKey обновляет ключ.
func (s *GoogleAPIKeyService) UpdateKey(ctx context.Context, id int64, req *models.GoogleAPIKeyRequest) (*models.GoogleAPIKey, error) {
	if err := validateGoogleAPIKey(req); err != nil {
		return nil, err
	}

	query := `
		UPDATE google_api_keys
		SET api_key = $1, label = $2, active = $3, updated_at = $4
		WHERE id = $5
	`
	result, err := s.db.ExecContext(ctx, query, req.APIKey, req.Label, activeOrDefault(req.Active), time.Now(), id)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Conflict("api key already exists", err)
		}
		return nil, fmt.Errorf("failed to update google api key: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, apperror.NotFound("google api key not found", nil)
	}

	s.cache.changed(ctx, redis.KeyPrefixGoogleKey, models.EntityGoogleAPIKey, models.ReferenceUpdated, id)
	return s.GetKey(ctx, id)
}

// DeleteKey удаляет ключ.
func (s *GoogleAPIKeyService) DeleteKey(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM google_api_keys WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete google api key: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("google api key not found", nil)
	}

	s.cache.changed(ctx, redis.KeyPrefixGoogleKey, models.EntityGoogleAPIKey, models.ReferenceDeleted, id)
	return nil
}

// GetKey возвращает ключ по идентификатору.
func (s *GoogleAPIKeyService) GetKey(ctx context.Context, id int64) (*models.GoogleAPIKey, error) {
	query := "SELECT " + googleAPIKeyColumns + " FROM google_api_keys WHERE id = $1"

	key := &models.GoogleAPIKey{}
	if err := s.db.QueryRowContext(ctx, query, id).Scan(
		&key.ID, &key.APIKey, &key.Label, &key.Active, &key.CreatedAt, &key.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("google api key not found", err)
		}
		return nil, fmt.Errorf("failed to get google api key: %w", err)
	}
	return key, nil
}

// ListKeys возвращает список ключей.
func (s *GoogleAPIKeyService) ListKeys(ctx context.Context, limit, offset int) ([]*models.GoogleAPIKey, error) {
	limit, offset = normalizePage(limit, offset)
	query := "SELECT " + googleAPIKeyColumns + " FROM google_api_keys ORDER BY id LIMIT $1 OFFSET $2"

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list google api keys: %w", err)
	}
	defer rows.Close()

	keys := make([]*models.GoogleAPIKey, 0)
	for rows.Next() {
		key := &models.GoogleAPIKey{}
		if err := rows.Scan(&key.ID, &key.APIKey, &key.Label, &key.Active, &key.CreatedAt, &key.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan google api key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate google api keys: %w", err)
	}
	return keys, nil
}

// ActiveKey возвращает самый свежий активный ключ.
func (s *GoogleAPIKeyService) ActiveKey(ctx context.Context) (string, error) {
	cacheKey := redis.CacheKey(redis.KeyPrefixGoogleKey, "active")

	var cached string
	if s.cache.get(ctx, cacheKey, &cached) && cached != "" {
		return cached, nil
	}

	query := "SELECT api_key FROM google_api_keys WHERE active = TRUE ORDER BY created_at DESC, id DESC LIMIT 1"

	var apiKey string
	if err := s.db.QueryRowContext(ctx, query).Scan(&apiKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperror.NotFound("google api key not found", err)
		}
		return "", fmt.Errorf("failed to get active google api key: %w", err)
	}

	s.cache.set(ctx, cacheKey, apiKey)
	return apiKey, nil
}
