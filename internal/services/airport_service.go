package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"taxi-booking/internal/apperror"
	"taxi-booking/internal/database"
	"taxi-booking/internal/logger"
	"taxi-booking/internal/models"
	"taxi-booking/internal/redis"
)

const airportColumns = "id, name, code, from_tax_toll, to_tax_toll, logo, active, created_at, updated_at"

// AirportService управляет справочником аэропортов.
type AirportService struct {
	db    *database.DB
	log   *logger.Logger
	cache referenceCache
}

// NewAirportService создаёт сервис аэропортов.
func NewAirportService(db *database.DB, log *logger.Logger, rdb *redis.Client, ttl time.Duration, events ReferenceEvents) *AirportService {
	return &AirportService{
		db:    db,
		log:   log,
		cache: newReferenceCache(rdb, log, ttl, events),
	}
}

func validateAirport(req *models.AirportRequest) error {
	errs := fieldErrors{}
	req.Name = strings.TrimSpace(req.Name)
	errs.check(req.Name != "", "name", "The name field is required.")
	errs.check(len(req.Name) <= 255, "name", "The name may not be greater than 255 characters.")
	errs.check(len(req.Code) <= 16, "code", "The code may not be greater than 16 characters.")
	errs.check(req.FromTaxToll >= 0, "from_tax_toll", "The from tax toll must be at least 0.")
	errs.check(req.ToTaxToll >= 0, "to_tax_toll", "The to tax toll must be at least 0.")
	return errs.err()
}

// CreateAirport создаёт аэропорт.
func (s *AirportService) CreateAirport(ctx context.Context, req *models.AirportRequest) (*models.Airport, error) {
	if err := validateAirport(req); err != nil {
		return nil, err
	}

	now := time.Now()
	airport := &models.Airport{
		Name:        req.Name,
		Code:        strings.ToUpper(strings.TrimSpace(req.Code)),
		FromTaxToll: req.FromTaxToll,
		ToTaxToll:   req.ToTaxToll,
		Logo:        req.Logo,
		Active:      activeOrDefault(req.Active),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	query := `
		INSERT INTO airports (name, code, from_tax_toll, to_tax_toll, logo, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query, airport.Name, airport.Code, airport.FromTaxToll, airport.ToTaxToll,
		airport.Logo, airport.Active, airport.CreatedAt, airport.UpdatedAt).Scan(&airport.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Conflict("airport already exists", err)
		}
		return nil, fmt.Errorf("failed to create airport: %w", err)
	}

	s.log.WithField("airport_id", airport.ID).Info("Airport created")
	s.cache.changed(ctx, redis.KeyPrefixAirport, models.EntityAirport, models.ReferenceCreated, airport.ID)
	return airport, nil
}

// UpdateAirport обновляет аэропорт.
func (s *AirportService) UpdateAirport(ctx context.Context, id int64, req *models.AirportRequest) (*models.Airport, error) {
	if err := validateAirport(req); err != nil {
		return nil, err
	}

	query := `
		UPDATE airports
		SET name = $1, code = $2, from_tax_toll = $3, to_tax_toll = $4, logo = $5, active = $6, updated_at = $7
		WHERE id = $8
	`
	result, err := s.db.ExecContext(ctx, query, req.Name, strings.ToUpper(strings.TrimSpace(req.Code)),
		req.FromTaxToll, req.ToTaxToll, req.Logo, activeOrDefault(req.Active), time.Now(), id)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Conflict("airport already exists", err)
		}
		return nil, fmt.Errorf("failed to update airport: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, apperror.NotFound("airport not found", nil)
	}

	s.cache.changed(ctx, redis.KeyPrefixAirport, models.EntityAirport, models.ReferenceUpdated, id)
	return s.GetAirport(ctx, id)
}

// DeleteAirport удаляет аэропорт.
func (s *AirportService) DeleteAirport(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM airports WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete airport: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("airport not found", nil)
	}

	s.cache.changed(ctx, redis.KeyPrefixAirport, models.EntityAirport, models.ReferenceDeleted, id)
	return nil
}

// GetAirport возвращает аэропорт по идентификатору.
func (s *AirportService) GetAirport(ctx context.Context, id int64) (*models.Airport, error) {
	query := "SELECT " + airportColumns + " FROM airports WHERE id = $1"

	airport := &models.Airport{}
	if err := s.db.QueryRowContext(ctx, query, id).Scan(
		&airport.ID, &airport.Name, &airport.Code, &airport.FromTaxToll, &airport.ToTaxToll,
		&airport.Logo, &airport.Active, &airport.CreatedAt, &airport.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("airport not found", err)
		}
		return nil, fmt.Errorf("failed to get airport: %w", err)
	}
	return airport, nil
}

// LookupAirport возвращает активный аэропорт для расчёта стоимости, используя кеш.
func (s *AirportService) LookupAirport(ctx context.Context, id int64) (*models.Airport, error) {
	key := redis.CacheKey(redis.KeyPrefixAirport, strconv.FormatInt(id, 10))

	var cached models.Airport
	if s.cache.get(ctx, key, &cached) {
		return &cached, nil
	}

	airport, err := s.GetAirport(ctx, id)
	if err != nil {
		return nil, err
	}
	if !airport.Active {
		return nil, apperror.NotFound("airport not found", nil)
	}

	s.cache.set(ctx, key, airport)
	return airport, nil
}

// ListAirports возвращает список аэропортов.
func (s *AirportService) ListAirports(ctx context.Context, limit, offset int) ([]*models.Airport, error) {
	limit, offset = normalizePage(limit, offset)
	query := "SELECT " + airportColumns + " FROM airports ORDER BY id LIMIT $1 OFFSET $2"

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list airports: %w", err)
	}
	defer rows.Close()

	airports := make([]*models.Airport, 0)
	for rows.Next() {
		airport := &models.Airport{}
		if err := rows.Scan(
			&airport.ID, &airport.Name, &airport.Code, &airport.FromTaxToll, &airport.ToTaxToll,
			&airport.Logo, &airport.Active, &airport.CreatedAt, &airport.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan airport: %w", err)
		}
		airports = append(airports, airport)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate airports: %w", err)
	}
	return airports, nil
}
