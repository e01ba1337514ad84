package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"taxi-booking/internal/apperror"
	"taxi-booking/internal/database"
	"taxi-booking/internal/logger"
	"taxi-booking/internal/models"
	"taxi-booking/internal/redis"
)

const extraChargeColumns = "id, area_name, zip_codes, extra_charge, extra_toll_charge, active, created_at, updated_at"

// ExtraChargeService управляет доплатами по районам.
type ExtraChargeService struct {
	db    *database.DB
	log   *logger.Logger
	cache referenceCache
}

// NewExtraChargeService создаёт сервис доплат.
func NewExtraChargeService(db *database.DB, log *logger.Logger, rdb *redis.Client, ttl time.Duration, events ReferenceEvents) *ExtraChargeService {
	return &ExtraChargeService{
		db:    db,
		log:   log,
		cache: newReferenceCache(rdb, log, ttl, events),
	}
}

func validateExtraCharge(req *models.ExtraChargeRequest) error {
	errs := fieldErrors{}
	req.AreaName = strings.TrimSpace(req.AreaName)
	errs.check(req.AreaName != "", "area_name", "The area name field is required.")
	errs.check(len(req.AreaName) <= 255, "area_name", "The area name may not be greater than 255 characters.")
	errs.check(req.ExtraCharge >= 0, "extra_charge", "The extra charge must be at least 0.")
	errs.check(req.ExtraTollCharge >= 0, "extra_toll_charge", "The extra toll charge must be at least 0.")
	return errs.err()
}

// CreateExtraCharge создаёт доплату для района.
func (s *ExtraChargeService) CreateExtraCharge(ctx context.Context, req *models.ExtraChargeRequest) (*models.ExtraCharge, error) {
	if err := validateExtraCharge(req); err != nil {
		return nil, err
	}

	now := time.Now()
	charge := &models.ExtraCharge{
		AreaName:        req.AreaName,
		ZipCodes:        normalizeZipCodes(req.ZipCodes),
		ExtraCharge:     req.ExtraCharge,
		ExtraTollCharge: req.ExtraTollCharge,
		Active:          activeOrDefault(req.Active),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	query := `
		INSERT INTO extra_charges (area_name, zip_codes, extra_charge, extra_toll_charge, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query, charge.AreaName, charge.ZipCodes, charge.ExtraCharge, charge.ExtraTollCharge,
		charge.Active, charge.CreatedAt, charge.UpdatedAt).Scan(&charge.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Conflict("extra charge for this area already exists", err)
		}
		return nil, fmt.Errorf("failed to create extra charge: %w", err)
	}

	s.log.WithField("extra_charge_id", charge.ID).Info("Extra charge created")
	s.cache.changed(ctx, redis.KeyPrefixExtraCharges, models.EntityExtraCharge, models.ReferenceCreated, charge.ID)
	return charge, nil
}

// UpdateExtraCharge обновляет доплату.
func (s *ExtraChargeService) UpdateExtraCharge(ctx context.Context, id int64, req *models.ExtraChargeRequest) (*models.ExtraCharge, error) {
	if err := validateExtraCharge(req); err != nil {
		return nil, err
	}

	query := `
		UPDATE extra_charges
		SET area_name = $1, zip_codes = $2, extra_charge = $3, extra_toll_charge = $4, active = $5, updated_at = $6
		WHERE id = $7
	`
	result, err := s.db.ExecContext(ctx, query, req.AreaName, normalizeZipCodes(req.ZipCodes), req.ExtraCharge,
		req.ExtraTollCharge, activeOrDefault(req.Active), time.Now(), id)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Conflict("extra charge for this area already exists", err)
		}
		return nil, fmt.Errorf("failed to update extra charge: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, apperror.NotFound("extra charge not found", nil)
	}

	s.cache.changed(ctx, redis.KeyPrefixExtraCharges, models.EntityExtraCharge, models.ReferenceUpdated, id)
	return s.GetExtraCharge(ctx, id)
}

// DeleteExtraCharge удаляет доплату.
func (s *ExtraChargeService) DeleteExtraCharge(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM extra_charges WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete extra charge: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("extra charge not found", nil)
	}

	s.cache.changed(ctx, redis.KeyPrefixExtraCharges, models.EntityExtraCharge, models.ReferenceDeleted, id)
	return nil
}

// GetExtraCharge возвращает доплату по идентификатору.
func (s *ExtraChargeService) GetExtraCharge(ctx context.Context, id int64) (*models.ExtraCharge, error) {
	query := "SELECT " + extraChargeColumns + " FROM extra_charges WHERE id = $1"

	charge, err := scanExtraCharge(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("extra charge not found", err)
		}
		return nil, fmt.Errorf("failed to get extra charge: %w", err)
	}
	return charge, nil
}

// ListExtraCharges возвращает список доплат.
func (s *ExtraChargeService) ListExtraCharges(ctx context.Context, limit, offset int) ([]*models.ExtraCharge, error) {
	limit, offset = normalizePage(limit, offset)
	return s.query(ctx, "SELECT "+extraChargeColumns+" FROM extra_charges ORDER BY id LIMIT $1 OFFSET $2", limit, offset)
}

// FindForLocation ищет доплату для адреса: по вхождению названия района или по индексу.
// Отсутствие совпадения не ошибка: возвращается nil.
func (s *ExtraChargeService) FindForLocation(ctx context.Context, location string) (*models.ExtraCharge, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, nil
	}

	charges, err := s.activeCharges(ctx)
	if err != nil {
		return nil, err
	}
	return MatchExtraCharge(charges, location), nil
}

func (s *ExtraChargeService) activeCharges(ctx context.Context) ([]*models.ExtraCharge, error) {
	key := redis.CacheKey(redis.KeyPrefixExtraCharges, "active")

	var cached []*models.ExtraCharge
	if s.cache.get(ctx, key, &cached) {
		return cached, nil
	}

	charges, err := s.query(ctx, "SELECT "+extraChargeColumns+" FROM extra_charges WHERE active = TRUE ORDER BY id")
	if err != nil {
		return nil, err
	}

	s.cache.set(ctx, key, charges)
	return charges, nil
}

func (s *ExtraChargeService) query(ctx context.Context, query string, args ...interface{}) ([]*models.ExtraCharge, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list extra charges: %w", err)
	}
	defer rows.Close()

	charges := make([]*models.ExtraCharge, 0)
	for rows.Next() {
		charge, err := scanExtraCharge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan extra charge: %w", err)
		}
		charges = append(charges, charge)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate extra charges: %w", err)
	}
	return charges, nil
}

// MatchExtraCharge возвращает первую (по порядку списка) доплату, подходящую к адресу.
func MatchExtraCharge(charges []*models.ExtraCharge, location string) *models.ExtraCharge {
	loc := strings.ToLower(strings.TrimSpace(location))
	if loc == "" {
		return nil
	}
	tokens := make(map[string]struct{})
	for _, tok := range strings.FieldsFunc(loc, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		tokens[tok] = struct{}{}
	}

	for _, charge := range charges {
		if charge == nil || !charge.Active {
			continue
		}
		area := strings.ToLower(strings.TrimSpace(charge.AreaName))
		if area != "" && (strings.Contains(loc, area) || strings.Contains(area, loc)) {
			return charge
		}
		for _, zip := range charge.ZipCodeList() {
			if _, ok := tokens[strings.ToLower(zip)]; ok {
				return charge
			}
		}
	}
	return nil
}

func normalizeZipCodes(value string) string {
	charge := models.ExtraCharge{ZipCodes: value}
	return strings.Join(charge.ZipCodeList(), ",")
}

func scanExtraCharge(row rowScanner) (*models.ExtraCharge, error) {
	charge := &models.ExtraCharge{}
	if err := row.Scan(
		&charge.ID, &charge.AreaName, &charge.ZipCodes, &charge.ExtraCharge, &charge.ExtraTollCharge,
		&charge.Active, &charge.CreatedAt, &charge.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return charge, nil
}
