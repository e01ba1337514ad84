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

const carColumns = "id, name, model, num_of_passengers, small_luggage_capacity, large_luggage_capacity, is_child_seat, photo, active, created_at, updated_at"

// CarService управляет классами автомобилей и их тарифными сетками.
type CarService struct {
	db    *database.DB
	log   *logger.Logger
	cache referenceCache
}

// NewCarService создаёт сервис автомобилей.
func NewCarService(db *database.DB, log *logger.Logger, rdb *redis.Client, ttl time.Duration, events ReferenceEvents) *CarService {
	return &CarService{
		db:    db,
		log:   log,
		cache: newReferenceCache(rdb, log, ttl, events),
	}
}

func validateCar(req *models.CarRequest) error {
	errs := fieldErrors{}
	req.Name = strings.TrimSpace(req.Name)
	errs.check(req.Name != "", "name", "The name field is required.")
	errs.check(len(req.Name) <= 255, "name", "The name may not be greater than 255 characters.")
	errs.check(req.NumOfPassengers >= 1, "num_of_passengers", "The num of passengers must be at least 1.")
	errs.check(req.SmallLuggageCapacity >= 0, "small_luggage_capacity", "The small luggage capacity must be at least 0.")
	errs.check(req.LargeLuggageCapacity >= 0, "large_luggage_capacity", "The large luggage capacity must be at least 0.")
	validateSlabs(errs, req.Slabs)
	return errs.err()
}

func validateSlabs(errs fieldErrors, slabs []models.FareSlabRequest) {
	for i, slab := range slabs {
		prefix := fmt.Sprintf("slabs.%d.", i)
		errs.check(slab.SlabValue > 0, prefix+"slab_value", "The slab value must be greater than 0.")
		errs.check(slab.SlabUnit == models.SlabUnitMile || slab.SlabUnit == models.SlabUnitHour,
			prefix+"slab_unit", "The selected slab unit is invalid.")
		errs.check(slab.SlabType == models.SlabTypeDistance || slab.SlabType == models.SlabTypeHourlyService,
			prefix+"slab_type", "The selected slab type is invalid.")
		errs.check(slab.FareAmount >= 0, prefix+"fare_amount", "The fare amount must be at least 0.")
	}
}

// CreateCar создаёт автомобиль вместе с тарифной сеткой.
func (s *CarService) CreateCar(ctx context.Context, req *models.CarRequest) (*models.Car, error) {
	if err := validateCar(req); err != nil {
		return nil, err
	}

	now := time.Now()
	car := &models.Car{
		Name:                 req.Name,
		Model:                req.Model,
		NumOfPassengers:      req.NumOfPassengers,
		SmallLuggageCapacity: req.SmallLuggageCapacity,
		LargeLuggageCapacity: req.LargeLuggageCapacity,
		IsChildSeat:          req.IsChildSeat,
		Photo:                req.Photo,
		Active:               activeOrDefault(req.Active),
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO cars (name, model, num_of_passengers, small_luggage_capacity, large_luggage_capacity, is_child_seat, photo, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, query, car.Name, car.Model, car.NumOfPassengers, car.SmallLuggageCapacity,
		car.LargeLuggageCapacity, car.IsChildSeat, car.Photo, car.Active, car.CreatedAt, car.UpdatedAt).Scan(&car.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Conflict("car already exists", err)
		}
		return nil, fmt.Errorf("failed to create car: %w", err)
	}

	car.Slabs, err = insertSlabs(ctx, tx, car.ID, req.Slabs)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.log.WithField("car_id", car.ID).Info("Car created")
	s.cache.changed(ctx, redis.KeyPrefixCar, models.EntityCar, models.ReferenceCreated, car.ID)
	return car, nil
}

// UpdateCar обновляет автомобиль; если в запросе есть ступени, сетка заменяется целиком.
func (s *CarService) UpdateCar(ctx context.Context, id int64, req *models.CarRequest) (*models.Car, error) {
	if err := validateCar(req); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE cars
		SET name = $1, model = $2, num_of_passengers = $3, small_luggage_capacity = $4, large_luggage_capacity = $5,
			is_child_seat = $6, photo = $7, active = $8, updated_at = $9
		WHERE id = $10
	`
	result, err := tx.ExecContext(ctx, query, req.Name, req.Model, req.NumOfPassengers, req.SmallLuggageCapacity,
		req.LargeLuggageCapacity, req.IsChildSeat, req.Photo, activeOrDefault(req.Active), time.Now(), id)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Conflict("car already exists", err)
		}
		return nil, fmt.Errorf("failed to update car: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, apperror.NotFound("car not found", nil)
	}

	if req.Slabs != nil {
		if _, err := tx.ExecContext(ctx, "DELETE FROM car_fare_slabs WHERE car_id = $1", id); err != nil {
			return nil, fmt.Errorf("failed to delete car slabs: %w", err)
		}
		if _, err := insertSlabs(ctx, tx, id, req.Slabs); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.cache.changed(ctx, redis.KeyPrefixCar, models.EntityCar, models.ReferenceUpdated, id)
	return s.GetCar(ctx, id)
}

// DeleteCar удаляет автомобиль; ступени удаляются каскадно.
func (s *CarService) DeleteCar(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM cars WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete car: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("car not found", nil)
	}

	s.cache.changed(ctx, redis.KeyPrefixCar, models.EntityCar, models.ReferenceDeleted, id)
	return nil
}

// GetCar возвращает автомобиль со всей тарифной сеткой.
func (s *CarService) GetCar(ctx context.Context, id int64) (*models.Car, error) {
	query := "SELECT " + carColumns + " FROM cars WHERE id = $1"

	car, err := scanCar(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("car not found", err)
		}
		return nil, fmt.Errorf("failed to get car: %w", err)
	}

	car.Slabs, err = s.loadSlabs(ctx, id, false)
	if err != nil {
		return nil, err
	}
	return car, nil
}

// ListCars возвращает список автомобилей без тарифных сеток.
func (s *CarService) ListCars(ctx context.Context, limit, offset int) ([]*models.Car, error) {
	limit, offset = normalizePage(limit, offset)
	query := "SELECT " + carColumns + " FROM cars ORDER BY id LIMIT $1 OFFSET $2"

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list cars: %w", err)
	}
	defer rows.Close()

	cars := make([]*models.Car, 0)
	for rows.Next() {
		car, err := scanCar(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan car: %w", err)
		}
		cars = append(cars, car)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cars: %w", err)
	}
	return cars, nil
}

// ListSlabs возвращает тарифную сетку автомобиля.
func (s *CarService) ListSlabs(ctx context.Context, carID int64) ([]models.FareSlab, error) {
	if err := s.ensureCarExists(ctx, carID); err != nil {
		return nil, err
	}
	return s.loadSlabs(ctx, carID, false)
}

// ReplaceSlabs заменяет тарифную сетку автомобиля в одной транзакции.
func (s *CarService) ReplaceSlabs(ctx context.Context, carID int64, req *models.ReplaceSlabsRequest) ([]models.FareSlab, error) {
	errs := fieldErrors{}
	validateSlabs(errs, req.Slabs)
	if err := errs.err(); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM cars WHERE id = $1)", carID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check car: %w", err)
	}
	if !exists {
		return nil, apperror.NotFound("car not found", nil)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM car_fare_slabs WHERE car_id = $1", carID); err != nil {
		return nil, fmt.Errorf("failed to delete car slabs: %w", err)
	}
	slabs, err := insertSlabs(ctx, tx, carID, req.Slabs)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.log.WithFields(map[string]interface{}{"car_id": carID, "slabs": len(slabs)}).Info("Car slabs replaced")
	s.cache.changed(ctx, redis.KeyPrefixCar, models.EntityCar, models.ReferenceUpdated, carID)
	return slabs, nil
}

// SelectVehicle выбирает первый активный автомобиль (по id), подходящий по пассажирам, багажу и детскому креслу.
func (s *CarService) SelectVehicle(ctx context.Context, passengers, luggage int, childSeat bool) (*models.Car, error) {
	key := redis.CacheKey(redis.KeyPrefixCar, fmt.Sprintf("select:%d:%d:%t", passengers, luggage, childSeat))

	var cached models.Car
	if s.cache.get(ctx, key, &cached) {
		return &cached, nil
	}

	query := "SELECT " + carColumns + ` FROM cars
		WHERE active = TRUE
			AND num_of_passengers >= $1
			AND (small_luggage_capacity + large_luggage_capacity) >= $2
			AND is_child_seat = $3
		ORDER BY id
		LIMIT 1`

	car, err := scanCar(s.db.QueryRowContext(ctx, query, passengers, luggage, childSeat))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.Computation("no suitable car found", err)
		}
		return nil, fmt.Errorf("failed to select car: %w", err)
	}

	car.Slabs, err = s.loadSlabs(ctx, car.ID, true)
	if err != nil {
		return nil, err
	}

	s.cache.set(ctx, key, car)
	return car, nil
}

func (s *CarService) ensureCarExists(ctx context.Context, id int64) error {
	var exists bool
	if err := s.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM cars WHERE id = $1)", id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check car: %w", err)
	}
	if !exists {
		return apperror.NotFound("car not found", nil)
	}
	return nil
}

func (s *CarService) loadSlabs(ctx context.Context, carID int64, activeOnly bool) ([]models.FareSlab, error) {
	query := `
		SELECT id, car_id, slab_value, slab_unit, slab_type, fare_amount, active
		FROM car_fare_slabs
		WHERE car_id = $1
	`
	if activeOnly {
		query += " AND active = TRUE"
	}
	query += " ORDER BY slab_value, id"

	rows, err := s.db.QueryContext(ctx, query, carID)
	if err != nil {
		return nil, fmt.Errorf("failed to load car slabs: %w", err)
	}
	defer rows.Close()

	slabs := make([]models.FareSlab, 0)
	for rows.Next() {
		var slab models.FareSlab
		if err := rows.Scan(&slab.ID, &slab.CarID, &slab.SlabValue, &slab.SlabUnit, &slab.SlabType, &slab.FareAmount, &slab.Active); err != nil {
			return nil, fmt.Errorf("failed to scan car slab: %w", err)
		}
		slabs = append(slabs, slab)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate car slabs: %w", err)
	}
	return slabs, nil
}

func insertSlabs(ctx context.Context, tx *sql.Tx, carID int64, reqs []models.FareSlabRequest) ([]models.FareSlab, error) {
	query := `
		INSERT INTO car_fare_slabs (car_id, slab_value, slab_unit, slab_type, fare_amount, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	slabs := make([]models.FareSlab, 0, len(reqs))
	for _, req := range reqs {
		slab := models.FareSlab{
			CarID:      carID,
			SlabValue:  req.SlabValue,
			SlabUnit:   req.SlabUnit,
			SlabType:   req.SlabType,
			FareAmount: req.FareAmount,
			Active:     activeOrDefault(req.Active),
		}
		if err := tx.QueryRowContext(ctx, query, slab.CarID, slab.SlabValue, slab.SlabUnit, slab.SlabType,
			slab.FareAmount, slab.Active).Scan(&slab.ID); err != nil {
			return nil, fmt.Errorf("failed to insert car slab: %w", err)
		}
		slabs = append(slabs, slab)
	}
	return slabs, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCar(row rowScanner) (*models.Car, error) {
	car := &models.Car{}
	if err := row.Scan(
		&car.ID, &car.Name, &car.Model, &car.NumOfPassengers, &car.SmallLuggageCapacity, &car.LargeLuggageCapacity,
		&car.IsChildSeat, &car.Photo, &car.Active, &car.CreatedAt, &car.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return car, nil
}
