package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"taxi-booking/internal/apperror"
	"taxi-booking/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

var (
	carRowColumns  = []string{"id", "name", "model", "num_of_passengers", "small_luggage_capacity", "large_luggage_capacity", "is_child_seat", "photo", "active", "created_at", "updated_at"}
	slabRowColumns = []string{"id", "car_id", "slab_value", "slab_unit", "slab_type", "fare_amount", "active"}
)

func sedanSlabRequests() []models.FareSlabRequest {
	return []models.FareSlabRequest{
		{SlabValue: 6, SlabUnit: models.SlabUnitMile, SlabType: models.SlabTypeDistance, FareAmount: 5},
		{SlabValue: 9, SlabUnit: models.SlabUnitMile, SlabType: models.SlabTypeDistance, FareAmount: 4},
	}
}

func TestCarService_CreateCar(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	events := &recordingEvents{}
	service := NewCarService(db, newTestLogger(), nil, time.Minute, events)

	req := &models.CarRequest{Name: "Sedan", Model: "Camry", NumOfPassengers: 4, SmallLuggageCapacity: 2, LargeLuggageCapacity: 2, Slabs: sedanSlabRequests()}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO cars").
		WithArgs("Sedan", "Camry", 4, 2, 2, false, "", true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectQuery("INSERT INTO car_fare_slabs").
		WithArgs(int64(11), 6.0, "mile", "Distance", 5.0, true).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery("INSERT INTO car_fare_slabs").
		WithArgs(int64(11), 9.0, "mile", "Distance", 4.0, true).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectCommit()

	car, err := service.CreateCar(context.Background(), req)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if car.ID != 11 || len(car.Slabs) != 2 || car.Slabs[1].ID != 2 {
		t.Fatalf("unexpected car: %+v", car)
	}
	if len(events.changes) != 1 || events.changes[0].entity != models.EntityCar {
		t.Fatalf("expected car event, got %+v", events.changes)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCarService_CreateCar_Validation(t *testing.T) {
	db, _ := newMockDB(t)
	defer db.Close()

	service := NewCarService(db, newTestLogger(), nil, time.Minute, nil)

	req := &models.CarRequest{
		Name:            "Van",
		NumOfPassengers: 0,
		Slabs:           []models.FareSlabRequest{{SlabValue: 0, SlabUnit: "km", SlabType: "Flat", FareAmount: -1}},
	}
	_, err := service.CreateCar(context.Background(), req)
	if !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields := apperror.FieldsOf(err)
	for _, key := range []string{"num_of_passengers", "slabs.0.slab_value", "slabs.0.slab_unit", "slabs.0.slab_type", "slabs.0.fare_amount"} {
		if len(fields[key]) == 0 {
			t.Fatalf("expected field error for %s, got %v", key, fields)
		}
	}
}

func TestCarService_ReplaceSlabs(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	service := NewCarService(db, newTestLogger(), nil, time.Minute, nil)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec("DELETE FROM car_fare_slabs").WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectQuery("INSERT INTO car_fare_slabs").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(21))
	mock.ExpectQuery("INSERT INTO car_fare_slabs").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(22))
	mock.ExpectCommit()

	slabs, err := service.ReplaceSlabs(context.Background(), 4, &models.ReplaceSlabsRequest{Slabs: sedanSlabRequests()})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if len(slabs) != 2 || slabs[0].CarID != 4 || slabs[0].ID != 21 {
		t.Fatalf("unexpected slabs: %+v", slabs)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCarService_ReplaceSlabs_CarMissing(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	service := NewCarService(db, newTestLogger(), nil, time.Minute, nil)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	_, err := service.ReplaceSlabs(context.Background(), 99, &models.ReplaceSlabsRequest{Slabs: sedanSlabRequests()})
	if !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCarService_SelectVehicle(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	service := NewCarService(db, newTestLogger(), nil, time.Minute, nil)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM cars\\s+WHERE active = TRUE").
		WithArgs(3, 2, true).
		WillReturnRows(sqlmock.NewRows(carRowColumns).
			AddRow(5, "Family SUV", "Highlander", 6, 2, 3, true, "", true, now, now))
	mock.ExpectQuery("SELECT (.+) FROM car_fare_slabs").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(slabRowColumns).
			AddRow(1, 5, 6.0, "mile", "Distance", 5.0, true).
			AddRow(2, 5, 100.0, "mile", "Distance", 3.5, true))

	car, err := service.SelectVehicle(context.Background(), 3, 2, true)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if car.ID != 5 || len(car.Slabs) != 2 || car.Slabs[1].SlabType != models.SlabTypeDistance {
		t.Fatalf("unexpected car: %+v", car)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCarService_SelectVehicle_NoMatch(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	service := NewCarService(db, newTestLogger(), nil, time.Minute, nil)

	mock.ExpectQuery("SELECT (.+) FROM cars").
		WithArgs(12, 20, false).
		WillReturnError(sql.ErrNoRows)

	_, err := service.SelectVehicle(context.Background(), 12, 20, false)
	if !apperror.Is(err, apperror.KindComputation) {
		t.Fatalf("expected computation error, got %v", err)
	}
	if err.Error() != "no suitable car found" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}

func TestCarService_SelectVehicle_Cached(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	rdb, _ := newTestRedis(t)
	service := NewCarService(db, newTestLogger(), rdb, time.Minute, nil)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM cars").
		WithArgs(2, 1, false).
		WillReturnRows(sqlmock.NewRows(carRowColumns).
			AddRow(1, "Sedan", "Camry", 4, 2, 2, false, "", true, now, now))
	mock.ExpectQuery("SELECT (.+) FROM car_fare_slabs").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(slabRowColumns).AddRow(1, 1, 6.0, "mile", "Distance", 5.0, true))

	ctx := context.Background()
	if _, err := service.SelectVehicle(ctx, 2, 1, false); err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	car, err := service.SelectVehicle(ctx, 2, 1, false)
	if err != nil {
		t.Fatalf("expected cached success, got error: %v", err)
	}
	if car.Name != "Sedan" || len(car.Slabs) != 1 {
		t.Fatalf("unexpected cached car: %+v", car)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCarService_GetCar_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	service := NewCarService(db, newTestLogger(), nil, time.Minute, nil)

	mock.ExpectQuery("SELECT (.+) FROM cars WHERE id").
		WithArgs(int64(8)).
		WillReturnError(sql.ErrNoRows)

	if _, err := service.GetCar(context.Background(), 8); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestCarService_DeleteCar_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	service := NewCarService(db, newTestLogger(), nil, time.Minute, nil)

	mock.ExpectExec("DELETE FROM cars").WithArgs(int64(8)).WillReturnResult(sqlmock.NewResult(0, 0))
	if err := service.DeleteCar(context.Background(), 8); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestCarService_UpdateCar_ReplacesSlabs(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	service := NewCarService(db, newTestLogger(), nil, time.Minute, nil)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE cars").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM car_fare_slabs").WithArgs(int64(2)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO car_fare_slabs").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(30))
	mock.ExpectQuery("INSERT INTO car_fare_slabs").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(31))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT (.+) FROM cars WHERE id").
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(carRowColumns).AddRow(2, "Sedan", "Camry", 4, 2, 2, false, "", true, now, now))
	mock.ExpectQuery("SELECT (.+) FROM car_fare_slabs").
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(slabRowColumns).
			AddRow(30, 2, 6.0, "mile", "Distance", 5.0, true).
			AddRow(31, 2, 9.0, "mile", "Distance", 4.0, true))

	req := &models.CarRequest{Name: "Sedan", Model: "Camry", NumOfPassengers: 4, Slabs: sedanSlabRequests()}
	car, err := service.UpdateCar(context.Background(), 2, req)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if len(car.Slabs) != 2 || car.Slabs[0].ID != 30 {
		t.Fatalf("unexpected slabs: %+v", car.Slabs)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
