package handlers

import (
	"context"

	"taxi-booking/internal/models"
	"taxi-booking/internal/services"
)

// ----- Fare -----

type FareCalculator interface {
	Calculate(ctx context.Context, req *models.FareRequest) (*models.FareBreakdown, error)
}

// ----- Reference data -----

type AirportService interface {
	CreateAirport(ctx context.Context, req *models.AirportRequest) (*models.Airport, error)
	UpdateAirport(ctx context.Context, id int64, req *models.AirportRequest) (*models.Airport, error)
	DeleteAirport(ctx context.Context, id int64) error
	GetAirport(ctx context.Context, id int64) (*models.Airport, error)
	ListAirports(ctx context.Context, limit, offset int) ([]*models.Airport, error)
}

type CarService interface {
	CreateCar(ctx context.Context, req *models.CarRequest) (*models.Car, error)
	UpdateCar(ctx context.Context, id int64, req *models.CarRequest) (*models.Car, error)
	DeleteCar(ctx context.Context, id int64) error
	GetCar(ctx context.Context, id int64) (*models.Car, error)
	ListCars(ctx context.Context, limit, offset int) ([]*models.Car, error)
	ListSlabs(ctx context.Context, carID int64) ([]models.FareSlab, error)
	ReplaceSlabs(ctx context.Context, carID int64, req *models.ReplaceSlabsRequest) ([]models.FareSlab, error)
}

type ExtraChargeService interface {
	CreateExtraCharge(ctx context.Context, req *models.ExtraChargeRequest) (*models.ExtraCharge, error)
	UpdateExtraCharge(ctx context.Context, id int64, req *models.ExtraChargeRequest) (*models.ExtraCharge, error)
	DeleteExtraCharge(ctx context.Context, id int64) error
	GetExtraCharge(ctx context.Context, id int64) (*models.ExtraCharge, error)
	ListExtraCharges(ctx context.Context, limit, offset int) ([]*models.ExtraCharge, error)
}

type SMSNumberService interface {
	CreateSMSNumber(ctx context.Context, req *models.SMSNumberRequest) (*models.SMSNumber, error)
	UpdateSMSNumber(ctx context.Context, id int64, req *models.SMSNumberRequest) (*models.SMSNumber, error)
	DeleteSMSNumber(ctx context.Context, id int64) error
	GetSMSNumber(ctx context.Context, id int64) (*models.SMSNumber, error)
	ListSMSNumbers(ctx context.Context, limit, offset int) ([]*models.SMSNumber, error)
}

type GoogleAPIKeyService interface {
	CreateKey(ctx context.Context, req *models.GoogleAPIKeyRequest) (*models.GoogleAPIKey, error)
	UpdateKey(ctx context.Context, id int64, req *models.GoogleAPIKeyRequest) (*models.GoogleAPIKey, error)
	DeleteKey(ctx context.Context, id int64) error
	GetKey(ctx context.Context, id int64) (*models.GoogleAPIKey, error)
	ListKeys(ctx context.Context, limit, offset int) ([]*models.GoogleAPIKey, error)
}

type SettingsService interface {
	GetSettings(ctx context.Context) (*models.CommonSettings, error)
	UpsertSettings(ctx context.Context, req *models.CommonSettings) (*models.CommonSettings, error)
}

// ----- Rate limit -----

// MiddlewareLimiter описывает контракт для rate limiter.
type MiddlewareLimiter interface {
	Allow(ctx context.Context, key string) services.RateDecision
	Enabled() bool
}

// RateLimitStatusProvider расширяет интерфейс для эндпоинта статуса.
type RateLimitStatusProvider interface {
	MiddlewareLimiter
	Usage(ctx context.Context, key string) (services.RateDecision, error)
}

// ----- Health -----

type DBHealth interface {
	Health() error
}

type RedisHealth interface {
	Health(ctx context.Context) error
}
