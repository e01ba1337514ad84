package services

import (
	"context"
	"time"

	"taxi-booking/internal/apperror"
	"taxi-booking/internal/logger"
	"taxi-booking/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AirportLookup находит аэропорт для поездки из/в аэропорт
type AirportLookup interface {
	LookupAirport(ctx context.Context, id int64) (*models.Airport, error)
}

// DistanceProvider считает расстояние и время в пути
type DistanceProvider interface {
	Distance(ctx context.Context, origin, destination string) (*models.RouteEstimate, error)
}

// ExtraChargeLookup ищет доплату района по адресу назначения
type ExtraChargeLookup interface {
	FindForLocation(ctx context.Context, location string) (*models.ExtraCharge, error)
}

// VehicleSelector подбирает автомобиль и его тарифную сетку
type VehicleSelector interface {
	SelectVehicle(ctx context.Context, passengers, luggage int, childSeat bool) (*models.Car, error)
}

// SettingsProvider отдаёт общие настройки надбавок
type SettingsProvider interface {
	GetSettings(ctx context.Context) (*models.CommonSettings, error)
}

// FareEvents публикует рассчитанные стоимости
type FareEvents interface {
	PublishFareCalculated(breakdown *models.FareBreakdown) error
}

// FareService собирает справочные данные и рассчитывает стоимость поездки.
type FareService struct {
	airports   AirportLookup
	distance   DistanceProvider
	extras     ExtraChargeLookup
	vehicles   VehicleSelector
	settings   SettingsProvider
	calculator *FareCalculator
	events     FareEvents
	log        *logger.Logger
	now        func() time.Time
}

// NewFareService создаёт сервис расчёта стоимости.
func NewFareService(
	airports AirportLookup,
	distance DistanceProvider,
	extras ExtraChargeLookup,
	vehicles VehicleSelector,
	settings SettingsProvider,
	events FareEvents,
	log *logger.Logger,
) *FareService {
	return &FareService{
		airports:   airports,
		distance:   distance,
		extras:     extras,
		vehicles:   vehicles,
		settings:   settings,
		calculator: NewFareCalculator(),
		events:     events,
		log:        log,
		now:        time.Now,
	}
}

// Calculate выполняет расчёт: аэропорт, расстояние, доплата района, автомобиль, настройки.
// Любая ошибка шага прерывает расчёт целиком.
func (s *FareService) Calculate(ctx context.Context, req *models.FareRequest) (*models.FareBreakdown, error) {
	breakdown, err := s.calculate(ctx, req)
	if err != nil {
		s.log.WithError(err).WithFields(fareLogFields(req)).Error("Fare calculation failed")
		return nil, err
	}

	breakdown.QuoteID = uuid.New()
	breakdown.CalculatedAt = s.now().UTC()

	s.log.WithFields(fareLogFields(req)).WithFields(logrus.Fields{
		"quote_id":   breakdown.QuoteID,
		"vehicle_id": breakdown.VehicleID,
		"total_fare": breakdown.TotalFare,
	}).Info("Fare calculated")

	if s.events != nil {
		if err := s.events.PublishFareCalculated(breakdown); err != nil {
			s.log.WithError(err).WithField("quote_id", breakdown.QuoteID).Warn("Failed to publish fare calculated event")
		}
	}

	return breakdown, nil
}

func (s *FareService) calculate(ctx context.Context, req *models.FareRequest) (*models.FareBreakdown, error) {
	if req == nil {
		return nil, apperror.Validation("fare request is empty", nil)
	}

	ref := &models.FareReferenceData{}

	if req.ServiceType.InvolvesAirport() {
		if req.AirportID == nil {
			return nil, apperror.ValidationFields("Validation failed.", map[string][]string{
				"airport_id": {"The airport id field is required for airport transfers."},
			})
		}
		airport, err := s.airports.LookupAirport(ctx, *req.AirportID)
		if err != nil {
			return nil, err
		}
		ref.Airport = airport
	}

	origin, destination := EffectiveLocations(req, ref.Airport)

	route, err := s.distance.Distance(ctx, origin, destination)
	if err != nil {
		return nil, err
	}
	ref.Route = *route

	extra, err := s.extras.FindForLocation(ctx, destination)
	if err != nil {
		return nil, err
	}
	ref.ExtraCharge = extra

	vehicle, err := s.vehicles.SelectVehicle(ctx, req.Passengers(), req.Luggage, req.NeedsChildSeat())
	if err != nil {
		return nil, err
	}
	ref.Vehicle = vehicle

	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	ref.Settings = settings

	return s.calculator.Calculate(req, ref)
}

func fareLogFields(req *models.FareRequest) logrus.Fields {
	if req == nil {
		return logrus.Fields{}
	}
	fields := logrus.Fields{
		"service_type":     req.ServiceType,
		"pickup_location":  req.PickupLocation,
		"dropoff_location": req.DropoffLocation,
		"pickup_date":      req.PickupDate,
		"pickup_time":      req.PickupTime,
		"adults":           req.Adults,
		"children":         req.Children,
		"luggage":          req.Luggage,
		"stop_overs":       req.StopOvers,
	}
	if req.AirportID != nil {
		fields["airport_id"] = *req.AirportID
	}
	return fields
}
