package models

import (
	"time"

	"github.com/google/uuid"
)

// ServiceType форма поездки: от двери до двери, из аэропорта или в аэропорт
type ServiceType string

const (
	ServiceDoorToDoor  ServiceType = "door_to_door"
	ServiceFromAirport ServiceType = "from_airport"
	ServiceToAirport   ServiceType = "to_airport"
)

// Valid проверяет, что тип услуги известен
func (s ServiceType) Valid() bool {
	switch s {
	case ServiceDoorToDoor, ServiceFromAirport, ServiceToAirport:
		return true
	}
	return false
}

// InvolvesAirport сообщает, нужен ли аэропорт для этого типа услуги
func (s ServiceType) InvolvesAirport() bool {
	return s == ServiceFromAirport || s == ServiceToAirport
}

// FareRequest запрос на расчёт стоимости поездки
type FareRequest struct {
	ServiceType      ServiceType `json:"service_type"`
	PickupLocation   string      `json:"pickup_location"`
	DropoffLocation  string      `json:"dropoff_location"`
	AirportID        *int64      `json:"airport_id,omitempty"`
	PickupDate       string      `json:"pickup_date"` // YYYY-MM-DD
	PickupTime       string      `json:"pickup_time"` // hh:mm AM/PM
	Adults           int         `json:"adults"`
	Children         int         `json:"children"`
	Luggage          int         `json:"luggage"`
	ChildSeats       int         `json:"child_seats"`
	FrontInfantSeats int         `json:"front_infant_seats"`
	RearInfantSeats  int         `json:"rear_infant_seats"`
	BoosterSeats     int         `json:"booster_seats"`
	StopOvers        int         `json:"stop_overs"`
	FrontPrice       float64     `json:"front_price"`
	RearPrice        float64     `json:"rear_price"`
	BoosterPrice     float64     `json:"booster_price"`
	StopoverPrice    float64     `json:"stopover_price"`
}

// Passengers общее число пассажиров
func (r *FareRequest) Passengers() int {
	return r.Adults + r.Children
}

// NeedsChildSeat автомобиль с детским креслом нужен, если едут дети
func (r *FareRequest) NeedsChildSeat() bool {
	return r.Children > 0
}

// RouteEstimate расстояние и время в пути от провайдера расстояний
type RouteEstimate struct {
	DistanceMiles   float64 `json:"distance_miles"`
	Duration        string  `json:"duration"`
	DurationSeconds int64   `json:"duration_seconds"`
}

// FareReferenceData все справочные данные, уже полученные для одного расчёта
type FareReferenceData struct {
	Airport     *Airport
	Route       RouteEstimate
	ExtraCharge *ExtraCharge
	Vehicle     *Car
	Settings    *CommonSettings
}

// FareBreakdown детализированная стоимость поездки
type FareBreakdown struct {
	QuoteID      uuid.UUID `json:"quote_id"`
	CalculatedAt time.Time `json:"calculated_at"`

	ServiceType     ServiceType `json:"service_type"`
	PickupLocation  string      `json:"pickup_location"`
	DropoffLocation string      `json:"dropoff_location"`
	AirportName     string      `json:"airport_name,omitempty"`
	Adults          int         `json:"adults"`
	Children        int         `json:"children"`
	Luggage         int         `json:"luggage"`
	VehicleID       int64       `json:"vehicle_id"`
	Vehicle         string      `json:"vehicle"`

	DistanceMiles float64 `json:"distance_miles"`
	Duration      string  `json:"duration"`

	BaseFare           float64 `json:"base_fare"`
	GratuityPercentage float64 `json:"gratuity_percentage"`
	Gratuity           float64 `json:"gratuity"`
	TunnelCharge       float64 `json:"tunnel_charge"`
	AirportToll        float64 `json:"airport_toll"`
	ExtraChargeArea    string  `json:"extra_charge_area,omitempty"`
	ExtraCharges       float64 `json:"extra_charges"`
	HolidayCharge      float64 `json:"holiday_charge"`
	NightCharge        float64 `json:"night_charge"`
	HiddenNightCharge  float64 `json:"hidden_night_charge"`
	ChildSeatCost      float64 `json:"child_seat_cost"`
	StopOverCost       float64 `json:"stop_over_cost"`
	TotalFare          float64 `json:"total_fare"`

	CardDiscountPercentage float64  `json:"card_discount_percentage"`
	CardPaymentTotal       *float64 `json:"card_payment_total,omitempty"`
}
