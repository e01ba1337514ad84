package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"taxi-booking/internal/apperror"
	"taxi-booking/internal/logger"
	"taxi-booking/internal/models"
	"taxi-booking/internal/services"
)

const (
	fareValidationMessage = "Validation failed."
	fareInternalMessage   = "An unexpected error occurred during fare calculation."
)

// FareHandler обслуживает расчёт стоимости поездки
type FareHandler struct {
	fares FareCalculator
	log   *logger.Logger
}

// NewFareHandler создает обработчик расчёта стоимости
func NewFareHandler(fares FareCalculator, log *logger.Logger) *FareHandler {
	return &FareHandler{fares: fares, log: log}
}

// Calculate POST /api/v1/fare-calculation
func (h *FareHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req models.FareRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log.WithError(err).Debug("Invalid fare request body")
		writeValidationErrors(w, fareValidationMessage, map[string][]string{
			"body": {"The request body must be a valid JSON object."},
		})
		return
	}
	normalizeFareRequest(&req)

	if fields := validateFareRequest(&req); len(fields) > 0 {
		writeValidationErrors(w, fareValidationMessage, fields)
		return
	}

	breakdown, err := h.fares.Calculate(r.Context(), &req)
	if err != nil {
		writeFareError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", renderBreakdown(breakdown))
}

// writeFareError отвечает на ошибку расчёта; сервис уже залогировал её вместе с параметрами запроса
func writeFareError(w http.ResponseWriter, err error) {
	if fields := apperror.FieldsOf(err); apperror.Is(err, apperror.KindValidation) && len(fields) > 0 {
		writeValidationErrors(w, fareValidationMessage, fields)
		return
	}
	writeServiceError(w, nil, err, fareInternalMessage)
}

func normalizeFareRequest(req *models.FareRequest) {
	req.ServiceType = models.ServiceType(strings.ToLower(strings.TrimSpace(string(req.ServiceType))))
	req.PickupLocation = strings.TrimSpace(req.PickupLocation)
	req.DropoffLocation = strings.TrimSpace(req.DropoffLocation)
	req.PickupDate = strings.TrimSpace(req.PickupDate)
	req.PickupTime = strings.TrimSpace(req.PickupTime)
}

func validateFareRequest(req *models.FareRequest) map[string][]string {
	fields := make(map[string][]string)
	add := func(field, msg string) {
		fields[field] = append(fields[field], msg)
	}

	switch {
	case req.ServiceType == "":
		add("service_type", "The service type field is required.")
	case !req.ServiceType.Valid():
		add("service_type", "The selected service type is invalid.")
	}

	needPickup := req.ServiceType == models.ServiceDoorToDoor || req.ServiceType == models.ServiceToAirport
	needDropoff := req.ServiceType == models.ServiceDoorToDoor || req.ServiceType == models.ServiceFromAirport
	if needPickup && req.PickupLocation == "" {
		add("pickup_location", "The pickup location field is required.")
	}
	if needDropoff && req.DropoffLocation == "" {
		add("dropoff_location", "The dropoff location field is required.")
	}
	if req.ServiceType.InvolvesAirport() {
		if req.AirportID == nil {
			add("airport_id", "The airport id field is required for airport transfers.")
		} else if *req.AirportID <= 0 {
			add("airport_id", "The airport id must be a positive integer.")
		}
	}

	if req.PickupDate == "" {
		add("pickup_date", "The pickup date field is required.")
	} else if _, ok := services.ParsePickupDate(req.PickupDate); !ok {
		add("pickup_date", "The pickup date must match the format YYYY-MM-DD.")
	}
	if req.PickupTime == "" {
		add("pickup_time", "The pickup time field is required.")
	} else if _, ok := services.ParsePickupTime(req.PickupTime); !ok {
		add("pickup_time", "The pickup time must match the format hh:mm AM/PM.")
	}

	if req.Adults < 1 {
		add("adults", "The adults must be at least 1.")
	}
	counts := map[string]int{
		"children":           req.Children,
		"luggage":            req.Luggage,
		"child_seats":        req.ChildSeats,
		"front_infant_seats": req.FrontInfantSeats,
		"rear_infant_seats":  req.RearInfantSeats,
		"booster_seats":      req.BoosterSeats,
		"stop_overs":         req.StopOvers,
	}
	for field, v := range counts {
		if v < 0 {
			add(field, fmt.Sprintf("The %s must be at least 0.", strings.ReplaceAll(field, "_", " ")))
		}
	}
	prices := map[string]float64{
		"front_price":    req.FrontPrice,
		"rear_price":     req.RearPrice,
		"booster_price":  req.BoosterPrice,
		"stopover_price": req.StopoverPrice,
	}
	for field, v := range prices {
		if v < 0 {
			add(field, fmt.Sprintf("The %s must be at least 0.", strings.ReplaceAll(field, "_", " ")))
		}
	}

	return fields
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func percent(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".") + "%"
}

// renderBreakdown строит плоский ответ: нулевые составляющие опускаются,
// базовый тариф, итог, расстояние, время в пути и сбор аэропорта есть всегда.
func renderBreakdown(b *models.FareBreakdown) map[string]interface{} {
	out := map[string]interface{}{
		"quote_id":         b.QuoteID.String(),
		"calculated_at":    b.CalculatedAt.Format(time.RFC3339),
		"service_type":     b.ServiceType,
		"pickup_location":  b.PickupLocation,
		"dropoff_location": b.DropoffLocation,
		"adults":           b.Adults,
		"children":         b.Children,
		"luggage":          b.Luggage,
		"vehicle_id":       b.VehicleID,
		"vehicle":          b.Vehicle,
		"distance":         fmt.Sprintf("%.2f miles", b.DistanceMiles),
		"duration":         b.Duration,
		"base_fare":        money(b.BaseFare),
		"airport_toll":     money(b.AirportToll),
		"total_fare":       money(b.TotalFare),
	}
	if b.AirportName != "" {
		out["airport_name"] = b.AirportName
	}

	optional := []struct {
		key   string
		value float64
	}{
		{"gratuity", b.Gratuity},
		{"tunnel_charge", b.TunnelCharge},
		{"extra_charges", b.ExtraCharges},
		{"holiday_charge", b.HolidayCharge},
		{"night_charge", b.NightCharge},
		{"hidden_night_charge", b.HiddenNightCharge},
		{"child_seat_cost", b.ChildSeatCost},
		{"stop_over_cost", b.StopOverCost},
	}
	for _, item := range optional {
		if item.value != 0 {
			out[item.key] = money(item.value)
		}
	}

	if b.Gratuity != 0 {
		out["gratuity_percentage"] = percent(b.GratuityPercentage)
	}
	if b.ExtraCharges != 0 && b.ExtraChargeArea != "" {
		out["extra_charge_area"] = b.ExtraChargeArea
	}
	if b.CardPaymentTotal != nil {
		out["card_payment_total"] = money(*b.CardPaymentTotal)
		out["card_discount_percentage"] = percent(b.CardDiscountPercentage)
	}

	return out
}
