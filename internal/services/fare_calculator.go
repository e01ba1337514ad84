package services

import (
	"math"
	"sort"

	"taxi-booking/internal/apperror"
	"taxi-booking/internal/models"
)

// FareCalculator рассчитывает стоимость поездки по уже полученным справочным данным.
// Не хранит состояния и не меняет входные данные.
type FareCalculator struct{}

// NewFareCalculator создаёт калькулятор стоимости.
func NewFareCalculator() *FareCalculator {
	return &FareCalculator{}
}

// EffectiveLocations подставляет название аэропорта вместо точки подачи или назначения.
func EffectiveLocations(req *models.FareRequest, airport *models.Airport) (string, string) {
	pickup, dropoff := req.PickupLocation, req.DropoffLocation
	if airport == nil {
		return pickup, dropoff
	}
	switch req.ServiceType {
	case models.ServiceFromAirport:
		pickup = airport.Name
	case models.ServiceToAirport:
		dropoff = airport.Name
	}
	return pickup, dropoff
}

// AirportToll возвращает сбор аэропорта для типа услуги.
func AirportToll(serviceType models.ServiceType, airport *models.Airport) float64 {
	if airport == nil {
		return 0
	}
	switch serviceType {
	case models.ServiceFromAirport:
		return airport.FromTaxToll
	case models.ServiceToAirport:
		return airport.ToTaxToll
	}
	return 0
}

// DistanceSlabFare считает базовую стоимость по ступеням тарифа автомобиля.
// Расстояние сверх последней ступени тарифицируется по её ставке.
func DistanceSlabFare(distance float64, slabs []models.FareSlab) (float64, error) {
	brackets := make([]models.FareSlab, 0, len(slabs))
	for _, slab := range slabs {
		if slab.Active && slab.SlabType == models.SlabTypeDistance {
			brackets = append(brackets, slab)
		}
	}
	if len(brackets) == 0 {
		return 0, apperror.Configuration("vehicle has no distance pricing defined", nil)
	}
	sort.SliceStable(brackets, func(i, j int) bool {
		return brackets[i].SlabValue < brackets[j].SlabValue
	})

	remaining := math.Max(distance, 0)
	prevUpper := 0.0
	fare := 0.0
	for _, b := range brackets {
		if remaining <= 0 {
			break
		}
		width := math.Max(b.SlabValue-prevUpper, 0)
		portion := math.Min(remaining, width)
		fare += portion * b.FareAmount
		remaining -= portion
		prevUpper = b.SlabValue
	}
	if remaining > 0 {
		fare += remaining * brackets[len(brackets)-1].FareAmount
	}

	return round2(fare), nil
}

// Calculate собирает детализацию стоимости поездки.
func (c *FareCalculator) Calculate(req *models.FareRequest, ref *models.FareReferenceData) (*models.FareBreakdown, error) {
	if req == nil || ref == nil {
		return nil, apperror.Validation("fare request is empty", nil)
	}
	if req.ServiceType.InvolvesAirport() && ref.Airport == nil {
		return nil, apperror.NotFound("airport not found", nil)
	}
	if ref.Vehicle == nil {
		return nil, apperror.Computation("no suitable car found", nil)
	}
	if ref.Settings == nil {
		return nil, apperror.Configuration("common settings are not configured", nil)
	}
	settings := ref.Settings

	airportToll := AirportToll(req.ServiceType, ref.Airport)

	extraCharges := 0.0
	extraArea := ""
	if ref.ExtraCharge != nil {
		extraCharges = ref.ExtraCharge.Total()
		extraArea = ref.ExtraCharge.AreaName
	}

	baseFare, err := DistanceSlabFare(ref.Route.DistanceMiles, ref.Vehicle.Slabs)
	if err != nil {
		return nil, err
	}

	childSeatCost := req.FrontPrice + req.RearPrice + req.BoosterPrice
	stopOverCost := req.StopoverPrice

	gratuityPct := models.Amount(settings.GratuityPercentage)
	gratuity := 0.0
	if gratuityPct > 0 {
		gratuity = baseFare * gratuityPct / 100
	}

	tunnel := math.Max(models.Amount(settings.TunnelCharge), 0)

	holiday := 0.0
	if date, ok := ParsePickupDate(req.PickupDate); ok && settings.IsHoliday(date.Format(DateLayout)) {
		holiday = models.Amount(settings.HolidaySurcharge)
	}

	night := 0.0
	if InTimeWindow(req.PickupTime, models.Text(settings.NightStart), models.Text(settings.NightEnd)) {
		night = models.Amount(settings.NightCharge)
	}
	hiddenNight := 0.0
	if InTimeWindow(req.PickupTime, models.Text(settings.HiddenNightStart), models.Text(settings.HiddenNightEnd)) {
		hiddenNight = models.Amount(settings.HiddenNightCharge)
	}

	total := baseFare + gratuity + tunnel + airportToll + extraCharges +
		holiday + night + hiddenNight + childSeatCost + stopOverCost

	pickup, dropoff := EffectiveLocations(req, ref.Airport)
	breakdown := &models.FareBreakdown{
		ServiceType:        req.ServiceType,
		PickupLocation:     pickup,
		DropoffLocation:    dropoff,
		Adults:             req.Adults,
		Children:           req.Children,
		Luggage:            req.Luggage,
		VehicleID:          ref.Vehicle.ID,
		Vehicle:            ref.Vehicle.Name,
		DistanceMiles:      round2(ref.Route.DistanceMiles),
		Duration:           ref.Route.Duration,
		BaseFare:           baseFare,
		GratuityPercentage: gratuityPct,
		Gratuity:           round2(gratuity),
		TunnelCharge:       round2(tunnel),
		AirportToll:        round2(airportToll),
		ExtraChargeArea:    extraArea,
		ExtraCharges:       round2(extraCharges),
		HolidayCharge:      round2(holiday),
		NightCharge:        round2(night),
		HiddenNightCharge:  round2(hiddenNight),
		ChildSeatCost:      round2(childSeatCost),
		StopOverCost:       round2(stopOverCost),
		TotalFare:          round2(total),
	}
	if ref.Airport != nil && req.ServiceType.InvolvesAirport() {
		breakdown.AirportName = ref.Airport.Name
	}

	if pct := models.Amount(settings.CreditCardDiscountPercentage); pct > 0 {
		cardTotal := round2(total - total*pct/100)
		breakdown.CardDiscountPercentage = pct
		breakdown.CardPaymentTotal = &cardTotal
	}

	return breakdown, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
