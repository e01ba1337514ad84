package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"taxi-booking/internal/apperror"
	"taxi-booking/internal/models"

	"github.com/google/uuid"
)

type fareStubs struct {
	calls []string

	airport    *models.Airport
	airportErr error
	route      *models.RouteEstimate
	routeErr   error
	origin     string
	dest       string
	extra      *models.ExtraCharge
	extraLoc   string
	vehicle    *models.Car
	vehicleErr error
	passengers int
	childSeat  bool
	settings   *models.CommonSettings

	published  []*models.FareBreakdown
	publishErr error
}

func (f *fareStubs) LookupAirport(ctx context.Context, id int64) (*models.Airport, error) {
	f.calls = append(f.calls, "airport")
	return f.airport, f.airportErr
}

func (f *fareStubs) Distance(ctx context.Context, origin, destination string) (*models.RouteEstimate, error) {
	f.calls = append(f.calls, "distance")
	f.origin, f.dest = origin, destination
	return f.route, f.routeErr
}

func (f *fareStubs) FindForLocation(ctx context.Context, location string) (*models.ExtraCharge, error) {
	f.calls = append(f.calls, "extra")
	f.extraLoc = location
	return f.extra, nil
}

func (f *fareStubs) SelectVehicle(ctx context.Context, passengers, luggage int, childSeat bool) (*models.Car, error) {
	f.calls = append(f.calls, "vehicle")
	f.passengers, f.childSeat = passengers, childSeat
	return f.vehicle, f.vehicleErr
}

func (f *fareStubs) GetSettings(ctx context.Context) (*models.CommonSettings, error) {
	f.calls = append(f.calls, "settings")
	if f.settings == nil {
		return nil, apperror.Configuration("common settings are not configured", nil)
	}
	return f.settings, nil
}

func (f *fareStubs) PublishFareCalculated(b *models.FareBreakdown) error {
	f.published = append(f.published, b)
	return f.publishErr
}

func newFareStubs() *fareStubs {
	ref := testReference()
	return &fareStubs{
		airport:  &models.Airport{ID: 1, Name: "JFK Airport", FromTaxToll: 8, ToTaxToll: 4, Active: true},
		route:    &ref.Route,
		vehicle:  ref.Vehicle,
		settings: ref.Settings,
	}
}

func newTestFareService(stubs *fareStubs) *FareService {
	svc := NewFareService(stubs, stubs, stubs, stubs, stubs, stubs, newTestLogger())
	svc.now = func() time.Time { return time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestFareService_Calculate_DoorToDoor(t *testing.T) {
	stubs := newFareStubs()
	svc := newTestFareService(stubs)

	b, err := svc.Calculate(context.Background(), testFareRequest())
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if b.TotalFare != 60.75 {
		t.Fatalf("expected total 60.75, got %.2f", b.TotalFare)
	}
	if b.QuoteID == uuid.Nil || !b.CalculatedAt.Equal(time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected quote id and timestamp, got %s %s", b.QuoteID, b.CalculatedAt)
	}

	want := []string{"distance", "extra", "vehicle", "settings"}
	if len(stubs.calls) != len(want) {
		t.Fatalf("unexpected calls: %v", stubs.calls)
	}
	for i := range want {
		if stubs.calls[i] != want[i] {
			t.Fatalf("unexpected call order: %v", stubs.calls)
		}
	}
	if stubs.extraLoc != "200 Elm St, Shelbyville" {
		t.Fatalf("expected extra charge lookup by dropoff, got %q", stubs.extraLoc)
	}
	if len(stubs.published) != 1 || stubs.published[0].QuoteID != b.QuoteID {
		t.Fatalf("expected fare event published")
	}
}

func TestFareService_Calculate_FromAirportOrder(t *testing.T) {
	stubs := newFareStubs()
	svc := newTestFareService(stubs)

	req := testFareRequest()
	req.ServiceType = models.ServiceFromAirport
	req.PickupLocation = ""
	req.Children = 1
	airportID := int64(1)
	req.AirportID = &airportID

	b, err := svc.Calculate(context.Background(), req)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if stubs.calls[0] != "airport" || stubs.calls[1] != "distance" {
		t.Fatalf("expected airport lookup before distance, got %v", stubs.calls)
	}
	if stubs.origin != "JFK Airport" || stubs.dest != "200 Elm St, Shelbyville" {
		t.Fatalf("unexpected distance query: %q -> %q", stubs.origin, stubs.dest)
	}
	if stubs.passengers != 3 || !stubs.childSeat {
		t.Fatalf("unexpected vehicle criteria: %d %v", stubs.passengers, stubs.childSeat)
	}
	if b.AirportToll != 8 {
		t.Fatalf("expected airport toll 8, got %.2f", b.AirportToll)
	}
}

func TestFareService_Calculate_ToAirportUsesAirportAsDestination(t *testing.T) {
	stubs := newFareStubs()
	svc := newTestFareService(stubs)

	req := testFareRequest()
	req.ServiceType = models.ServiceToAirport
	req.DropoffLocation = ""
	airportID := int64(1)
	req.AirportID = &airportID

	if _, err := svc.Calculate(context.Background(), req); err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if stubs.dest != "JFK Airport" || stubs.extraLoc != "JFK Airport" {
		t.Fatalf("expected airport as destination, got %q / %q", stubs.dest, stubs.extraLoc)
	}
}

func TestFareService_Calculate_AirportMissingID(t *testing.T) {
	stubs := newFareStubs()
	svc := newTestFareService(stubs)

	req := testFareRequest()
	req.ServiceType = models.ServiceToAirport

	_, err := svc.Calculate(context.Background(), req)
	if !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(stubs.calls) != 0 {
		t.Fatalf("expected no collaborator calls, got %v", stubs.calls)
	}
}

func TestFareService_Calculate_AbortsOnFailure(t *testing.T) {
	cases := []struct {
		name  string
		setup func(*fareStubs, *models.FareRequest)
		kind  apperror.Kind
		calls int
	}{
		{
			name: "airport not found",
			setup: func(s *fareStubs, r *models.FareRequest) {
				id := int64(9)
				r.ServiceType = models.ServiceFromAirport
				r.AirportID = &id
				s.airportErr = apperror.NotFound("airport not found", nil)
			},
			kind:  apperror.KindNotFound,
			calls: 1,
		},
		{
			name: "distance upstream",
			setup: func(s *fareStubs, r *models.FareRequest) {
				s.routeErr = apperror.Upstream("distance provider request failed", errors.New("timeout"))
			},
			kind:  apperror.KindUpstream,
			calls: 1,
		},
		{
			name: "no vehicle",
			setup: func(s *fareStubs, r *models.FareRequest) {
				s.vehicleErr = apperror.Computation("no suitable car found", nil)
			},
			kind:  apperror.KindComputation,
			calls: 3,
		},
		{
			name: "no settings",
			setup: func(s *fareStubs, r *models.FareRequest) {
				s.settings = nil
			},
			kind:  apperror.KindConfiguration,
			calls: 4,
		},
		{
			name: "no slabs",
			setup: func(s *fareStubs, r *models.FareRequest) {
				s.vehicle = &models.Car{ID: 1, Name: "Bare"}
			},
			kind:  apperror.KindConfiguration,
			calls: 4,
		},
	}

	for _, tc := range cases {
		stubs := newFareStubs()
		req := testFareRequest()
		tc.setup(stubs, req)

		_, err := newTestFareService(stubs).Calculate(context.Background(), req)
		if !apperror.Is(err, tc.kind) {
			t.Fatalf("%s: expected %s error, got %v", tc.name, tc.kind, err)
		}
		if len(stubs.calls) != tc.calls {
			t.Fatalf("%s: expected %d calls, got %v", tc.name, tc.calls, stubs.calls)
		}
		if len(stubs.published) != 0 {
			t.Fatalf("%s: expected no event on failure", tc.name)
		}
	}
}

func TestFareService_Calculate_PublishFailureIgnored(t *testing.T) {
	stubs := newFareStubs()
	stubs.publishErr = errors.New("kafka down")

	b, err := newTestFareService(stubs).Calculate(context.Background(), testFareRequest())
	if err != nil {
		t.Fatalf("expected publish failure to be ignored, got %v", err)
	}
	if b == nil || b.TotalFare != 60.75 {
		t.Fatalf("unexpected breakdown: %+v", b)
	}
}
