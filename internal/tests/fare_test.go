package tests

import (
	"context"
	"testing"

	"ridelink/internal/domain"
	"ridelink/internal/service"
)

// ──────────────────────────────────────────────
// FARE ESTIMATION
// ──────────────────────────────────────────────

func newFareFixture() (*service.FareService, *MockLocationStore, *MockRequestRepository) {
	locationStore := NewMockLocationStore()
	requestRepo := NewMockRequestRepository()
	return service.NewFareService(locationStore, requestRepo), locationStore, requestRepo
}

func TestFare_PerVehicleRates(t *testing.T) {
	t.Parallel()

	svc, locationStore, _ := newFareFixture()
	ctx := context.Background()

	// Plenty of supply so the multiplier stays at 1.0.
	for _, id := range []string{"r1", "r2", "r3"} {
		_ = locationStore.UpdateLocation(ctx, id, fortLat, fortLng)
	}

	bike := svc.Estimate(ctx, service.EstimateRequest{
		VehicleType: domain.VehicleBike,
		PickupLat:   fortLat, PickupLng: fortLng,
		DistanceKm: 10,
	})
	tuk := svc.Estimate(ctx, service.EstimateRequest{
		VehicleType: domain.VehicleTuk,
		PickupLat:   fortLat, PickupLng: fortLng,
		DistanceKm: 10,
	})
	car := svc.Estimate(ctx, service.EstimateRequest{
		VehicleType: domain.VehicleCar,
		PickupLat:   fortLat, PickupLng: fortLng,
		DistanceKm: 10,
	})

	// base + per-km * 10
	if bike != 650 {
		t.Errorf("expected bike fare 650, got %.2f", bike)
	}
	if tuk != 880 {
		t.Errorf("expected tuk fare 880, got %.2f", tuk)
	}
	if car != 1350 {
		t.Errorf("expected car fare 1350, got %.2f", car)
	}
	if !(bike < tuk && tuk < car) {
		t.Error("expected bike < tuk < car for the same distance")
	}
}

func TestFare_MinimumFloor(t *testing.T) {
	t.Parallel()

	svc, locationStore, _ := newFareFixture()
	ctx := context.Background()
	_ = locationStore.UpdateLocation(ctx, "r1", fortLat, fortLng)

	// 0.2km bike hop: 50 + 60*0.2 = 62, floored to the 100 minimum.
	fare := svc.Estimate(ctx, service.EstimateRequest{
		VehicleType: domain.VehicleBike,
		PickupLat:   fortLat, PickupLng: fortLng,
		DistanceKm: 0.2,
	})
	if fare != 100 {
		t.Errorf("expected minimum fare 100, got %.2f", fare)
	}
}

func TestFare_UnknownVehiclePricesAsCar(t *testing.T) {
	t.Parallel()

	svc, locationStore, _ := newFareFixture()
	ctx := context.Background()
	_ = locationStore.UpdateLocation(ctx, "r1", fortLat, fortLng)

	unknown := svc.Estimate(ctx, service.EstimateRequest{
		VehicleType: "hovercraft",
		PickupLat:   fortLat, PickupLng: fortLng,
		DistanceKm: 10,
	})
	car := svc.Estimate(ctx, service.EstimateRequest{
		VehicleType: domain.VehicleCar,
		PickupLat:   fortLat, PickupLng: fortLng,
		DistanceKm: 10,
	})
	if unknown != car {
		t.Errorf("expected unknown type to price as car: %.2f vs %.2f", unknown, car)
	}
}

func TestFare_DemandMultiplier(t *testing.T) {
	t.Parallel()

	svc, locationStore, requestRepo := newFareFixture()
	ctx := context.Background()

	// Two riders, four pending pickups around the Fort: ratio 2.0.
	_ = locationStore.UpdateLocation(ctx, "r1", fortLat, fortLng)
	_ = locationStore.UpdateLocation(ctx, "r2", 6.9280, 79.8620)
	for _, id := range []string{"q1", "q2", "q3", "q4"} {
		requestRepo.AddRequest(&domain.RideRequest{
			ID:        id,
			Status:    domain.RequestStatusPending,
			PickupLat: fortLat,
			PickupLng: fortLng,
		})
	}

	if m := svc.Multiplier(ctx, fortLat, fortLng); m != 2.0 {
		t.Errorf("expected max multiplier 2.0, got %.1f", m)
	}
}

func TestFare_NoDemandNoMultiplier(t *testing.T) {
	t.Parallel()

	svc, locationStore, _ := newFareFixture()
	ctx := context.Background()
	_ = locationStore.UpdateLocation(ctx, "r1", fortLat, fortLng)

	if m := svc.Multiplier(ctx, fortLat, fortLng); m != 1.0 {
		t.Errorf("expected multiplier 1.0 with no demand, got %.1f", m)
	}
}

func TestFare_NoSupplyWithDemandMaxesOut(t *testing.T) {
	t.Parallel()

	svc, _, requestRepo := newFareFixture()
	ctx := context.Background()

	requestRepo.AddRequest(&domain.RideRequest{
		ID:        "q1",
		Status:    domain.RequestStatusPending,
		PickupLat: fortLat,
		PickupLng: fortLng,
	})

	if m := svc.Multiplier(ctx, fortLat, fortLng); m != 2.0 {
		t.Errorf("expected max multiplier with zero supply, got %.1f", m)
	}
}

func TestFare_GeoIndexFailureFailsOpen(t *testing.T) {
	t.Parallel()

	svc, locationStore, requestRepo := newFareFixture()
	ctx := context.Background()

	locationStore.FindError = context.DeadlineExceeded
	requestRepo.AddRequest(&domain.RideRequest{
		ID:        "q1",
		Status:    domain.RequestStatusPending,
		PickupLat: fortLat,
		PickupLng: fortLng,
	})

	// A broken geo index must not inflate fares.
	if m := svc.Multiplier(ctx, fortLat, fortLng); m != 1.0 {
		t.Errorf("expected fail-open multiplier 1.0, got %.1f", m)
	}
}
