package tests

import (
	"context"
	"errors"
	"testing"

	"ridelink/internal/domain"
	"ridelink/internal/repository"
	"ridelink/internal/service"
)

// ──────────────────────────────────────────────
// RIDER STATUS & LOCATION
// ──────────────────────────────────────────────

func TestRiderStatus_GoingOnline(t *testing.T) {
	t.Parallel()

	locationStore := NewMockLocationStore()
	riderRepo := NewMockRiderRepository()
	riderRepo.AddRider(&domain.Rider{ID: "rider-1", VehicleType: domain.VehicleBike})

	svc := service.NewRiderService(locationStore, nil, riderRepo)

	err := svc.SetStatus(context.Background(), service.SetStatusRequest{
		RiderID:     "rider-1",
		IsOnline:    true,
		IsAvailable: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rider := riderRepo.GetRider("rider-1")
	if !rider.IsOnline || !rider.IsAvailable {
		t.Errorf("expected online and available, got online=%v available=%v", rider.IsOnline, rider.IsAvailable)
	}
}

func TestRiderStatus_GoingOnlineIsIdempotent(t *testing.T) {
	t.Parallel()

	locationStore := NewMockLocationStore()
	riderRepo := NewMockRiderRepository()
	riderRepo.AddRider(&domain.Rider{ID: "rider-1"})

	svc := service.NewRiderService(locationStore, nil, riderRepo)
	ctx := context.Background()

	req := service.SetStatusRequest{RiderID: "rider-1", IsOnline: true, IsAvailable: true}
	for i := 0; i < 3; i++ {
		if err := svc.SetStatus(ctx, req); err != nil {
			t.Fatalf("call %d failed: %v", i+1, err)
		}
	}

	rider := riderRepo.GetRider("rider-1")
	if !rider.IsOnline || !rider.IsAvailable {
		t.Error("repeated online calls must converge on the same state")
	}
}

func TestRiderStatus_OfflineForcesUnavailable(t *testing.T) {
	t.Parallel()

	locationStore := NewMockLocationStore()
	riderRepo := NewMockRiderRepository()
	riderRepo.AddRider(&domain.Rider{ID: "rider-1", IsOnline: true, IsAvailable: true})

	svc := service.NewRiderService(locationStore, nil, riderRepo)

	// Claiming available while going offline is contradictory; offline wins.
	err := svc.SetStatus(context.Background(), service.SetStatusRequest{
		RiderID:     "rider-1",
		IsOnline:    false,
		IsAvailable: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rider := riderRepo.GetRider("rider-1")
	if rider.IsOnline || rider.IsAvailable {
		t.Errorf("expected offline and unavailable, got online=%v available=%v", rider.IsOnline, rider.IsAvailable)
	}
}

func TestRiderStatus_OfflineRemovesFromGeoIndex(t *testing.T) {
	t.Parallel()

	locationStore := NewMockLocationStore()
	riderRepo := NewMockRiderRepository()
	riderRepo.AddRider(&domain.Rider{ID: "rider-1", IsOnline: true, IsAvailable: true})

	svc := service.NewRiderService(locationStore, nil, riderRepo)
	ctx := context.Background()

	if err := svc.UpdateLocation(ctx, service.UpdateLocationRequest{RiderID: "rider-1", Lat: 6.9271, Lng: 79.8612}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !locationStore.HasLocation("rider-1") {
		t.Fatal("expected rider in geo index after location update")
	}

	if err := svc.SetStatus(ctx, service.SetStatusRequest{RiderID: "rider-1", IsOnline: false}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if locationStore.HasLocation("rider-1") {
		t.Error("going offline must evict the rider from the geo index")
	}
}

func TestRiderStatus_UnknownRider(t *testing.T) {
	t.Parallel()

	svc := service.NewRiderService(NewMockLocationStore(), nil, NewMockRiderRepository())

	err := svc.SetStatus(context.Background(), service.SetStatusRequest{RiderID: "ghost", IsOnline: true})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRiderLocation_LatestWins(t *testing.T) {
	t.Parallel()

	locationStore := NewMockLocationStore()
	riderRepo := NewMockRiderRepository()
	riderRepo.AddRider(&domain.Rider{ID: "rider-1", IsOnline: true, IsAvailable: true})

	svc := service.NewRiderService(locationStore, nil, riderRepo)
	ctx := context.Background()

	ticks := [][2]float64{
		{6.9271, 79.8612},
		{6.9300, 79.8650},
		{6.9350, 79.8700},
	}
	for _, tick := range ticks {
		err := svc.UpdateLocation(ctx, service.UpdateLocationRequest{RiderID: "rider-1", Lat: tick[0], Lng: tick[1]})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	lat, lng, ok, err := locationStore.GetLocation(ctx, "rider-1")
	if err != nil || !ok {
		t.Fatalf("expected location, got ok=%v err=%v", ok, err)
	}
	if lat != 6.9350 || lng != 79.8700 {
		t.Errorf("expected latest position, got (%.4f, %.4f)", lat, lng)
	}

	// The mirror in the riders row follows too.
	rider := riderRepo.GetRider("rider-1")
	if rider.Lat != 6.9350 || rider.Lng != 79.8700 {
		t.Errorf("expected mirrored position, got (%.4f, %.4f)", rider.Lat, rider.Lng)
	}
	if rider.LocationUpdatedAt.IsZero() {
		t.Error("expected location timestamp to be set")
	}
}

func TestRiderLocation_RejectsInvalidCoordinates(t *testing.T) {
	t.Parallel()

	locationStore := NewMockLocationStore()
	riderRepo := NewMockRiderRepository()
	riderRepo.AddRider(&domain.Rider{ID: "rider-1", IsOnline: true})

	svc := service.NewRiderService(locationStore, nil, riderRepo)
	ctx := context.Background()

	cases := []struct {
		name string
		lat  float64
		lng  float64
	}{
		{"latitude too high", 90.5, 79.8612},
		{"latitude too low", -91.0, 79.8612},
		{"longitude too high", 6.9271, 180.5},
		{"longitude too low", 6.9271, -181.0},
	}
	for _, tc := range cases {
		err := svc.UpdateLocation(ctx, service.UpdateLocationRequest{RiderID: "rider-1", Lat: tc.lat, Lng: tc.lng})
		if !errors.Is(err, service.ErrInvalidLocation) {
			t.Errorf("%s: expected ErrInvalidLocation, got %v", tc.name, err)
		}
	}

	if locationStore.HasLocation("rider-1") {
		t.Error("rejected ticks must not reach the geo index")
	}
}

func TestRiderLocation_UnknownRider(t *testing.T) {
	t.Parallel()

	svc := service.NewRiderService(NewMockLocationStore(), nil, NewMockRiderRepository())

	err := svc.UpdateLocation(context.Background(), service.UpdateLocationRequest{RiderID: "ghost", Lat: 6.9, Lng: 79.8})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
