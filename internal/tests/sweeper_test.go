package tests

import (
	"context"
	"testing"
	"time"

	"ridelink/internal/config"
	"ridelink/internal/domain"
	"ridelink/internal/service"
)

// ──────────────────────────────────────────────
// OFFER EXPIRY
// ──────────────────────────────────────────────

func TestSweep_ExpiresOnlyStaleOffers(t *testing.T) {
	t.Parallel()

	responseRepo := NewMockResponseRepository()
	ctx := context.Background()

	// One fresh offer, one stale.
	if err := responseRepo.RecordShown(ctx, "req-fresh", "rider-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := responseRepo.RecordShown(ctx, "req-stale", "rider-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	responseRepo.GetRecord("req-stale", "rider-1").ShownAt = time.Now().Add(-time.Minute)

	sweeper := service.NewOfferSweeper(responseRepo, 30*time.Second, time.Second)
	expired, err := sweeper.Sweep(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expired != 1 {
		t.Fatalf("expected 1 expired offer, got %d", expired)
	}

	if rec := responseRepo.GetRecord("req-stale", "rider-1"); rec.Response != domain.ResponseTimeout {
		t.Errorf("expected stale offer to be timed out, got %s", rec.Response)
	}
	if rec := responseRepo.GetRecord("req-fresh", "rider-1"); rec.Response != domain.ResponseShown {
		t.Errorf("expected fresh offer to stay shown, got %s", rec.Response)
	}
}

func TestSweep_DoesNotTouchAnsweredOffers(t *testing.T) {
	t.Parallel()

	responseRepo := NewMockResponseRepository()
	ctx := context.Background()

	if err := responseRepo.RecordShown(ctx, "req-1", "rider-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := responseRepo.SetResponse(ctx, "req-1", "rider-1", domain.ResponseAccepted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	responseRepo.GetRecord("req-1", "rider-1").ShownAt = time.Now().Add(-time.Hour)

	sweeper := service.NewOfferSweeper(responseRepo, 30*time.Second, time.Second)
	expired, err := sweeper.Sweep(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expired != 0 {
		t.Errorf("expected no expiries, got %d", expired)
	}
	if rec := responseRepo.GetRecord("req-1", "rider-1"); rec.Response != domain.ResponseAccepted {
		t.Errorf("accepted row must stay accepted, got %s", rec.Response)
	}
}

func TestSweep_TimedOutOfferSuppressedFromNextPoll(t *testing.T) {
	t.Parallel()

	locationStore := NewMockLocationStore()
	riderRepo := NewMockRiderRepository()
	requestRepo := NewMockRequestRepository()
	responseRepo := NewMockResponseRepository()
	dispatch := service.NewDispatchService(locationStore, nil, riderRepo, requestRepo, responseRepo, config.DispatchConfig{
		DefaultRadiusKm: 5.0,
		MaxRadiusKm:     20.0,
	})
	ctx := context.Background()

	addOnlineRider(riderRepo, locationStore, "rider-1", domain.VehicleCar, fortLat, fortLng)
	requestRepo.AddRequest(&domain.RideRequest{
		ID: "req-1", Status: domain.RequestStatusPending, VehicleType: domain.VehicleCar,
		PickupLat: fortLat, PickupLng: fortLng,
	})

	first, err := dispatch.NearbyRequestsForRider(ctx, "rider-1", 5.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first.Requests) != 1 {
		t.Fatalf("expected the request surfaced, got %d", len(first.Requests))
	}

	// The rider never answers; the sweep ages the offer out.
	responseRepo.GetRecord("req-1", "rider-1").ShownAt = time.Now().Add(-time.Minute)
	sweeper := service.NewOfferSweeper(responseRepo, 30*time.Second, time.Second)
	if _, err := sweeper.Sweep(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := dispatch.NearbyRequestsForRider(ctx, "rider-1", 5.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(second.Requests) != 0 {
		t.Errorf("timed-out offer must not resurface, got %d", len(second.Requests))
	}
}

func TestSweep_RunStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	responseRepo := NewMockResponseRepository()
	sweeper := service.NewOfferSweeper(responseRepo, 30*time.Second, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
