package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"ridelink/internal/domain"
	"ridelink/internal/service"
)

// ──────────────────────────────────────────────
// REQUEST LIFECYCLE
// ──────────────────────────────────────────────

func newRequestService(
	requestRepo *MockRequestRepository,
	riderRepo *MockRiderRepository,
	responseRepo *MockResponseRepository,
	lockStore *MockLockStore,
	paymentService *service.PaymentService,
) *service.RequestService {
	notificationService := service.NewNotificationService()
	receiptService := service.NewReceiptService(notificationService)
	return service.NewRequestService(
		requestRepo,
		riderRepo,
		responseRepo,
		lockStore,
		nil,
		nil,
		nil,
		notificationService,
		paymentService,
		receiptService,
	)
}

func TestRequest_FullLifecycle(t *testing.T) {
	t.Parallel()

	requestRepo := NewMockRequestRepository()
	riderRepo := NewMockRiderRepository()
	responseRepo := NewMockResponseRepository()
	lockStore := NewMockLockStore()
	paymentRepo := NewMockPaymentRepository()
	paymentService := service.NewPaymentService(paymentRepo, service.NewMockPSP())

	riderRepo.AddRider(&domain.Rider{
		ID:          "rider-1",
		Name:        "Kasun",
		VehicleType: domain.VehicleTuk,
		IsOnline:    true,
		IsAvailable: true,
	})

	svc := newRequestService(requestRepo, riderRepo, responseRepo, lockStore, paymentService)
	ctx := context.Background()

	// Passenger requests a tuk from Colombo Fort to Moratuwa.
	req, err := svc.CreateRequest(ctx, service.CreateRequestParams{
		PassengerID: "passenger-1",
		PickupLat:   6.9271,
		PickupLng:   79.8612,
		DropoffLat:  6.7951,
		DropoffLng:  79.9009,
		VehicleType: domain.VehicleTuk,
		Fare:        1200,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Status != domain.RequestStatusPending {
		t.Fatalf("expected pending, got %s", req.Status)
	}
	if req.DistanceKm < 14 || req.DistanceKm > 17 {
		t.Errorf("expected ~15km trip distance, got %.2f", req.DistanceKm)
	}

	// Rider accepts.
	accepted, err := svc.Accept(ctx, "rider-1", req.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if accepted.Status != domain.RequestStatusAccepted {
		t.Fatalf("expected accepted, got %s", accepted.Status)
	}
	if accepted.AssignedRiderID != "rider-1" {
		t.Errorf("expected rider-1 assigned, got %q", accepted.AssignedRiderID)
	}
	if accepted.AcceptedAt.IsZero() {
		t.Error("expected accepted_at to be set")
	}

	// Accepting marks the rider busy.
	if riderRepo.GetRider("rider-1").IsAvailable {
		t.Error("expected rider to be unavailable after accept")
	}

	// The ledger records the acceptance.
	rec := responseRepo.GetRecord(req.ID, "rider-1")
	if rec == nil || rec.Response != domain.ResponseAccepted {
		t.Errorf("expected accepted ledger row, got %+v", rec)
	}

	// Rider arrives at pickup.
	arrived, err := svc.MarkArrived(ctx, req.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if arrived.Status != domain.RequestStatusArrived {
		t.Fatalf("expected arrived, got %s", arrived.Status)
	}
	if arrived.ArrivedAt.IsZero() {
		t.Error("expected arrived_at to be set")
	}

	// Passenger boards.
	started, err := svc.StartTrip(ctx, req.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if started.Status != domain.RequestStatusPickedUp {
		t.Fatalf("expected picked_up, got %s", started.Status)
	}

	// Trip ends.
	completed, err := svc.Complete(ctx, "rider-1", req.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if completed.Status != domain.RequestStatusCompleted {
		t.Fatalf("expected completed, got %s", completed.Status)
	}
	if completed.CompletedAt.IsZero() {
		t.Error("expected completed_at to be set")
	}

	// Completing restores the rider's availability.
	if !riderRepo.GetRider("rider-1").IsAvailable {
		t.Error("expected rider to be available after completion")
	}

	// The fare was charged exactly once.
	if count := paymentRepo.CreateCallCount; count != 1 {
		t.Errorf("expected 1 payment, got %d", count)
	}
}

func TestRequest_CreateValidatesCoordinates(t *testing.T) {
	t.Parallel()

	svc := newRequestService(NewMockRequestRepository(), NewMockRiderRepository(), NewMockResponseRepository(), NewMockLockStore(), nil)

	_, err := svc.CreateRequest(context.Background(), service.CreateRequestParams{
		PassengerID: "passenger-1",
		PickupLat:   91.0, // out of range
		PickupLng:   79.8612,
		DropoffLat:  6.7951,
		DropoffLng:  79.9009,
		VehicleType: domain.VehicleCar,
	})
	if !errors.Is(err, service.ErrInvalidPickupLocation) {
		t.Errorf("expected ErrInvalidPickupLocation, got %v", err)
	}
}

func TestRequest_CannotSkipArrived(t *testing.T) {
	t.Parallel()

	requestRepo := NewMockRequestRepository()
	requestRepo.AddRequest(&domain.RideRequest{
		ID:              "req-1",
		Status:          domain.RequestStatusAccepted,
		AssignedRiderID: "rider-1",
	})

	svc := newRequestService(requestRepo, NewMockRiderRepository(), NewMockResponseRepository(), NewMockLockStore(), nil)

	// Pickup before arrival is rejected.
	_, err := svc.StartTrip(context.Background(), "req-1")
	if !errors.Is(err, service.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestRequest_ArrivedTwiceRejected(t *testing.T) {
	t.Parallel()

	requestRepo := NewMockRequestRepository()
	requestRepo.AddRequest(&domain.RideRequest{
		ID:              "req-1",
		Status:          domain.RequestStatusAccepted,
		AssignedRiderID: "rider-1",
	})

	svc := newRequestService(requestRepo, NewMockRiderRepository(), NewMockResponseRepository(), NewMockLockStore(), nil)
	ctx := context.Background()

	if _, err := svc.MarkArrived(ctx, "req-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.MarkArrived(ctx, "req-1")
	if !errors.Is(err, service.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition on repeat arrival, got %v", err)
	}
}

func TestRequest_CancelOnlyWhilePending(t *testing.T) {
	t.Parallel()

	requestRepo := NewMockRequestRepository()
	requestRepo.AddRequest(&domain.RideRequest{
		ID:     "req-pending",
		Status: domain.RequestStatusPending,
	})
	requestRepo.AddRequest(&domain.RideRequest{
		ID:              "req-accepted",
		Status:          domain.RequestStatusAccepted,
		AssignedRiderID: "rider-1",
	})

	svc := newRequestService(requestRepo, NewMockRiderRepository(), NewMockResponseRepository(), NewMockLockStore(), nil)
	ctx := context.Background()

	cancelled, err := svc.Cancel(ctx, "req-pending", "changed my mind")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.Status != domain.RequestStatusCancelled {
		t.Errorf("expected cancelled, got %s", cancelled.Status)
	}
	if cancelled.CancelReason != "changed my mind" {
		t.Errorf("expected cancel reason to persist, got %q", cancelled.CancelReason)
	}

	_, err = svc.Cancel(ctx, "req-accepted", "too late")
	if !errors.Is(err, service.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition for accepted request, got %v", err)
	}
}

func TestRequest_CompleteRequiresAssignedRider(t *testing.T) {
	t.Parallel()

	requestRepo := NewMockRequestRepository()
	riderRepo := NewMockRiderRepository()
	requestRepo.AddRequest(&domain.RideRequest{
		ID:              "req-1",
		Status:          domain.RequestStatusPickedUp,
		AssignedRiderID: "rider-1",
	})
	riderRepo.AddRider(&domain.Rider{ID: "rider-1", IsOnline: true})
	riderRepo.AddRider(&domain.Rider{ID: "rider-2", IsOnline: true})

	svc := newRequestService(requestRepo, riderRepo, NewMockResponseRepository(), NewMockLockStore(), nil)

	_, err := svc.Complete(context.Background(), "rider-2", "req-1")
	if !errors.Is(err, service.ErrRiderNotAssigned) {
		t.Errorf("expected ErrRiderNotAssigned, got %v", err)
	}

	// The request is untouched.
	if got := requestRepo.GetRequest("req-1").Status; got != domain.RequestStatusPickedUp {
		t.Errorf("expected request to stay picked_up, got %s", got)
	}
}

func TestRequest_CompleteKeepsOfflineRiderUnavailable(t *testing.T) {
	t.Parallel()

	requestRepo := NewMockRequestRepository()
	riderRepo := NewMockRiderRepository()
	requestRepo.AddRequest(&domain.RideRequest{
		ID:              "req-1",
		Status:          domain.RequestStatusPickedUp,
		AssignedRiderID: "rider-1",
		Fare:            500,
	})
	// Rider went off shift mid-trip.
	riderRepo.AddRider(&domain.Rider{ID: "rider-1", IsOnline: false, IsAvailable: false})

	svc := newRequestService(requestRepo, riderRepo, NewMockResponseRepository(), NewMockLockStore(), nil)

	if _, err := svc.Complete(context.Background(), "rider-1", "req-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if riderRepo.GetRider("rider-1").IsAvailable {
		t.Error("offline rider must not be flipped back to available")
	}
}

func TestRequest_PaymentFailureDoesNotRollBackTrip(t *testing.T) {
	t.Parallel()

	requestRepo := NewMockRequestRepository()
	riderRepo := NewMockRiderRepository()
	paymentRepo := NewMockPaymentRepository()
	paymentService := service.NewPaymentService(paymentRepo, &MockFailingPSP{})

	requestRepo.AddRequest(&domain.RideRequest{
		ID:              "req-1",
		Status:          domain.RequestStatusPickedUp,
		AssignedRiderID: "rider-1",
		Fare:            800,
	})
	riderRepo.AddRider(&domain.Rider{ID: "rider-1", IsOnline: true})

	svc := newRequestService(requestRepo, riderRepo, NewMockResponseRepository(), NewMockLockStore(), paymentService)

	completed, err := svc.Complete(context.Background(), "rider-1", "req-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if completed.Status != domain.RequestStatusCompleted {
		t.Errorf("expected completed despite failed charge, got %s", completed.Status)
	}

	payment, err := paymentRepo.GetByIdempotencyKey(context.Background(), "payment:req-1")
	if err != nil || payment == nil {
		t.Fatalf("expected payment record, got %v, %v", payment, err)
	}
	if payment.Status != domain.PaymentStatusFailed {
		t.Errorf("expected failed payment, got %s", payment.Status)
	}
}

func TestRequest_TimestampsAccumulate(t *testing.T) {
	t.Parallel()

	requestRepo := NewMockRequestRepository()
	riderRepo := NewMockRiderRepository()
	riderRepo.AddRider(&domain.Rider{ID: "rider-1", IsOnline: true, IsAvailable: true})

	svc := newRequestService(requestRepo, riderRepo, NewMockResponseRepository(), NewMockLockStore(), nil)
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, service.CreateRequestParams{
		PassengerID: "passenger-1",
		PickupLat:   6.9271,
		PickupLng:   79.8612,
		DropoffLat:  6.9319,
		DropoffLng:  79.8478,
		VehicleType: domain.VehicleCar,
		Fare:        300,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	start := time.Now()
	if _, err := svc.Accept(ctx, "rider-1", req.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.MarkArrived(ctx, req.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.StartTrip(ctx, req.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	final, err := svc.Complete(ctx, "rider-1", req.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for name, ts := range map[string]time.Time{
		"accepted_at":  final.AcceptedAt,
		"arrived_at":   final.ArrivedAt,
		"picked_up_at": final.PickedUpAt,
		"completed_at": final.CompletedAt,
	} {
		if ts.IsZero() {
			t.Errorf("expected %s to be set", name)
		}
		if ts.Before(start.Add(-time.Second)) {
			t.Errorf("%s is implausibly old: %v", name, ts)
		}
	}
	if final.RequestedAt.After(final.AcceptedAt) {
		t.Error("requested_at must precede accepted_at")
	}
}
