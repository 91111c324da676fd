package tests

import (
	"context"
	"strings"
	"testing"
	"time"

	"ridelink/internal/domain"
	"ridelink/internal/service"
)

// ──────────────────────────────────────────────
// RECEIPTS
// ──────────────────────────────────────────────

func TestReceipt_DerivedFromRequestAndPayment(t *testing.T) {
	t.Parallel()

	svc := service.NewReceiptService(service.NewNotificationService())

	accepted := time.Date(2026, 8, 30, 18, 0, 0, 0, time.UTC)
	completed := accepted.Add(25 * time.Minute)
	req := &domain.RideRequest{
		ID:              "req-1",
		PassengerID:     "passenger-1",
		AssignedRiderID: "rider-1",
		PickupAddress:   "Colombo Fort",
		DropoffAddress:  "Moratuwa",
		VehicleType:     domain.VehicleTuk,
		Status:          domain.RequestStatusCompleted,
		Fare:            1250.50,
		DistanceKm:      15.3,
		AcceptedAt:      accepted,
		CompletedAt:     completed,
	}
	payment := &domain.Payment{
		ID:        "pay-1",
		RequestID: "req-1",
		Amount:    1250.50,
		Status:    domain.PaymentStatusSuccess,
	}

	receipt, err := svc.GenerateReceipt(context.Background(), service.GenerateReceiptParams{
		Request: req,
		Payment: payment,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if receipt.RequestID != "req-1" || receipt.RiderID != "rider-1" || receipt.PassengerID != "passenger-1" {
		t.Errorf("receipt identifiers wrong: %+v", receipt)
	}
	if receipt.Duration != 25*time.Minute {
		t.Errorf("expected 25m duration, got %v", receipt.Duration)
	}
	if receipt.PaymentStatus != domain.PaymentStatusSuccess {
		t.Errorf("expected SUCCESS payment status, got %s", receipt.PaymentStatus)
	}

	formatted := svc.FormatReceipt(receipt)
	for _, want := range []string{"Colombo Fort", "Moratuwa", "1250.50", "25 min", "tuk"} {
		if !strings.Contains(formatted, want) {
			t.Errorf("formatted receipt missing %q", want)
		}
	}
}

func TestReceipt_MissingPaymentReportsPending(t *testing.T) {
	t.Parallel()

	svc := service.NewReceiptService(nil)

	receipt, err := svc.GenerateReceipt(context.Background(), service.GenerateReceiptParams{
		Request: &domain.RideRequest{ID: "req-1", Status: domain.RequestStatusCompleted},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt.PaymentStatus != domain.PaymentStatusPending {
		t.Errorf("expected PENDING without a payment, got %s", receipt.PaymentStatus)
	}
}
