package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ridelink/internal/domain"
)

// ReceiptService builds trip receipts for completed requests. Receipts
// are derived, not stored: everything on one comes from the request and
// its payment.
type ReceiptService struct {
	notificationService *NotificationService
}

// NewReceiptService creates a new ReceiptService.
func NewReceiptService(notificationService *NotificationService) *ReceiptService {
	return &ReceiptService{
		notificationService: notificationService,
	}
}

// GenerateReceiptParams contains the inputs for a receipt.
type GenerateReceiptParams struct {
	Request *domain.RideRequest
	Payment *domain.Payment
}

// GenerateReceipt builds a receipt for a completed request.
func (s *ReceiptService) GenerateReceipt(ctx context.Context, params GenerateReceiptParams) (*domain.Receipt, error) {
	if params.Request == nil {
		return nil, ErrInvalidRequestID
	}
	req := params.Request

	var duration time.Duration
	if !req.AcceptedAt.IsZero() && !req.CompletedAt.IsZero() {
		duration = req.CompletedAt.Sub(req.AcceptedAt)
	}

	paymentStatus := domain.PaymentStatusPending
	if params.Payment != nil {
		paymentStatus = params.Payment.Status
	}

	receipt := &domain.Receipt{
		ID:             uuid.New().String(),
		RequestID:      req.ID,
		RiderID:        req.AssignedRiderID,
		PassengerID:    req.PassengerID,
		PickupLat:      req.PickupLat,
		PickupLng:      req.PickupLng,
		PickupAddress:  req.PickupAddress,
		DropoffLat:     req.DropoffLat,
		DropoffLng:     req.DropoffLng,
		DropoffAddress: req.DropoffAddress,
		VehicleType:    req.VehicleType,
		Fare:           req.Fare,
		DistanceKm:     req.DistanceKm,
		Duration:       duration,
		PaymentStatus:  paymentStatus,
		AcceptedAt:     req.AcceptedAt,
		CompletedAt:    req.CompletedAt,
		CreatedAt:      time.Now(),
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyReceiptReady(ctx, receipt)
	}

	return receipt, nil
}

// FormatReceipt formats the receipt as a string (for email/print).
func (s *ReceiptService) FormatReceipt(receipt *domain.Receipt) string {
	return `
=====================================
        TRIP RECEIPT
=====================================
Receipt ID: ` + receipt.ID + `
Request ID: ` + receipt.RequestID + `
Date: ` + receipt.CreatedAt.Format("Jan 02, 2006 3:04 PM") + `

TRIP DETAILS
-------------------------------------
Pickup:   ` + placeLine(receipt.PickupAddress, receipt.PickupLat, receipt.PickupLng) + `
Dropoff:  ` + placeLine(receipt.DropoffAddress, receipt.DropoffLat, receipt.DropoffLng) + `
Vehicle:  ` + string(receipt.VehicleType) + `
Duration: ` + formatDuration(receipt.Duration) + `
Distance: ` + formatFloat(receipt.DistanceKm) + ` km

FARE
-------------------------------------
TOTAL:  Rs. ` + formatFloat(receipt.Fare) + `
Status: ` + string(receipt.PaymentStatus) + `

=====================================
     Thank you for riding with us!
=====================================
`
}

func placeLine(address string, lat, lng float64) string {
	if address != "" {
		return address
	}
	return "(" + formatFloat(lat) + ", " + formatFloat(lng) + ")"
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%d min", int(d.Minutes()))
}
