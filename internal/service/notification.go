package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"ridelink/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationRequestCreated   NotificationType = "REQUEST_CREATED"
	NotificationRiderAssigned    NotificationType = "RIDER_ASSIGNED"
	NotificationRiderArrived     NotificationType = "RIDER_ARRIVED"
	NotificationTripStarted      NotificationType = "TRIP_STARTED"
	NotificationRequestCompleted NotificationType = "REQUEST_COMPLETED"
	NotificationRequestCancelled NotificationType = "REQUEST_CANCELLED"
	NotificationPaymentSuccess   NotificationType = "PAYMENT_SUCCESS"
	NotificationPaymentFailed    NotificationType = "PAYMENT_FAILED"
	NotificationReceiptReady     NotificationType = "RECEIPT_READY"
)

// Notification represents a notification to be sent.
type Notification struct {
	Type        NotificationType
	RecipientID string
	Title       string
	Message     string
	Data        map[string]interface{}
	CreatedAt   time.Time
}

// NotificationService handles notification delivery. Actual delivery
// (push/SMS/websocket) is an external collaborator; this implementation
// logs the payloads it would hand over.
type NotificationService struct{}

// NewNotificationService creates a new NotificationService.
func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotifyRequestCreated tells nearby riders about a fresh request.
func (s *NotificationService) NotifyRequestCreated(ctx context.Context, req *domain.RideRequest, riderIDs []string) error {
	for _, riderID := range riderIDs {
		s.send(ctx, Notification{
			Type:        NotificationRequestCreated,
			RecipientID: riderID,
			Title:       "New Ride Request",
			Message:     fmt.Sprintf("New %s request near you. Pickup at (%.4f, %.4f)", req.VehicleType, req.PickupLat, req.PickupLng),
			Data: map[string]interface{}{
				"request_id": req.ID,
				"pickup_lat": req.PickupLat,
				"pickup_lng": req.PickupLng,
				"fare":       req.Fare,
			},
			CreatedAt: time.Now(),
		})
	}
	return nil
}

// NotifyRiderAssigned tells the passenger their request was accepted.
func (s *NotificationService) NotifyRiderAssigned(ctx context.Context, req *domain.RideRequest, rider *domain.Rider) error {
	s.send(ctx, Notification{
		Type:        NotificationRiderAssigned,
		RecipientID: req.PassengerID,
		Title:       "Rider On The Way",
		Message:     fmt.Sprintf("%s accepted your request", rider.Name),
		Data: map[string]interface{}{
			"request_id":   req.ID,
			"rider_id":     rider.ID,
			"rider_name":   rider.Name,
			"vehicle_type": rider.VehicleType,
		},
		CreatedAt: time.Now(),
	})
	return nil
}

// NotifyRiderArrived tells the passenger their rider is at the pickup.
func (s *NotificationService) NotifyRiderArrived(ctx context.Context, req *domain.RideRequest) error {
	s.send(ctx, Notification{
		Type:        NotificationRiderArrived,
		RecipientID: req.PassengerID,
		Title:       "Rider Arrived",
		Message:     "Your rider is waiting at the pickup point.",
		Data:        map[string]interface{}{"request_id": req.ID},
		CreatedAt:   time.Now(),
	})
	return nil
}

// NotifyTripStarted tells the passenger the trip is underway.
func (s *NotificationService) NotifyTripStarted(ctx context.Context, req *domain.RideRequest) error {
	s.send(ctx, Notification{
		Type:        NotificationTripStarted,
		RecipientID: req.PassengerID,
		Title:       "Trip Started",
		Message:     "Your trip has started.",
		Data:        map[string]interface{}{"request_id": req.ID},
		CreatedAt:   time.Now(),
	})
	return nil
}

// NotifyRequestCompleted tells the passenger the trip is done.
func (s *NotificationService) NotifyRequestCompleted(ctx context.Context, req *domain.RideRequest) error {
	s.send(ctx, Notification{
		Type:        NotificationRequestCompleted,
		RecipientID: req.PassengerID,
		Title:       "Trip Completed",
		Message:     fmt.Sprintf("Your trip is complete. Fare: Rs. %.2f", req.Fare),
		Data: map[string]interface{}{
			"request_id":   req.ID,
			"fare":         req.Fare,
			"completed_at": req.CompletedAt,
		},
		CreatedAt: time.Now(),
	})
	return nil
}

// NotifyRequestCancelled tells the affected rider, if any, about a
// cancellation.
func (s *NotificationService) NotifyRequestCancelled(ctx context.Context, req *domain.RideRequest, reason string) error {
	if req.AssignedRiderID == "" {
		// Pending cancel; riders find out when the request drops out of
		// their next poll.
		return nil
	}

	s.send(ctx, Notification{
		Type:        NotificationRequestCancelled,
		RecipientID: req.AssignedRiderID,
		Title:       "Request Cancelled",
		Message:     "The passenger cancelled the request.",
		Data: map[string]interface{}{
			"request_id": req.ID,
			"reason":     reason,
		},
		CreatedAt: time.Now(),
	})
	return nil
}

// NotifyPaymentSuccess tells the passenger the fare charge went through.
func (s *NotificationService) NotifyPaymentSuccess(ctx context.Context, payment *domain.Payment, passengerID string) error {
	s.send(ctx, Notification{
		Type:        NotificationPaymentSuccess,
		RecipientID: passengerID,
		Title:       "Payment Successful",
		Message:     fmt.Sprintf("Payment of Rs. %.2f was successful", payment.Amount),
		Data: map[string]interface{}{
			"payment_id": payment.ID,
			"amount":     payment.Amount,
		},
		CreatedAt: time.Now(),
	})
	return nil
}

// NotifyPaymentFailed tells the passenger the fare charge failed.
func (s *NotificationService) NotifyPaymentFailed(ctx context.Context, payment *domain.Payment, passengerID string) error {
	s.send(ctx, Notification{
		Type:        NotificationPaymentFailed,
		RecipientID: passengerID,
		Title:       "Payment Failed",
		Message:     fmt.Sprintf("Payment of Rs. %.2f failed. Please try again.", payment.Amount),
		Data: map[string]interface{}{
			"payment_id": payment.ID,
			"amount":     payment.Amount,
		},
		CreatedAt: time.Now(),
	})
	return nil
}

// NotifyReceiptReady tells the passenger their receipt is available.
func (s *NotificationService) NotifyReceiptReady(ctx context.Context, receipt *domain.Receipt) error {
	s.send(ctx, Notification{
		Type:        NotificationReceiptReady,
		RecipientID: receipt.PassengerID,
		Title:       "Receipt Ready",
		Message:     fmt.Sprintf("Your receipt for Rs. %.2f is ready", receipt.Fare),
		Data: map[string]interface{}{
			"receipt_id": receipt.ID,
			"request_id": receipt.RequestID,
			"fare":       receipt.Fare,
		},
		CreatedAt: time.Now(),
	})
	return nil
}

func (s *NotificationService) send(ctx context.Context, notification Notification) {
	log.Printf("[NOTIFICATION] Type=%s, Recipient=%s, Title=%s, Message=%s",
		notification.Type, notification.RecipientID, notification.Title, notification.Message)
}
