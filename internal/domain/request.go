package domain

import "time"

// RequestStatus represents the lifecycle state of a ride request.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusAccepted  RequestStatus = "accepted"
	RequestStatusArrived   RequestStatus = "arrived"
	RequestStatusPickedUp  RequestStatus = "picked_up"
	RequestStatusCompleted RequestStatus = "completed"
	RequestStatusCancelled RequestStatus = "cancelled"
)

// RideRequest represents a passenger's transport request.
// AssignedRiderID stays empty until a rider accepts; the accept path
// sets it with a conditional update so a request can never carry two
// riders.
type RideRequest struct {
	ID              string
	PassengerID     string
	AssignedRiderID string
	PickupLat       float64
	PickupLng       float64
	PickupAddress   string
	DropoffLat      float64
	DropoffLng      float64
	DropoffAddress  string
	VehicleType     VehicleType
	Status          RequestStatus
	Fare            float64
	DistanceKm      float64
	RequestedAt     time.Time
	AcceptedAt      time.Time
	ArrivedAt       time.Time
	PickedUpAt      time.Time
	CompletedAt     time.Time
	CancelledAt     time.Time
	CancelReason    string
}

// Terminal reports whether the request has reached a final state.
func (r *RideRequest) Terminal() bool {
	return r.Status == RequestStatusCompleted || r.Status == RequestStatusCancelled
}
