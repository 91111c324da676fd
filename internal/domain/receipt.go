package domain

import "time"

// Receipt summarizes a completed ride request for the passenger.
type Receipt struct {
	ID             string
	RequestID      string
	RiderID        string
	PassengerID    string
	PickupLat      float64
	PickupLng      float64
	PickupAddress  string
	DropoffLat     float64
	DropoffLng     float64
	DropoffAddress string
	VehicleType    VehicleType
	Fare           float64
	DistanceKm     float64
	Duration       time.Duration
	PaymentStatus  PaymentStatus
	AcceptedAt     time.Time
	CompletedAt    time.Time
	CreatedAt      time.Time
}
