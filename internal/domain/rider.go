package domain

import "time"

// VehicleType represents the kind of vehicle a rider operates.
type VehicleType string

const (
	VehicleCar  VehicleType = "car"
	VehicleBike VehicleType = "bike"
	VehicleTuk  VehicleType = "tuk"
)

// Rider represents a transport partner in the system.
// IsOnline tracks whether the rider is on shift; IsAvailable tracks
// whether they can take a new request (false while serving one).
type Rider struct {
	ID                string
	Name              string
	Phone             string
	VehicleType       VehicleType
	IsOnline          bool
	IsAvailable       bool
	Lat               float64
	Lng               float64
	LocationUpdatedAt time.Time
}
