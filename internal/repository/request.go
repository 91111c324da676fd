package repository

import (
	"context"
	"time"

	"ridelink/internal/domain"
)

// RequestRepository defines the persistence operations for ride requests.
//
// The state-changing methods are single-row conditional updates: each
// one only fires when the request is in the required predecessor state
// and reports via its bool return whether the row was actually moved.
// A false return with a nil error means the precondition did not hold.
type RequestRepository interface {
	// Create persists a new ride request.
	Create(ctx context.Context, req *domain.RideRequest) error

	// GetByID retrieves a ride request by ID.
	GetByID(ctx context.Context, id string) (*domain.RideRequest, error)

	// GetAll retrieves recent ride requests.
	GetAll(ctx context.Context) ([]*domain.RideRequest, error)

	// GetPending retrieves all requests still in the pending state,
	// oldest first. An empty vehicleType matches every request.
	GetPending(ctx context.Context, vehicleType domain.VehicleType) ([]*domain.RideRequest, error)

	// Assign atomically moves a pending, unassigned request to accepted
	// and sets the assigned rider. Compare-and-swap: assign only if
	// assigned_rider_id is still null.
	Assign(ctx context.Context, requestID, riderID string, at time.Time) (bool, error)

	// MarkArrived moves accepted -> arrived.
	MarkArrived(ctx context.Context, id string, at time.Time) (bool, error)

	// MarkPickedUp moves arrived -> picked_up.
	MarkPickedUp(ctx context.Context, id string, at time.Time) (bool, error)

	// MarkCompleted moves picked_up -> completed and sets completed_at.
	MarkCompleted(ctx context.Context, id string, at time.Time) (bool, error)

	// Cancel moves pending -> cancelled with a reason.
	Cancel(ctx context.Context, id, reason string, at time.Time) (bool, error)
}
