package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ridelink/internal/domain"
	"ridelink/internal/repository"
)

const requestColumns = `
	id, passenger_id, assigned_rider_id,
	pickup_lat, pickup_lng, COALESCE(pickup_address, ''),
	dropoff_lat, dropoff_lng, COALESCE(dropoff_address, ''),
	vehicle_type, status, fare, distance_km,
	requested_at, accepted_at, arrived_at, picked_up_at, completed_at, cancelled_at,
	COALESCE(cancel_reason, '')
`

// RequestRepository is a PostgreSQL implementation of repository.RequestRepository.
type RequestRepository struct {
	q Querier
}

// NewRequestRepository creates a new PostgreSQL request repository.
func NewRequestRepository(db *sql.DB) *RequestRepository {
	return &RequestRepository{q: db}
}

// Create persists a new ride request.
func (r *RequestRepository) Create(ctx context.Context, req *domain.RideRequest) error {
	query := `
		INSERT INTO ride_requests (
			id, passenger_id, assigned_rider_id,
			pickup_lat, pickup_lng, pickup_address,
			dropoff_lat, dropoff_lng, dropoff_address,
			vehicle_type, status, fare, distance_km, requested_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	var assignedRiderID sql.NullString
	if req.AssignedRiderID != "" {
		assignedRiderID = sql.NullString{String: req.AssignedRiderID, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		req.ID,
		req.PassengerID,
		assignedRiderID,
		req.PickupLat,
		req.PickupLng,
		req.PickupAddress,
		req.DropoffLat,
		req.DropoffLng,
		req.DropoffAddress,
		req.VehicleType,
		req.Status,
		req.Fare,
		req.DistanceKm,
		req.RequestedAt,
	)
	return err
}

// GetByID retrieves a ride request by ID.
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*domain.RideRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM ride_requests WHERE id = $1`

	req, err := scanRequest(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

// GetAll retrieves recent ride requests, newest first.
func (r *RequestRepository) GetAll(ctx context.Context) ([]*domain.RideRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM ride_requests ORDER BY requested_at DESC LIMIT 100`
	return r.queryRequests(ctx, query)
}

// GetPending retrieves all pending requests, oldest first.
func (r *RequestRepository) GetPending(ctx context.Context, vehicleType domain.VehicleType) ([]*domain.RideRequest, error) {
	if vehicleType == "" {
		query := `SELECT ` + requestColumns + ` FROM ride_requests WHERE status = 'pending' ORDER BY requested_at ASC`
		return r.queryRequests(ctx, query)
	}

	query := `SELECT ` + requestColumns + ` FROM ride_requests WHERE status = 'pending' AND vehicle_type = $1 ORDER BY requested_at ASC`
	return r.queryRequests(ctx, query, vehicleType)
}

// Assign atomically accepts a pending, unassigned request for a rider.
// The WHERE clause is the whole exclusivity guarantee: two concurrent
// accepts race on it and exactly one sees a row.
func (r *RequestRepository) Assign(ctx context.Context, requestID, riderID string, at time.Time) (bool, error) {
	query := `
		UPDATE ride_requests
		SET status = 'accepted', assigned_rider_id = $1, accepted_at = $2
		WHERE id = $3 AND status = 'pending' AND assigned_rider_id IS NULL
	`
	return r.conditionalUpdate(ctx, query, riderID, at, requestID)
}

// MarkArrived moves accepted -> arrived.
func (r *RequestRepository) MarkArrived(ctx context.Context, id string, at time.Time) (bool, error) {
	query := `UPDATE ride_requests SET status = 'arrived', arrived_at = $1 WHERE id = $2 AND status = 'accepted'`
	return r.conditionalUpdate(ctx, query, at, id)
}

// MarkPickedUp moves arrived -> picked_up.
func (r *RequestRepository) MarkPickedUp(ctx context.Context, id string, at time.Time) (bool, error) {
	query := `UPDATE ride_requests SET status = 'picked_up', picked_up_at = $1 WHERE id = $2 AND status = 'arrived'`
	return r.conditionalUpdate(ctx, query, at, id)
}

// MarkCompleted moves picked_up -> completed.
func (r *RequestRepository) MarkCompleted(ctx context.Context, id string, at time.Time) (bool, error) {
	query := `UPDATE ride_requests SET status = 'completed', completed_at = $1 WHERE id = $2 AND status = 'picked_up'`
	return r.conditionalUpdate(ctx, query, at, id)
}

// Cancel moves pending -> cancelled.
func (r *RequestRepository) Cancel(ctx context.Context, id, reason string, at time.Time) (bool, error) {
	query := `
		UPDATE ride_requests
		SET status = 'cancelled', cancelled_at = $1, cancel_reason = $2
		WHERE id = $3 AND status = 'pending'
	`
	return r.conditionalUpdate(ctx, query, at, reason, id)
}

func (r *RequestRepository) conditionalUpdate(ctx context.Context, query string, args ...any) (bool, error) {
	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}

func (r *RequestRepository) queryRequests(ctx context.Context, query string, args ...any) ([]*domain.RideRequest, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*domain.RideRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*domain.RideRequest, error) {
	var req domain.RideRequest
	var assignedRiderID sql.NullString
	var acceptedAt, arrivedAt, pickedUpAt, completedAt, cancelledAt sql.NullTime

	err := row.Scan(
		&req.ID,
		&req.PassengerID,
		&assignedRiderID,
		&req.PickupLat,
		&req.PickupLng,
		&req.PickupAddress,
		&req.DropoffLat,
		&req.DropoffLng,
		&req.DropoffAddress,
		&req.VehicleType,
		&req.Status,
		&req.Fare,
		&req.DistanceKm,
		&req.RequestedAt,
		&acceptedAt,
		&arrivedAt,
		&pickedUpAt,
		&completedAt,
		&cancelledAt,
		&req.CancelReason,
	)
	if err != nil {
		return nil, err
	}

	if assignedRiderID.Valid {
		req.AssignedRiderID = assignedRiderID.String
	}
	if acceptedAt.Valid {
		req.AcceptedAt = acceptedAt.Time
	}
	if arrivedAt.Valid {
		req.ArrivedAt = arrivedAt.Time
	}
	if pickedUpAt.Valid {
		req.PickedUpAt = pickedUpAt.Time
	}
	if completedAt.Valid {
		req.CompletedAt = completedAt.Time
	}
	if cancelledAt.Valid {
		req.CancelledAt = cancelledAt.Time
	}
	return &req, nil
}
