package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ridelink/internal/domain"
	"ridelink/internal/repository"
)

// RiderRepository is a PostgreSQL implementation of repository.RiderRepository.
type RiderRepository struct {
	q Querier
}

// NewRiderRepository creates a new PostgreSQL rider repository.
func NewRiderRepository(db *sql.DB) *RiderRepository {
	return &RiderRepository{q: db}
}

// Create adds a new rider.
func (r *RiderRepository) Create(ctx context.Context, rider *domain.Rider) error {
	query := `
		INSERT INTO riders (id, name, phone, vehicle_type, is_online, is_available, lat, lng, location_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	var locationUpdatedAt sql.NullTime
	if !rider.LocationUpdatedAt.IsZero() {
		locationUpdatedAt = sql.NullTime{Time: rider.LocationUpdatedAt, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		rider.ID,
		rider.Name,
		rider.Phone,
		rider.VehicleType,
		rider.IsOnline,
		rider.IsAvailable,
		rider.Lat,
		rider.Lng,
		locationUpdatedAt,
	)
	return err
}

// GetByID retrieves a rider by ID.
func (r *RiderRepository) GetByID(ctx context.Context, id string) (*domain.Rider, error) {
	query := `
		SELECT id, COALESCE(name, ''), COALESCE(phone, ''), vehicle_type, is_online, is_available, lat, lng, location_updated_at
		FROM riders WHERE id = $1
	`
	return r.scanRider(r.q.QueryRowContext(ctx, query, id))
}

// GetByPhone retrieves a rider by phone number.
func (r *RiderRepository) GetByPhone(ctx context.Context, phone string) (*domain.Rider, error) {
	query := `
		SELECT id, COALESCE(name, ''), COALESCE(phone, ''), vehicle_type, is_online, is_available, lat, lng, location_updated_at
		FROM riders WHERE phone = $1
	`
	return r.scanRider(r.q.QueryRowContext(ctx, query, phone))
}

// GetAll retrieves all riders.
func (r *RiderRepository) GetAll(ctx context.Context) ([]*domain.Rider, error) {
	query := `
		SELECT id, COALESCE(name, ''), COALESCE(phone, ''), vehicle_type, is_online, is_available, lat, lng, location_updated_at
		FROM riders ORDER BY id
	`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var riders []*domain.Rider
	for rows.Next() {
		var rider domain.Rider
		var locationUpdatedAt sql.NullTime
		if err := rows.Scan(
			&rider.ID,
			&rider.Name,
			&rider.Phone,
			&rider.VehicleType,
			&rider.IsOnline,
			&rider.IsAvailable,
			&rider.Lat,
			&rider.Lng,
			&locationUpdatedAt,
		); err != nil {
			return nil, err
		}
		if locationUpdatedAt.Valid {
			rider.LocationUpdatedAt = locationUpdatedAt.Time
		}
		riders = append(riders, &rider)
	}
	return riders, rows.Err()
}

// SetStatus writes the online/available flags. Idempotent.
func (r *RiderRepository) SetStatus(ctx context.Context, id string, isOnline, isAvailable bool) error {
	query := `UPDATE riders SET is_online = $1, is_available = $2 WHERE id = $3`

	result, err := r.q.ExecContext(ctx, query, isOnline, isAvailable, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// SetAvailable writes only the available flag.
func (r *RiderRepository) SetAvailable(ctx context.Context, id string, isAvailable bool) error {
	query := `UPDATE riders SET is_available = $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, isAvailable, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// UpdateLocation overwrites the rider's last-known position.
func (r *RiderRepository) UpdateLocation(ctx context.Context, id string, lat, lng float64) error {
	query := `UPDATE riders SET lat = $1, lng = $2, location_updated_at = $3 WHERE id = $4`

	result, err := r.q.ExecContext(ctx, query, lat, lng, time.Now(), id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (r *RiderRepository) scanRider(row *sql.Row) (*domain.Rider, error) {
	var rider domain.Rider
	var locationUpdatedAt sql.NullTime

	err := row.Scan(
		&rider.ID,
		&rider.Name,
		&rider.Phone,
		&rider.VehicleType,
		&rider.IsOnline,
		&rider.IsAvailable,
		&rider.Lat,
		&rider.Lng,
		&locationUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if locationUpdatedAt.Valid {
		rider.LocationUpdatedAt = locationUpdatedAt.Time
	}
	return &rider, nil
}

// requireRow converts a zero-rows-affected result into ErrNotFound.
func requireRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
