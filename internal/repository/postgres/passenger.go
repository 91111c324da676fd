package postgres

import (
	"context"
	"database/sql"
	"errors"

	"ridelink/internal/domain"
	"ridelink/internal/repository"
)

// PassengerRepository is a PostgreSQL implementation of repository.PassengerRepository.
type PassengerRepository struct {
	q Querier
}

// NewPassengerRepository creates a new PostgreSQL passenger repository.
func NewPassengerRepository(db *sql.DB) *PassengerRepository {
	return &PassengerRepository{q: db}
}

// Create adds a new passenger.
func (r *PassengerRepository) Create(ctx context.Context, passenger *domain.Passenger) error {
	query := `INSERT INTO passengers (id, name, phone, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.q.ExecContext(ctx, query, passenger.ID, passenger.Name, passenger.Phone, passenger.CreatedAt)
	return err
}

// GetByID retrieves a passenger by ID.
func (r *PassengerRepository) GetByID(ctx context.Context, id string) (*domain.Passenger, error) {
	query := `SELECT id, COALESCE(name, ''), COALESCE(phone, ''), created_at FROM passengers WHERE id = $1`
	return r.scanPassenger(r.q.QueryRowContext(ctx, query, id))
}

// GetByPhone retrieves a passenger by phone number.
func (r *PassengerRepository) GetByPhone(ctx context.Context, phone string) (*domain.Passenger, error) {
	query := `SELECT id, COALESCE(name, ''), COALESCE(phone, ''), created_at FROM passengers WHERE phone = $1`
	return r.scanPassenger(r.q.QueryRowContext(ctx, query, phone))
}

// GetAll retrieves all passengers.
func (r *PassengerRepository) GetAll(ctx context.Context) ([]*domain.Passenger, error) {
	query := `SELECT id, COALESCE(name, ''), COALESCE(phone, ''), created_at FROM passengers ORDER BY created_at DESC`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var passengers []*domain.Passenger
	for rows.Next() {
		var p domain.Passenger
		if err := rows.Scan(&p.ID, &p.Name, &p.Phone, &p.CreatedAt); err != nil {
			return nil, err
		}
		passengers = append(passengers, &p)
	}
	return passengers, rows.Err()
}

func (r *PassengerRepository) scanPassenger(row *sql.Row) (*domain.Passenger, error) {
	var p domain.Passenger
	err := row.Scan(&p.ID, &p.Name, &p.Phone, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
