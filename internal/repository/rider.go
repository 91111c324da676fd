package repository

import (
	"context"

	"ridelink/internal/domain"
)

// RiderRepository defines the persistence operations for riders.
type RiderRepository interface {
	// Create adds a new rider.
	Create(ctx context.Context, rider *domain.Rider) error

	// GetByID retrieves a rider by ID.
	GetByID(ctx context.Context, id string) (*domain.Rider, error)

	// GetByPhone retrieves a rider by phone number.
	GetByPhone(ctx context.Context, phone string) (*domain.Rider, error)

	// GetAll retrieves all riders.
	GetAll(ctx context.Context) ([]*domain.Rider, error)

	// SetStatus writes the online/available flags. Idempotent.
	SetStatus(ctx context.Context, id string, isOnline, isAvailable bool) error

	// SetAvailable writes only the available flag.
	SetAvailable(ctx context.Context, id string, isAvailable bool) error

	// UpdateLocation overwrites the rider's last-known position and
	// refreshes the location timestamp. No history is retained.
	UpdateLocation(ctx context.Context, id string, lat, lng float64) error
}
