package redis

import (
	"context"
	"time"
)

// LocationStoreInterface defines the interface for rider location operations.
type LocationStoreInterface interface {
	UpdateLocation(ctx context.Context, riderID string, lat, lng float64) error
	FindNearbyRiders(ctx context.Context, lat, lng, radiusKm float64) ([]RiderLocation, error)
	GetLocation(ctx context.Context, riderID string) (lat, lng float64, ok bool, err error)
	RemoveLocation(ctx context.Context, riderID string) error
}

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireRiderLock(ctx context.Context, riderID string, ttl time.Duration) (bool, error)
	ReleaseRiderLock(ctx context.Context, riderID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ LocationStoreInterface = (*LocationStore)(nil)
	_ LockStoreInterface     = (*LockStore)(nil)
)
