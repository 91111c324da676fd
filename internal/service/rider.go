package service

import (
	"context"

	"ridelink/internal/geo"
	"ridelink/internal/redis"
	"ridelink/internal/repository"
)

// RiderService handles rider availability and location updates.
type RiderService struct {
	locationStore redis.LocationStoreInterface
	cacheStore    *redis.CacheStore
	riderRepo     repository.RiderRepository
}

// NewRiderService creates a new RiderService.
func NewRiderService(
	locationStore redis.LocationStoreInterface,
	cacheStore *redis.CacheStore,
	riderRepo repository.RiderRepository,
) *RiderService {
	return &RiderService{
		locationStore: locationStore,
		cacheStore:    cacheStore,
		riderRepo:     riderRepo,
	}
}

// SetStatusRequest contains the parameters for updating rider status.
type SetStatusRequest struct {
	RiderID     string
	IsOnline    bool
	IsAvailable bool
}

// SetStatus writes the rider's online/available flags. Idempotent:
// repeated calls with the same arguments always succeed and leave the
// same state. Going offline removes the rider from the geo index so
// nearby queries stop seeing them immediately.
func (s *RiderService) SetStatus(ctx context.Context, req SetStatusRequest) error {
	if req.RiderID == "" {
		return ErrInvalidRiderID
	}

	// A rider who is not online cannot be available.
	isAvailable := req.IsAvailable && req.IsOnline

	if err := s.riderRepo.SetStatus(ctx, req.RiderID, req.IsOnline, isAvailable); err != nil {
		return err
	}

	if !req.IsOnline {
		if err := s.locationStore.RemoveLocation(ctx, req.RiderID); err != nil {
			return err
		}
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.InvalidateRider(ctx, req.RiderID)
		if req.IsOnline && isAvailable {
			_ = s.cacheStore.AddAvailableRider(ctx, req.RiderID)
		} else {
			_ = s.cacheStore.RemoveAvailableRider(ctx, req.RiderID)
		}
	}

	return nil
}

// UpdateLocationRequest contains the parameters for a location tick.
type UpdateLocationRequest struct {
	RiderID string
	Lat     float64
	Lng     float64
}

// UpdateLocation overwrites the rider's last-known position. Only the
// latest position is kept; the geo index is the real-time source and
// the riders row is a mirror for cold starts.
func (s *RiderService) UpdateLocation(ctx context.Context, req UpdateLocationRequest) error {
	if req.RiderID == "" {
		return ErrInvalidRiderID
	}

	if !geo.ValidLatitude(req.Lat) || !geo.ValidLongitude(req.Lng) {
		return ErrInvalidLocation
	}

	if err := s.riderRepo.UpdateLocation(ctx, req.RiderID, req.Lat, req.Lng); err != nil {
		return err
	}

	if err := s.locationStore.UpdateLocation(ctx, req.RiderID, req.Lat, req.Lng); err != nil {
		return err
	}

	if s.cacheStore != nil {
		rider, err := s.riderRepo.GetByID(ctx, req.RiderID)
		if err == nil {
			_ = s.cacheStore.SetRider(ctx, &redis.CachedRider{
				ID:          rider.ID,
				Name:        rider.Name,
				Phone:       rider.Phone,
				VehicleType: string(rider.VehicleType),
				IsOnline:    rider.IsOnline,
				IsAvailable: rider.IsAvailable,
			})
		}
	}

	return nil
}
