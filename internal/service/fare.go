package service

import (
	"context"

	"ridelink/internal/domain"
	"ridelink/internal/geo"
	"ridelink/internal/redis"
	"ridelink/internal/repository"
)

// FareService estimates fares for ride requests. The estimate is a
// per-vehicle base plus a per-kilometer rate, scaled by a supply/demand
// multiplier around the pickup point.
type FareService struct {
	locationStore redis.LocationStoreInterface
	requestRepo   repository.RequestRepository
}

// NewFareService creates a new FareService.
func NewFareService(
	locationStore redis.LocationStoreInterface,
	requestRepo repository.RequestRepository,
) *FareService {
	return &FareService{
		locationStore: locationStore,
		requestRepo:   requestRepo,
	}
}

// vehicleRate holds the pricing parameters for one vehicle type.
type vehicleRate struct {
	Base    float64
	PerKm   float64
	Minimum float64
}

// Rates are in LKR.
var vehicleRates = map[domain.VehicleType]vehicleRate{
	domain.VehicleBike: {Base: 50, PerKm: 60, Minimum: 100},
	domain.VehicleTuk:  {Base: 80, PerKm: 80, Minimum: 150},
	domain.VehicleCar:  {Base: 150, PerKm: 120, Minimum: 300},
}

// DemandConfig contains the supply/demand multiplier thresholds.
type DemandConfig struct {
	RadiusKm       float64
	LowDemandRatio float64
	MidDemandRatio float64
	MaxMultiplier  float64
}

// DefaultDemandConfig returns the default demand configuration.
func DefaultDemandConfig() DemandConfig {
	return DemandConfig{
		RadiusKm:       5.0,
		LowDemandRatio: 1.2,
		MidDemandRatio: 1.5,
		MaxMultiplier:  2.0,
	}
}

// EstimateRequest contains the parameters for a fare estimate.
type EstimateRequest struct {
	VehicleType domain.VehicleType
	PickupLat   float64
	PickupLng   float64
	DistanceKm  float64
}

// Estimate returns the fare estimate for a request. Unknown vehicle
// types price as cars.
func (s *FareService) Estimate(ctx context.Context, req EstimateRequest) float64 {
	rate, ok := vehicleRates[req.VehicleType]
	if !ok {
		rate = vehicleRates[domain.VehicleCar]
	}

	fare := rate.Base + rate.PerKm*req.DistanceKm
	if fare < rate.Minimum {
		fare = rate.Minimum
	}

	return fare * s.Multiplier(ctx, req.PickupLat, req.PickupLng)
}

// Multiplier returns the demand multiplier for a pickup point: 1.0 in
// balance, up to MaxMultiplier when pending requests outnumber nearby
// riders.
func (s *FareService) Multiplier(ctx context.Context, lat, lng float64) float64 {
	cfg := DefaultDemandConfig()

	supply := s.countRidersInArea(ctx, lat, lng, cfg.RadiusKm)
	demand := s.countPendingInArea(ctx, lat, lng, cfg.RadiusKm)

	if supply == 0 {
		if demand > 0 {
			return cfg.MaxMultiplier
		}
		return 1.0
	}

	ratio := float64(demand) / float64(supply)
	switch {
	case ratio >= cfg.MidDemandRatio:
		return cfg.MaxMultiplier
	case ratio >= cfg.LowDemandRatio:
		return 1.5
	default:
		return 1.0
	}
}

func (s *FareService) countRidersInArea(ctx context.Context, lat, lng, radiusKm float64) int {
	riders, err := s.locationStore.FindNearbyRiders(ctx, lat, lng, radiusKm)
	if err != nil {
		// Fail open: assume healthy supply rather than inflate fares.
		return 10
	}
	return len(riders)
}

func (s *FareService) countPendingInArea(ctx context.Context, lat, lng, radiusKm float64) int {
	pending, err := s.requestRepo.GetPending(ctx, "")
	if err != nil {
		return 0
	}

	count := 0
	for _, req := range pending {
		if geo.DistanceKm(lat, lng, req.PickupLat, req.PickupLng) <= radiusKm {
			count++
		}
	}
	return count
}
