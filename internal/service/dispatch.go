package service

import (
	"context"
	"sort"

	"ridelink/internal/config"
	"ridelink/internal/domain"
	"ridelink/internal/geo"
	"ridelink/internal/redis"
	"ridelink/internal/repository"
)

// DispatchService answers the two nearby queries: riders near a pickup
// point, and pending requests near a polling rider.
type DispatchService struct {
	locationStore redis.LocationStoreInterface
	cacheStore    *redis.CacheStore
	riderRepo     repository.RiderRepository
	requestRepo   repository.RequestRepository
	responseRepo  repository.ResponseRepository
	cfg           config.DispatchConfig
}

// NewDispatchService creates a new DispatchService.
func NewDispatchService(
	locationStore redis.LocationStoreInterface,
	cacheStore *redis.CacheStore,
	riderRepo repository.RiderRepository,
	requestRepo repository.RequestRepository,
	responseRepo repository.ResponseRepository,
	cfg config.DispatchConfig,
) *DispatchService {
	return &DispatchService{
		locationStore: locationStore,
		cacheStore:    cacheStore,
		riderRepo:     riderRepo,
		requestRepo:   requestRepo,
		responseRepo:  responseRepo,
		cfg:           cfg,
	}
}

// NearbyRider is a candidate rider for a pickup point.
type NearbyRider struct {
	Rider      *domain.Rider
	DistanceKm float64
}

// FindNearbyRiders returns online, available riders within radiusKm of
// the given point, nearest first. An empty vehicleType matches any
// vehicle.
func (s *DispatchService) FindNearbyRiders(ctx context.Context, lat, lng, radiusKm float64, vehicleType domain.VehicleType) ([]NearbyRider, error) {
	if radiusKm <= 0 {
		radiusKm = s.cfg.DefaultRadiusKm
	}

	locations, err := s.locationStore.FindNearbyRiders(ctx, lat, lng, radiusKm)
	if err != nil {
		return nil, err
	}
	if len(locations) == 0 {
		return nil, nil
	}

	riderIDs := make([]string, len(locations))
	for i, loc := range locations {
		riderIDs[i] = loc.RiderID
	}
	cached := s.getRidersBatch(ctx, riderIDs)

	// The geo result is already sorted ascending by distance.
	var nearby []NearbyRider
	for _, loc := range locations {
		rider, err := s.resolveRider(ctx, loc.RiderID, cached)
		if err != nil {
			if err == repository.ErrNotFound {
				continue
			}
			return nil, err
		}

		if !rider.IsOnline || !rider.IsAvailable {
			continue
		}
		if vehicleType != "" && rider.VehicleType != vehicleType {
			continue
		}

		nearby = append(nearby, NearbyRider{Rider: rider, DistanceKm: loc.DistanceKm})
	}

	return nearby, nil
}

// SurfacedRequest is a pending request offered to a polling rider.
type SurfacedRequest struct {
	Request    *domain.RideRequest
	DistanceKm float64
}

// PollResult is the answer to a rider's nearby-requests poll.
type PollResult struct {
	Requests []SurfacedRequest

	// RecommendedRadiusKm is the radius that actually produced the
	// result set, after any escalation on empty results.
	RecommendedRadiusKm float64
}

// NearbyRequestsForRider returns pending requests whose pickup lies
// within radiusKm of the rider, nearest first. Requests the rider has
// already declined or timed out on are suppressed. On an empty result
// the radius doubles up to the configured maximum, and the radius that
// produced the final set is reported back. Every surfaced request gets
// a shown ledger row.
func (s *DispatchService) NearbyRequestsForRider(ctx context.Context, riderID string, radiusKm float64) (*PollResult, error) {
	if riderID == "" {
		return nil, ErrInvalidRiderID
	}
	if radiusKm <= 0 {
		radiusKm = s.cfg.DefaultRadiusKm
	}

	rider, err := s.riderRepo.GetByID(ctx, riderID)
	if err != nil {
		return nil, err
	}

	// An offline or busy rider polls an empty set.
	if !rider.IsOnline || !rider.IsAvailable {
		return &PollResult{RecommendedRadiusKm: radiusKm}, nil
	}

	lat, lng, ok, err := s.locationStore.GetLocation(ctx, riderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// No geo entry yet; fall back to the mirrored position.
		if rider.LocationUpdatedAt.IsZero() {
			return &PollResult{RecommendedRadiusKm: radiusKm}, nil
		}
		lat, lng = rider.Lat, rider.Lng
	}

	pending, err := s.requestRepo.GetPending(ctx, rider.VehicleType)
	if err != nil {
		return nil, err
	}

	closedIDs, err := s.responseRepo.ListClosedRequestIDs(ctx, riderID)
	if err != nil {
		return nil, err
	}
	closed := make(map[string]struct{}, len(closedIDs))
	for _, id := range closedIDs {
		closed[id] = struct{}{}
	}

	var candidates []SurfacedRequest
	for _, req := range pending {
		if _, skip := closed[req.ID]; skip {
			continue
		}
		candidates = append(candidates, SurfacedRequest{
			Request:    req,
			DistanceKm: geo.DistanceKm(lat, lng, req.PickupLat, req.PickupLng),
		})
	}

	// Radius escalation: double until something matches or the cap is hit.
	radius := radiusKm
	var matches []SurfacedRequest
	for {
		matches = matches[:0]
		for _, c := range candidates {
			if c.DistanceKm <= radius {
				matches = append(matches, c)
			}
		}
		if len(matches) > 0 || radius >= s.cfg.MaxRadiusKm {
			break
		}
		radius *= 2
		if radius > s.cfg.MaxRadiusKm {
			radius = s.cfg.MaxRadiusKm
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].DistanceKm < matches[j].DistanceKm
	})

	for _, m := range matches {
		if err := s.responseRepo.RecordShown(ctx, m.Request.ID, riderID); err != nil {
			return nil, err
		}
	}

	result := &PollResult{RecommendedRadiusKm: radius}
	result.Requests = append(result.Requests, matches...)
	return result, nil
}

// getRidersBatch fetches riders from cache, returning an empty map when
// no cache is wired.
func (s *DispatchService) getRidersBatch(ctx context.Context, riderIDs []string) map[string]*redis.CachedRider {
	if s.cacheStore == nil {
		return map[string]*redis.CachedRider{}
	}
	hits, _, err := s.cacheStore.GetRidersBatch(ctx, riderIDs)
	if err != nil {
		return map[string]*redis.CachedRider{}
	}
	return hits
}

// resolveRider returns a rider from cache when possible, falling back
// to the repository and refilling the cache on a miss.
func (s *DispatchService) resolveRider(ctx context.Context, riderID string, cached map[string]*redis.CachedRider) (*domain.Rider, error) {
	if c, ok := cached[riderID]; ok {
		return &domain.Rider{
			ID:          c.ID,
			Name:        c.Name,
			Phone:       c.Phone,
			VehicleType: domain.VehicleType(c.VehicleType),
			IsOnline:    c.IsOnline,
			IsAvailable: c.IsAvailable,
		}, nil
	}

	rider, err := s.riderRepo.GetByID(ctx, riderID)
	if err != nil {
		return nil, err
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.SetRider(ctx, &redis.CachedRider{
			ID:          rider.ID,
			Name:        rider.Name,
			Phone:       rider.Phone,
			VehicleType: string(rider.VehicleType),
			IsOnline:    rider.IsOnline,
			IsAvailable: rider.IsAvailable,
		})
	}
	return rider, nil
}
