package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const riderLocationKey = "riders:locations"

// RiderLocation represents a rider's position, with the distance from
// the query point populated on nearby lookups.
type RiderLocation struct {
	RiderID    string
	Lat        float64
	Lng        float64
	DistanceKm float64
}

// LocationStore handles rider location operations in Redis.
type LocationStore struct {
	client *redis.Client
}

// NewLocationStore creates a new LocationStore.
func NewLocationStore(client *redis.Client) *LocationStore {
	return &LocationStore{client: client}
}

// UpdateLocation stores a rider's location using GEOADD.
func (s *LocationStore) UpdateLocation(ctx context.Context, riderID string, lat, lng float64) error {
	return s.client.GeoAdd(ctx, riderLocationKey, &redis.GeoLocation{
		Name:      riderID,
		Longitude: lng,
		Latitude:  lat,
	}).Err()
}

// FindNearbyRiders returns riders within the given radius in kilometers,
// sorted ascending by distance from the query point.
func (s *LocationStore) FindNearbyRiders(ctx context.Context, lat, lng, radiusKm float64) ([]RiderLocation, error) {
	results, err := s.client.GeoRadius(ctx, riderLocationKey, lng, lat, &redis.GeoRadiusQuery{
		Radius:    radiusKm,
		Unit:      "km",
		WithCoord: true,
		WithDist:  true,
		Sort:      "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}

	locations := make([]RiderLocation, 0, len(results))
	for _, r := range results {
		locations = append(locations, RiderLocation{
			RiderID:    r.Name,
			Lat:        r.Latitude,
			Lng:        r.Longitude,
			DistanceKm: r.Dist,
		})
	}

	return locations, nil
}

// GetLocation returns a rider's last-known position from the geo index.
// The bool result is false when the rider has no stored position.
func (s *LocationStore) GetLocation(ctx context.Context, riderID string) (lat, lng float64, ok bool, err error) {
	positions, err := s.client.GeoPos(ctx, riderLocationKey, riderID).Result()
	if err != nil {
		return 0, 0, false, err
	}
	if len(positions) == 0 || positions[0] == nil {
		return 0, 0, false, nil
	}
	return positions[0].Latitude, positions[0].Longitude, true, nil
}

// RemoveLocation removes a rider's location from the geo index.
func (s *LocationStore) RemoveLocation(ctx context.Context, riderID string) error {
	return s.client.ZRem(ctx, riderLocationKey, riderID).Err()
}
