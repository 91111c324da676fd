package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// Cache TTL constants
const (
	RiderCacheTTL   = 30 * time.Second // Availability flags change frequently
	RequestCacheTTL = 10 * time.Second // Request status changes during assignment
)

// Key prefixes
const (
	riderCachePrefix   = "cache:rider:"
	requestCachePrefix = "cache:request:"
	availableRidersKey = "riders:available"
)

// CachedRider represents a cached rider entity.
type CachedRider struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	VehicleType string `json:"vehicle_type"`
	IsOnline    bool   `json:"is_online"`
	IsAvailable bool   `json:"is_available"`
}

// CachedRequest is the cached copy of a ride request. It carries the
// full row so status polls can be served without touching Postgres.
type CachedRequest struct {
	ID              string    `json:"id"`
	PassengerID     string    `json:"passenger_id"`
	AssignedRiderID string    `json:"assigned_rider_id"`
	PickupLat       float64   `json:"pickup_lat"`
	PickupLng       float64   `json:"pickup_lng"`
	PickupAddress   string    `json:"pickup_address"`
	DropoffLat      float64   `json:"dropoff_lat"`
	DropoffLng      float64   `json:"dropoff_lng"`
	DropoffAddress  string    `json:"dropoff_address"`
	VehicleType     string    `json:"vehicle_type"`
	Status          string    `json:"status"`
	Fare            float64   `json:"fare"`
	DistanceKm      float64   `json:"distance_km"`
	RequestedAt     time.Time `json:"requested_at"`
	AcceptedAt      time.Time `json:"accepted_at"`
	ArrivedAt       time.Time `json:"arrived_at"`
	PickedUpAt      time.Time `json:"picked_up_at"`
	CompletedAt     time.Time `json:"completed_at"`
	CancelledAt     time.Time `json:"cancelled_at"`
	CancelReason    string    `json:"cancel_reason"`
}

// GetRidersBatch fetches riders from cache in a single pipeline.
// Returns the hits keyed by ID and the IDs that missed.
func (s *CacheStore) GetRidersBatch(ctx context.Context, riderIDs []string) (map[string]*CachedRider, []string, error) {
	if len(riderIDs) == 0 {
		return map[string]*CachedRider{}, nil, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(riderIDs))
	for i, id := range riderIDs {
		cmds[i] = pipe.Get(ctx, riderCachePrefix+id)
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, riderIDs, err
	}

	hits := make(map[string]*CachedRider)
	var misses []string
	for i, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			misses = append(misses, riderIDs[i])
			continue
		}
		var rider CachedRider
		if err := json.Unmarshal(data, &rider); err != nil {
			misses = append(misses, riderIDs[i])
			continue
		}
		hits[rider.ID] = &rider
	}
	return hits, misses, nil
}

// SetRider stores a rider in cache.
func (s *CacheStore) SetRider(ctx context.Context, rider *CachedRider) error {
	data, err := json.Marshal(rider)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, riderCachePrefix+rider.ID, data, RiderCacheTTL).Err()
}

// InvalidateRider removes a rider from cache.
func (s *CacheStore) InvalidateRider(ctx context.Context, riderID string) error {
	return s.client.Del(ctx, riderCachePrefix+riderID).Err()
}

// GetRequest retrieves a ride request from cache. Returns (nil, nil) on a miss.
func (s *CacheStore) GetRequest(ctx context.Context, requestID string) (*CachedRequest, error) {
	data, err := s.client.Get(ctx, requestCachePrefix+requestID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var req CachedRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// SetRequest stores a ride request in cache.
func (s *CacheStore) SetRequest(ctx context.Context, req *CachedRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, requestCachePrefix+req.ID, data, RequestCacheTTL).Err()
}

// InvalidateRequest removes a ride request from cache.
func (s *CacheStore) InvalidateRequest(ctx context.Context, requestID string) error {
	return s.client.Del(ctx, requestCachePrefix+requestID).Err()
}

// AddAvailableRider adds a rider to the available-riders set.
func (s *CacheStore) AddAvailableRider(ctx context.Context, riderID string) error {
	return s.client.SAdd(ctx, availableRidersKey, riderID).Err()
}

// RemoveAvailableRider removes a rider from the available-riders set.
func (s *CacheStore) RemoveAvailableRider(ctx context.Context, riderID string) error {
	return s.client.SRem(ctx, availableRidersKey, riderID).Err()
}
