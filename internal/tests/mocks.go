package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"ridelink/internal/domain"
	"ridelink/internal/geo"
	"ridelink/internal/redis"
	"ridelink/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK RIDER REPOSITORY
// ──────────────────────────────────────────────

// MockRiderRepository is a mock implementation of RiderRepository.
type MockRiderRepository struct {
	mu     sync.RWMutex
	riders map[string]*domain.Rider

	// Counters for verification
	CreateCallCount       int32
	SetStatusCallCount    int32
	SetAvailableCallCount int32

	// Error injection
	CreateError       error
	SetStatusError    error
	SetAvailableError error
}

// NewMockRiderRepository creates a new mock rider repository.
func NewMockRiderRepository() *MockRiderRepository {
	return &MockRiderRepository{
		riders: make(map[string]*domain.Rider),
	}
}

// AddRider adds a rider to the mock repository.
func (m *MockRiderRepository) AddRider(rider *domain.Rider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.riders[rider.ID] = rider
}

func (m *MockRiderRepository) Create(ctx context.Context, rider *domain.Rider) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.riders[rider.ID] = rider
	return nil
}

func (m *MockRiderRepository) GetByID(ctx context.Context, id string) (*domain.Rider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rider, ok := m.riders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *rider
	return &copy, nil
}

func (m *MockRiderRepository) GetByPhone(ctx context.Context, phone string) (*domain.Rider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.riders {
		if r.Phone == phone {
			copy := *r
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockRiderRepository) GetAll(ctx context.Context) ([]*domain.Rider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Rider, 0, len(m.riders))
	for _, r := range m.riders {
		copy := *r
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockRiderRepository) SetStatus(ctx context.Context, id string, isOnline, isAvailable bool) error {
	atomic.AddInt32(&m.SetStatusCallCount, 1)
	if m.SetStatusError != nil {
		return m.SetStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rider, ok := m.riders[id]
	if !ok {
		return repository.ErrNotFound
	}
	rider.IsOnline = isOnline
	rider.IsAvailable = isAvailable
	return nil
}

func (m *MockRiderRepository) SetAvailable(ctx context.Context, id string, isAvailable bool) error {
	atomic.AddInt32(&m.SetAvailableCallCount, 1)
	if m.SetAvailableError != nil {
		return m.SetAvailableError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rider, ok := m.riders[id]
	if !ok {
		return repository.ErrNotFound
	}
	rider.IsAvailable = isAvailable
	return nil
}

func (m *MockRiderRepository) UpdateLocation(ctx context.Context, id string, lat, lng float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rider, ok := m.riders[id]
	if !ok {
		return repository.ErrNotFound
	}
	rider.Lat = lat
	rider.Lng = lng
	rider.LocationUpdatedAt = time.Now()
	return nil
}

// GetRider returns the stored rider for test assertions.
func (m *MockRiderRepository) GetRider(id string) *domain.Rider {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.riders[id]
}

// ──────────────────────────────────────────────
// MOCK REQUEST REPOSITORY
// ──────────────────────────────────────────────

// MockRequestRepository is a mock implementation of RequestRepository.
// Assign is a real compare-and-swap under the mutex, so concurrent
// accept tests behave like the SQL conditional update.
type MockRequestRepository struct {
	mu       sync.Mutex
	requests map[string]*domain.RideRequest

	// Counters for verification
	CreateCallCount int32
	AssignCallCount int32

	// Error injection
	CreateError error
	AssignError error
}

// NewMockRequestRepository creates a new mock request repository.
func NewMockRequestRepository() *MockRequestRepository {
	return &MockRequestRepository{
		requests: make(map[string]*domain.RideRequest),
	}
}

// AddRequest adds a request to the mock repository.
func (m *MockRequestRepository) AddRequest(req *domain.RideRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[req.ID] = req
}

func (m *MockRequestRepository) Create(ctx context.Context, req *domain.RideRequest) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[req.ID] = req
	return nil
}

func (m *MockRequestRepository) GetByID(ctx context.Context, id string) (*domain.RideRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *req
	return &copy, nil
}

func (m *MockRequestRepository) GetAll(ctx context.Context) ([]*domain.RideRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.RideRequest, 0, len(m.requests))
	for _, req := range m.requests {
		copy := *req
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockRequestRepository) GetPending(ctx context.Context, vehicleType domain.VehicleType) ([]*domain.RideRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.RideRequest
	for _, req := range m.requests {
		if req.Status != domain.RequestStatusPending {
			continue
		}
		if vehicleType != "" && req.VehicleType != vehicleType {
			continue
		}
		copy := *req
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockRequestRepository) Assign(ctx context.Context, requestID, riderID string, at time.Time) (bool, error) {
	atomic.AddInt32(&m.AssignCallCount, 1)
	if m.AssignError != nil {
		return false, m.AssignError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[requestID]
	if !ok {
		return false, nil
	}
	if req.Status != domain.RequestStatusPending || req.AssignedRiderID != "" {
		return false, nil
	}
	req.Status = domain.RequestStatusAccepted
	req.AssignedRiderID = riderID
	req.AcceptedAt = at
	return true, nil
}

func (m *MockRequestRepository) MarkArrived(ctx context.Context, id string, at time.Time) (bool, error) {
	return m.conditionalMove(id, domain.RequestStatusAccepted, domain.RequestStatusArrived, func(req *domain.RideRequest) {
		req.ArrivedAt = at
	})
}

func (m *MockRequestRepository) MarkPickedUp(ctx context.Context, id string, at time.Time) (bool, error) {
	return m.conditionalMove(id, domain.RequestStatusArrived, domain.RequestStatusPickedUp, func(req *domain.RideRequest) {
		req.PickedUpAt = at
	})
}

func (m *MockRequestRepository) MarkCompleted(ctx context.Context, id string, at time.Time) (bool, error) {
	return m.conditionalMove(id, domain.RequestStatusPickedUp, domain.RequestStatusCompleted, func(req *domain.RideRequest) {
		req.CompletedAt = at
	})
}

func (m *MockRequestRepository) Cancel(ctx context.Context, id, reason string, at time.Time) (bool, error) {
	return m.conditionalMove(id, domain.RequestStatusPending, domain.RequestStatusCancelled, func(req *domain.RideRequest) {
		req.CancelledAt = at
		req.CancelReason = reason
	})
}

func (m *MockRequestRepository) conditionalMove(id string, from, to domain.RequestStatus, apply func(*domain.RideRequest)) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return false, nil
	}
	if req.Status != from {
		return false, nil
	}
	req.Status = to
	apply(req)
	return true, nil
}

// GetRequest returns the stored request for test assertions.
func (m *MockRequestRepository) GetRequest(id string) *domain.RideRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[id]
}

// ──────────────────────────────────────────────
// MOCK RESPONSE REPOSITORY
// ──────────────────────────────────────────────

type responseKey struct {
	requestID string
	riderID   string
}

// MockResponseRepository is a mock implementation of ResponseRepository.
type MockResponseRepository struct {
	mu      sync.Mutex
	records map[responseKey]*domain.ResponseRecord

	// Counters for verification
	RecordShownCallCount int32
	SetResponseCallCount int32

	// Error injection
	RecordShownError error
	SetResponseError error
}

// NewMockResponseRepository creates a new mock response repository.
func NewMockResponseRepository() *MockResponseRepository {
	return &MockResponseRepository{
		records: make(map[responseKey]*domain.ResponseRecord),
	}
}

func (m *MockResponseRepository) RecordShown(ctx context.Context, requestID, riderID string) error {
	atomic.AddInt32(&m.RecordShownCallCount, 1)
	if m.RecordShownError != nil {
		return m.RecordShownError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := responseKey{requestID, riderID}
	if _, ok := m.records[key]; ok {
		return nil
	}
	m.records[key] = &domain.ResponseRecord{
		RequestID: requestID,
		RiderID:   riderID,
		Response:  domain.ResponseShown,
		ShownAt:   time.Now(),
	}
	return nil
}

func (m *MockResponseRepository) Get(ctx context.Context, requestID, riderID string) (*domain.ResponseRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[responseKey{requestID, riderID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *rec
	return &copy, nil
}

func (m *MockResponseRepository) SetResponse(ctx context.Context, requestID, riderID string, response domain.RiderResponse) (bool, error) {
	atomic.AddInt32(&m.SetResponseCallCount, 1)
	if m.SetResponseError != nil {
		return false, m.SetResponseError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := responseKey{requestID, riderID}
	rec, ok := m.records[key]
	if !ok {
		m.records[key] = &domain.ResponseRecord{
			RequestID:   requestID,
			RiderID:     riderID,
			Response:    response,
			ShownAt:     time.Now(),
			RespondedAt: time.Now(),
		}
		return true, nil
	}
	if rec.Response != domain.ResponseShown {
		return false, nil
	}
	rec.Response = response
	rec.RespondedAt = time.Now()
	return true, nil
}

func (m *MockResponseRepository) ListClosedRequestIDs(ctx context.Context, riderID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for key, rec := range m.records {
		if key.riderID == riderID && rec.Response.Closed() {
			ids = append(ids, key.requestID)
		}
	}
	return ids, nil
}

func (m *MockResponseRepository) ExpireStale(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var expired int64
	for _, rec := range m.records {
		if rec.Response == domain.ResponseShown && rec.ShownAt.Before(cutoff) {
			rec.Response = domain.ResponseTimeout
			rec.RespondedAt = time.Now()
			expired++
		}
	}
	return expired, nil
}

// GetRecord returns the stored ledger row for test assertions.
func (m *MockResponseRepository) GetRecord(requestID, riderID string) *domain.ResponseRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[responseKey{requestID, riderID}]
}

// ──────────────────────────────────────────────
// MOCK PAYMENT REPOSITORY
// ──────────────────────────────────────────────

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment

	CreateCallCount int32
	CreateError     error
}

// NewMockPaymentRepository creates a new mock payment repository.
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[string]*domain.Payment),
	}
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = payment
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	payment, ok := m.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *payment
	return &copy, nil
}

func (m *MockPaymentRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.IdempotencyKey == key {
			copy := *p
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockPaymentRepository) UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	payment.Status = status
	return nil
}

// ──────────────────────────────────────────────
// MOCK LOCATION STORE
// ──────────────────────────────────────────────

// MockLocationStore is an in-memory stand-in for the Redis geo index.
// Distances are computed with the same haversine the services use.
type MockLocationStore struct {
	mu        sync.RWMutex
	locations map[string][2]float64 // riderID -> [lat, lng]

	// Error injection
	UpdateError error
	FindError   error
}

// NewMockLocationStore creates a new mock location store.
func NewMockLocationStore() *MockLocationStore {
	return &MockLocationStore{
		locations: make(map[string][2]float64),
	}
}

func (m *MockLocationStore) UpdateLocation(ctx context.Context, riderID string, lat, lng float64) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations[riderID] = [2]float64{lat, lng}
	return nil
}

func (m *MockLocationStore) FindNearbyRiders(ctx context.Context, lat, lng, radiusKm float64) ([]redis.RiderLocation, error) {
	if m.FindError != nil {
		return nil, m.FindError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []redis.RiderLocation
	for riderID, loc := range m.locations {
		dist := geo.DistanceKm(lat, lng, loc[0], loc[1])
		if dist <= radiusKm {
			result = append(result, redis.RiderLocation{
				RiderID:    riderID,
				Lat:        loc[0],
				Lng:        loc[1],
				DistanceKm: dist,
			})
		}
	}
	// Nearest first, like GEORADIUS with ASC sort.
	for i := 0; i < len(result); i++ {
		for j := i + 1; j < len(result); j++ {
			if result[j].DistanceKm < result[i].DistanceKm {
				result[i], result[j] = result[j], result[i]
			}
		}
	}
	return result, nil
}

func (m *MockLocationStore) GetLocation(ctx context.Context, riderID string) (float64, float64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	loc, ok := m.locations[riderID]
	if !ok {
		return 0, 0, false, nil
	}
	return loc[0], loc[1], true, nil
}

func (m *MockLocationStore) RemoveLocation(ctx context.Context, riderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locations, riderID)
	return nil
}

// HasLocation reports whether the rider is in the geo index.
func (m *MockLocationStore) HasLocation(riderID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.locations[riderID]
	return ok
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is an in-memory stand-in for the Redis SetNX lock.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]bool

	AcquireCallCount int32
	AcquireError     error
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]bool),
	}
}

func (m *MockLockStore) AcquireRiderLock(ctx context.Context, riderID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[riderID] {
		return false, nil
	}
	m.locks[riderID] = true
	return true, nil
}

func (m *MockLockStore) ReleaseRiderLock(ctx context.Context, riderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, riderID)
	return nil
}

// ──────────────────────────────────────────────
// MOCK PSP
// ──────────────────────────────────────────────

// MockFailingPSP is a PSP that always declines the charge.
type MockFailingPSP struct {
	ChargeCallCount int32
}

func (p *MockFailingPSP) Charge(ctx context.Context, amount float64) (bool, error) {
	atomic.AddInt32(&p.ChargeCallCount, 1)
	return false, nil
}
