package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ridelink/internal/domain"
	"ridelink/internal/geo"
	"ridelink/internal/redis"
	"ridelink/internal/repository"
)

const acceptLockTTL = 10 * time.Second

// FareEstimator is the fare estimation contract, satisfied by
// FareService and by test stubs.
type FareEstimator interface {
	Estimate(ctx context.Context, req EstimateRequest) float64
}

var _ FareEstimator = (*FareService)(nil)

// NearbyRiderFinder locates candidate riders for a pickup point.
// Satisfied by DispatchService.
type NearbyRiderFinder interface {
	FindNearbyRiders(ctx context.Context, lat, lng, radiusKm float64, vehicleType domain.VehicleType) ([]NearbyRider, error)
}

var _ NearbyRiderFinder = (*DispatchService)(nil)

// RequestService owns the ride-request lifecycle:
// pending -> accepted -> arrived -> picked_up -> completed, with
// pending -> cancelled as the passenger's exit. Every transition is a
// single-row conditional update; a failed precondition leaves the row
// untouched and reports why.
type RequestService struct {
	requestRepo  repository.RequestRepository
	riderRepo    repository.RiderRepository
	responseRepo repository.ResponseRepository
	lockStore    redis.LockStoreInterface
	cacheStore   *redis.CacheStore
	fare         FareEstimator
	finder       NearbyRiderFinder
	notification *NotificationService
	payment      *PaymentService
	receipt      *ReceiptService
}

// NewRequestService creates a new RequestService.
func NewRequestService(
	requestRepo repository.RequestRepository,
	riderRepo repository.RiderRepository,
	responseRepo repository.ResponseRepository,
	lockStore redis.LockStoreInterface,
	cacheStore *redis.CacheStore,
	fare FareEstimator,
	finder NearbyRiderFinder,
	notification *NotificationService,
	payment *PaymentService,
	receipt *ReceiptService,
) *RequestService {
	return &RequestService{
		requestRepo:  requestRepo,
		riderRepo:    riderRepo,
		responseRepo: responseRepo,
		lockStore:    lockStore,
		cacheStore:   cacheStore,
		fare:         fare,
		finder:       finder,
		notification: notification,
		payment:      payment,
		receipt:      receipt,
	}
}

// CreateRequestParams contains the parameters for creating a ride request.
type CreateRequestParams struct {
	PassengerID    string
	PickupLat      float64
	PickupLng      float64
	PickupAddress  string
	DropoffLat     float64
	DropoffLng     float64
	DropoffAddress string
	VehicleType    domain.VehicleType
	Fare           float64 // 0 means estimate server-side
	DistanceKm     float64 // 0 means compute from coordinates
}

// CreateRequest validates and persists a new request in pending state,
// then notifies nearby riders. The request is visible to rider polls as
// soon as this returns.
func (s *RequestService) CreateRequest(ctx context.Context, params CreateRequestParams) (*domain.RideRequest, error) {
	if err := s.validateCreateParams(params); err != nil {
		return nil, err
	}

	distanceKm := params.DistanceKm
	if distanceKm <= 0 {
		distanceKm = geo.DistanceKm(params.PickupLat, params.PickupLng, params.DropoffLat, params.DropoffLng)
	}

	fare := params.Fare
	if fare <= 0 && s.fare != nil {
		fare = s.fare.Estimate(ctx, EstimateRequest{
			VehicleType: params.VehicleType,
			PickupLat:   params.PickupLat,
			PickupLng:   params.PickupLng,
			DistanceKm:  distanceKm,
		})
	}

	req := &domain.RideRequest{
		ID:             uuid.New().String(),
		PassengerID:    params.PassengerID,
		PickupLat:      params.PickupLat,
		PickupLng:      params.PickupLng,
		PickupAddress:  params.PickupAddress,
		DropoffLat:     params.DropoffLat,
		DropoffLng:     params.DropoffLng,
		DropoffAddress: params.DropoffAddress,
		VehicleType:    params.VehicleType,
		Status:         domain.RequestStatusPending,
		Fare:           fare,
		DistanceKm:     distanceKm,
		RequestedAt:    time.Now(),
	}

	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	s.cacheRequest(ctx, req)

	// Best-effort heads-up to nearby riders; the poll path is the
	// authoritative delivery channel.
	if s.finder != nil && s.notification != nil {
		if nearby, err := s.finder.FindNearbyRiders(ctx, req.PickupLat, req.PickupLng, 0, req.VehicleType); err == nil && len(nearby) > 0 {
			riderIDs := make([]string, len(nearby))
			for i, n := range nearby {
				riderIDs[i] = n.Rider.ID
			}
			_ = s.notification.NotifyRequestCreated(ctx, req, riderIDs)
		}
	}

	return req, nil
}

// GetRequest retrieves the current state of a request. Status polls
// are the hottest read, so the short-TTL cache is tried first; every
// transition invalidates it.
func (s *RequestService) GetRequest(ctx context.Context, requestID string) (*domain.RideRequest, error) {
	if requestID == "" {
		return nil, ErrInvalidRequestID
	}

	if s.cacheStore != nil {
		if cached, err := s.cacheStore.GetRequest(ctx, requestID); err == nil && cached != nil {
			return requestFromCache(cached), nil
		}
	}

	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	s.cacheRequest(ctx, req)
	return req, nil
}

// Accept assigns the request to the rider, first come first served.
// The assignment is a compare-and-swap on assigned_rider_id-is-null, so
// of two concurrent accepts exactly one succeeds and the other gets
// ErrAlreadyAssigned. A rider who declined or timed out on the request
// cannot accept it afterwards.
func (s *RequestService) Accept(ctx context.Context, riderID, requestID string) (*domain.RideRequest, error) {
	if riderID == "" {
		return nil, ErrInvalidRiderID
	}
	if requestID == "" {
		return nil, ErrInvalidRequestID
	}

	rider, err := s.riderRepo.GetByID(ctx, riderID)
	if err != nil {
		return nil, err
	}

	if rec, err := s.responseRepo.Get(ctx, requestID, riderID); err == nil && rec.Response.Closed() {
		return nil, ErrAlreadyResponded
	} else if err != nil && err != repository.ErrNotFound {
		return nil, err
	}

	if s.lockStore != nil {
		locked, err := s.lockStore.AcquireRiderLock(ctx, riderID, acceptLockTTL)
		if err != nil {
			return nil, err
		}
		if !locked {
			return nil, ErrRiderBusy
		}
		defer func() { _ = s.lockStore.ReleaseRiderLock(ctx, riderID) }()
	}

	assigned, err := s.requestRepo.Assign(ctx, requestID, riderID, time.Now())
	if err != nil {
		return nil, err
	}

	if !assigned {
		req, err := s.requestRepo.GetByID(ctx, requestID)
		if err != nil {
			return nil, err
		}
		// A stale retry of our own accept is not a conflict.
		if req.AssignedRiderID == riderID {
			return req, nil
		}
		if req.Terminal() {
			return nil, ErrInvalidTransition
		}
		return nil, ErrAlreadyAssigned
	}

	if _, err := s.responseRepo.SetResponse(ctx, requestID, riderID, domain.ResponseAccepted); err != nil {
		return nil, err
	}

	if err := s.riderRepo.SetAvailable(ctx, riderID, false); err != nil && err != repository.ErrNotFound {
		return nil, err
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.InvalidateRider(ctx, riderID)
		_ = s.cacheStore.RemoveAvailableRider(ctx, riderID)
		_ = s.cacheStore.InvalidateRequest(ctx, requestID)
	}

	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if s.notification != nil {
		_ = s.notification.NotifyRiderAssigned(ctx, req, rider)
	}

	return req, nil
}

// Decline records that the rider passed on the request, either by
// choice or because their countdown elapsed. Terminal for the
// (request, rider) pair: the request never reappears in this rider's
// polls. The request itself stays pending for everyone else.
// Idempotent.
func (s *RequestService) Decline(ctx context.Context, riderID, requestID string, timedOut bool) error {
	if riderID == "" {
		return ErrInvalidRiderID
	}
	if requestID == "" {
		return ErrInvalidRequestID
	}

	response := domain.ResponseDeclined
	if timedOut {
		response = domain.ResponseTimeout
	}

	_, err := s.responseRepo.SetResponse(ctx, requestID, riderID, response)
	return err
}

// Cancel withdraws a pending request. Only the pending state can be
// cancelled; anything later is ErrInvalidTransition.
func (s *RequestService) Cancel(ctx context.Context, requestID, reason string) (*domain.RideRequest, error) {
	if requestID == "" {
		return nil, ErrInvalidRequestID
	}

	ok, err := s.requestRepo.Cancel(ctx, requestID, reason, time.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.transitionFailure(ctx, requestID)
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.InvalidateRequest(ctx, requestID)
	}

	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if s.notification != nil {
		_ = s.notification.NotifyRequestCancelled(ctx, req, reason)
	}

	return req, nil
}

// MarkArrived records that the rider reached the pickup point.
// Requires accepted; repeating the call on an already-arrived request
// is rejected with ErrInvalidTransition.
func (s *RequestService) MarkArrived(ctx context.Context, requestID string) (*domain.RideRequest, error) {
	req, err := s.transition(ctx, requestID, s.requestRepo.MarkArrived)
	if err != nil {
		return nil, err
	}
	if s.notification != nil {
		_ = s.notification.NotifyRiderArrived(ctx, req)
	}
	return req, nil
}

// StartTrip records pickup. Requires arrived.
func (s *RequestService) StartTrip(ctx context.Context, requestID string) (*domain.RideRequest, error) {
	req, err := s.transition(ctx, requestID, s.requestRepo.MarkPickedUp)
	if err != nil {
		return nil, err
	}
	if s.notification != nil {
		_ = s.notification.NotifyTripStarted(ctx, req)
	}
	return req, nil
}

// Complete finishes the trip. Requires picked_up and the assigned
// rider. Restores the rider's availability if they are still online,
// charges the fare, and issues a receipt.
func (s *RequestService) Complete(ctx context.Context, riderID, requestID string) (*domain.RideRequest, error) {
	if riderID == "" {
		return nil, ErrInvalidRiderID
	}
	if requestID == "" {
		return nil, ErrInvalidRequestID
	}

	current, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if current.AssignedRiderID != riderID {
		return nil, ErrRiderNotAssigned
	}

	ok, err := s.requestRepo.MarkCompleted(ctx, requestID, time.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.transitionFailure(ctx, requestID)
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.InvalidateRequest(ctx, requestID)
	}

	// Free the rider for the next request, but only if they are still
	// on shift.
	if rider, err := s.riderRepo.GetByID(ctx, riderID); err == nil && rider.IsOnline {
		if err := s.riderRepo.SetAvailable(ctx, riderID, true); err != nil && err != repository.ErrNotFound {
			return nil, err
		}
		if s.cacheStore != nil {
			_ = s.cacheStore.InvalidateRider(ctx, riderID)
			_ = s.cacheStore.AddAvailableRider(ctx, riderID)
		}
	}

	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	var payment *domain.Payment
	if s.payment != nil {
		payment, err = s.payment.ProcessPayment(ctx, ProcessPaymentRequest{
			RequestID: requestID,
			Amount:    req.Fare,
		})
		if err != nil {
			// The trip is done; payment failures surface via their own
			// status, not by rolling the request back.
			payment = nil
		}
		if payment != nil && s.notification != nil {
			if payment.Status == domain.PaymentStatusSuccess {
				_ = s.notification.NotifyPaymentSuccess(ctx, payment, req.PassengerID)
			} else if payment.Status == domain.PaymentStatusFailed {
				_ = s.notification.NotifyPaymentFailed(ctx, payment, req.PassengerID)
			}
		}
	}

	if s.receipt != nil {
		_, _ = s.receipt.GenerateReceipt(ctx, GenerateReceiptParams{Request: req, Payment: payment})
	}

	if s.notification != nil {
		_ = s.notification.NotifyRequestCompleted(ctx, req)
	}

	return req, nil
}

// transition runs a conditional status update and classifies a
// precondition miss as NotFound or ErrInvalidTransition.
func (s *RequestService) transition(ctx context.Context, requestID string, update func(context.Context, string, time.Time) (bool, error)) (*domain.RideRequest, error) {
	if requestID == "" {
		return nil, ErrInvalidRequestID
	}

	ok, err := update(ctx, requestID, time.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.transitionFailure(ctx, requestID)
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.InvalidateRequest(ctx, requestID)
	}

	return s.requestRepo.GetByID(ctx, requestID)
}

// transitionFailure distinguishes an unknown request from one in the
// wrong state.
func (s *RequestService) transitionFailure(ctx context.Context, requestID string) error {
	if _, err := s.requestRepo.GetByID(ctx, requestID); err != nil {
		return err
	}
	return ErrInvalidTransition
}

func (s *RequestService) cacheRequest(ctx context.Context, req *domain.RideRequest) {
	if s.cacheStore == nil {
		return
	}
	_ = s.cacheStore.SetRequest(ctx, &redis.CachedRequest{
		ID:              req.ID,
		PassengerID:     req.PassengerID,
		AssignedRiderID: req.AssignedRiderID,
		PickupLat:       req.PickupLat,
		PickupLng:       req.PickupLng,
		PickupAddress:   req.PickupAddress,
		DropoffLat:      req.DropoffLat,
		DropoffLng:      req.DropoffLng,
		DropoffAddress:  req.DropoffAddress,
		VehicleType:     string(req.VehicleType),
		Status:          string(req.Status),
		Fare:            req.Fare,
		DistanceKm:      req.DistanceKm,
		RequestedAt:     req.RequestedAt,
		AcceptedAt:      req.AcceptedAt,
		ArrivedAt:       req.ArrivedAt,
		PickedUpAt:      req.PickedUpAt,
		CompletedAt:     req.CompletedAt,
		CancelledAt:     req.CancelledAt,
		CancelReason:    req.CancelReason,
	})
}

func requestFromCache(cached *redis.CachedRequest) *domain.RideRequest {
	return &domain.RideRequest{
		ID:              cached.ID,
		PassengerID:     cached.PassengerID,
		AssignedRiderID: cached.AssignedRiderID,
		PickupLat:       cached.PickupLat,
		PickupLng:       cached.PickupLng,
		PickupAddress:   cached.PickupAddress,
		DropoffLat:      cached.DropoffLat,
		DropoffLng:      cached.DropoffLng,
		DropoffAddress:  cached.DropoffAddress,
		VehicleType:     domain.VehicleType(cached.VehicleType),
		Status:          domain.RequestStatus(cached.Status),
		Fare:            cached.Fare,
		DistanceKm:      cached.DistanceKm,
		RequestedAt:     cached.RequestedAt,
		AcceptedAt:      cached.AcceptedAt,
		ArrivedAt:       cached.ArrivedAt,
		PickedUpAt:      cached.PickedUpAt,
		CompletedAt:     cached.CompletedAt,
		CancelledAt:     cached.CancelledAt,
		CancelReason:    cached.CancelReason,
	}
}

func (s *RequestService) validateCreateParams(params CreateRequestParams) error {
	if params.PassengerID == "" {
		return ErrInvalidPassengerID
	}
	if !geo.ValidLatitude(params.PickupLat) || !geo.ValidLongitude(params.PickupLng) {
		return ErrInvalidPickupLocation
	}
	if !geo.ValidLatitude(params.DropoffLat) || !geo.ValidLongitude(params.DropoffLng) {
		return ErrInvalidDropoffLocation
	}
	if _, err := ValidateVehicleType(string(params.VehicleType)); err != nil {
		return err
	}
	if params.Fare < 0 {
		return ErrInvalidFare
	}
	return nil
}

// ValidateVehicleType validates a vehicle type string. Empty defaults
// to car.
func ValidateVehicleType(vehicleType string) (domain.VehicleType, error) {
	switch domain.VehicleType(vehicleType) {
	case domain.VehicleCar, domain.VehicleBike, domain.VehicleTuk:
		return domain.VehicleType(vehicleType), nil
	case "":
		return domain.VehicleCar, nil
	default:
		return "", ErrInvalidVehicleType
	}
}
