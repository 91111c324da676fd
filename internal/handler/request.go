package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ridelink/internal/domain"
	"ridelink/internal/repository"
	"ridelink/internal/service"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// RequestHandler handles HTTP requests for ride requests.
type RequestHandler struct {
	requestService *service.RequestService
	requestRepo    repository.RequestRepository
}

// NewRequestHandler creates a new RequestHandler.
func NewRequestHandler(requestService *service.RequestService, requestRepo repository.RequestRepository) *RequestHandler {
	return &RequestHandler{
		requestService: requestService,
		requestRepo:    requestRepo,
	}
}

// CreateRequestBody is the HTTP request body for creating a ride request.
type CreateRequestBody struct {
	PassengerID    string  `json:"passenger_id"`
	PickupLat      float64 `json:"pickup_lat"`
	PickupLng      float64 `json:"pickup_lng"`
	PickupAddress  string  `json:"pickup_address,omitempty"`
	DropoffLat     float64 `json:"dropoff_lat"`
	DropoffLng     float64 `json:"dropoff_lng"`
	DropoffAddress string  `json:"dropoff_address,omitempty"`
	VehicleType    string  `json:"vehicle_type,omitempty"` // car, bike, tuk
	Fare           float64 `json:"fare,omitempty"`
	DistanceKm     float64 `json:"distance_km,omitempty"`
}

// CancelRequestBody is the HTTP request body for cancelling a request.
type CancelRequestBody struct {
	Reason string `json:"reason,omitempty"`
}

// CompleteRequestBody is the HTTP request body for completing a request.
type CompleteRequestBody struct {
	RiderID string `json:"rider_id"`
}

// RequestResponse is the HTTP representation of a ride request.
type RequestResponse struct {
	ID              string  `json:"id"`
	PassengerID     string  `json:"passenger_id"`
	AssignedRiderID string  `json:"assigned_rider_id,omitempty"`
	PickupLat       float64 `json:"pickup_lat"`
	PickupLng       float64 `json:"pickup_lng"`
	PickupAddress   string  `json:"pickup_address,omitempty"`
	DropoffLat      float64 `json:"dropoff_lat"`
	DropoffLng      float64 `json:"dropoff_lng"`
	DropoffAddress  string  `json:"dropoff_address,omitempty"`
	VehicleType     string  `json:"vehicle_type"`
	Status          string  `json:"status"`
	Fare            float64 `json:"fare"`
	DistanceKm      float64 `json:"distance_km"`
	RequestedAt     string  `json:"requested_at"`
	AcceptedAt      string  `json:"accepted_at,omitempty"`
	ArrivedAt       string  `json:"arrived_at,omitempty"`
	PickedUpAt      string  `json:"picked_up_at,omitempty"`
	CompletedAt     string  `json:"completed_at,omitempty"`
	CancelledAt     string  `json:"cancelled_at,omitempty"`
	CancelReason    string  `json:"cancel_reason,omitempty"`
}

func toRequestResponse(req *domain.RideRequest) RequestResponse {
	return RequestResponse{
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
		RequestedAt:     req.RequestedAt.Format(timeLayout),
		AcceptedAt:      formatTime(req.AcceptedAt),
		ArrivedAt:       formatTime(req.ArrivedAt),
		PickedUpAt:      formatTime(req.PickedUpAt),
		CompletedAt:     formatTime(req.CompletedAt),
		CancelledAt:     formatTime(req.CancelledAt),
		CancelReason:    req.CancelReason,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}

// Create handles POST /v1/requests
func (h *RequestHandler) Create(c *gin.Context) {
	var body CreateRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	vehicleType, err := service.ValidateVehicleType(body.VehicleType)
	if err != nil {
		respondError(c, err)
		return
	}

	req, err := h.requestService.CreateRequest(c.Request.Context(), service.CreateRequestParams{
		PassengerID:    body.PassengerID,
		PickupLat:      body.PickupLat,
		PickupLng:      body.PickupLng,
		PickupAddress:  body.PickupAddress,
		DropoffLat:     body.DropoffLat,
		DropoffLng:     body.DropoffLng,
		DropoffAddress: body.DropoffAddress,
		VehicleType:    vehicleType,
		Fare:           body.Fare,
		DistanceKm:     body.DistanceKm,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toRequestResponse(req))
}

// Get handles GET /v1/requests/:id
func (h *RequestHandler) Get(c *gin.Context) {
	req, err := h.requestService.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRequestResponse(req))
}

// GetAll handles GET /v1/requests
func (h *RequestHandler) GetAll(c *gin.Context) {
	requests, err := h.requestRepo.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]RequestResponse, 0, len(requests))
	for _, req := range requests {
		response = append(response, toRequestResponse(req))
	}
	respondJSON(c, http.StatusOK, response)
}

// Cancel handles POST /v1/requests/:id/cancel
func (h *RequestHandler) Cancel(c *gin.Context) {
	var body CancelRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	req, err := h.requestService.Cancel(c.Request.Context(), c.Param("id"), body.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRequestResponse(req))
}

// MarkArrived handles POST /v1/requests/:id/arrived
func (h *RequestHandler) MarkArrived(c *gin.Context) {
	req, err := h.requestService.MarkArrived(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRequestResponse(req))
}

// StartTrip handles POST /v1/requests/:id/start
func (h *RequestHandler) StartTrip(c *gin.Context) {
	req, err := h.requestService.StartTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRequestResponse(req))
}

// Complete handles POST /v1/requests/:id/complete
func (h *RequestHandler) Complete(c *gin.Context) {
	var body CompleteRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	req, err := h.requestService.Complete(c.Request.Context(), body.RiderID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRequestResponse(req))
}
