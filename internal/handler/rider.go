package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ridelink/internal/domain"
	"ridelink/internal/repository"
	"ridelink/internal/service"
)

// RiderHandler handles HTTP requests for riders.
type RiderHandler struct {
	riderService    *service.RiderService
	dispatchService *service.DispatchService
	requestService  *service.RequestService
	riderRepo       repository.RiderRepository
}

// NewRiderHandler creates a new RiderHandler.
func NewRiderHandler(
	riderService *service.RiderService,
	dispatchService *service.DispatchService,
	requestService *service.RequestService,
	riderRepo repository.RiderRepository,
) *RiderHandler {
	return &RiderHandler{
		riderService:    riderService,
		dispatchService: dispatchService,
		requestService:  requestService,
		riderRepo:       riderRepo,
	}
}

// RegisterRiderRequest is the HTTP request body for rider registration.
type RegisterRiderRequest struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	VehicleType string `json:"vehicle_type"`
}

// RiderResponse is the HTTP response for rider data.
type RiderResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	VehicleType string `json:"vehicle_type"`
	IsOnline    bool   `json:"is_online"`
	IsAvailable bool   `json:"is_available"`
}

func toRiderResponse(rider *domain.Rider) RiderResponse {
	return RiderResponse{
		ID:          rider.ID,
		Name:        rider.Name,
		Phone:       rider.Phone,
		VehicleType: string(rider.VehicleType),
		IsOnline:    rider.IsOnline,
		IsAvailable: rider.IsAvailable,
	}
}

// SetStatusRequest is the HTTP request body for rider status updates.
type SetStatusRequest struct {
	IsOnline    bool `json:"is_online"`
	IsAvailable bool `json:"is_available"`
}

// UpdateLocationRequest is the HTTP request body for a location tick.
type UpdateLocationRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RiderActionRequest is the HTTP request body for accept/decline.
type RiderActionRequest struct {
	RequestID string `json:"request_id"`
	TimedOut  bool   `json:"timed_out,omitempty"`
}

// SurfacedRequestResponse is one entry in a nearby-requests poll.
type SurfacedRequestResponse struct {
	Request    RequestResponse `json:"request"`
	DistanceKm float64         `json:"distance_km"`
}

// PollResponse is the HTTP response for a nearby-requests poll.
type PollResponse struct {
	Requests            []SurfacedRequestResponse `json:"requests"`
	RecommendedRadiusKm float64                   `json:"recommended_radius_km"`
}

// Register handles POST /v1/riders/register
func (h *RiderHandler) Register(c *gin.Context) {
	var req RegisterRiderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Name == "" || req.Phone == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name and phone are required"})
		return
	}

	vehicleType, err := service.ValidateVehicleType(req.VehicleType)
	if err != nil {
		respondError(c, err)
		return
	}

	// Check if rider already exists
	existing, err := h.riderRepo.GetByPhone(c.Request.Context(), req.Phone)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		respondError(c, err)
		return
	}

	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{
			"message": "Rider already registered",
			"rider":   toRiderResponse(existing),
		})
		return
	}

	rider := &domain.Rider{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Phone:       req.Phone,
		VehicleType: vehicleType,
	}

	if err := h.riderRepo.Create(c.Request.Context(), rider); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toRiderResponse(rider))
}

// GetAll handles GET /v1/riders
func (h *RiderHandler) GetAll(c *gin.Context) {
	riders, err := h.riderRepo.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]RiderResponse, 0, len(riders))
	for _, rider := range riders {
		response = append(response, toRiderResponse(rider))
	}
	respondJSON(c, http.StatusOK, response)
}

// SetStatus handles POST /v1/riders/:id/status
func (h *RiderHandler) SetStatus(c *gin.Context) {
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	err := h.riderService.SetStatus(c.Request.Context(), service.SetStatusRequest{
		RiderID:     c.Param("id"),
		IsOnline:    req.IsOnline,
		IsAvailable: req.IsAvailable,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	rider, err := h.riderRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRiderResponse(rider))
}

// UpdateLocation handles POST /v1/riders/:id/location
func (h *RiderHandler) UpdateLocation(c *gin.Context) {
	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	err := h.riderService.UpdateLocation(c.Request.Context(), service.UpdateLocationRequest{
		RiderID: c.Param("id"),
		Lat:     req.Lat,
		Lng:     req.Lng,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"message": "location updated"})
}

// NearbyRequests handles GET /v1/riders/:id/requests?radius_km=
func (h *RiderHandler) NearbyRequests(c *gin.Context) {
	var radiusKm float64
	if raw := c.Query("radius_km"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			respondError(c, service.ErrInvalidRadius)
			return
		}
		radiusKm = parsed
	}

	result, err := h.dispatchService.NearbyRequestsForRider(c.Request.Context(), c.Param("id"), radiusKm)
	if err != nil {
		respondError(c, err)
		return
	}

	response := PollResponse{
		Requests:            make([]SurfacedRequestResponse, 0, len(result.Requests)),
		RecommendedRadiusKm: result.RecommendedRadiusKm,
	}
	for _, surfaced := range result.Requests {
		response.Requests = append(response.Requests, SurfacedRequestResponse{
			Request:    toRequestResponse(surfaced.Request),
			DistanceKm: surfaced.DistanceKm,
		})
	}

	respondJSON(c, http.StatusOK, response)
}

// Accept handles POST /v1/riders/:id/accept
func (h *RiderHandler) Accept(c *gin.Context) {
	var req RiderActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	request, err := h.requestService.Accept(c.Request.Context(), c.Param("id"), req.RequestID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRequestResponse(request))
}

// Decline handles POST /v1/riders/:id/decline
func (h *RiderHandler) Decline(c *gin.Context) {
	var req RiderActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	err := h.requestService.Decline(c.Request.Context(), c.Param("id"), req.RequestID, req.TimedOut)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"message": "response recorded"})
}
