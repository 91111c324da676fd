package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ridelink/internal/domain"
	"ridelink/internal/repository"
)

// PassengerHandler handles HTTP requests for passengers.
type PassengerHandler struct {
	passengerRepo repository.PassengerRepository
}

// NewPassengerHandler creates a new PassengerHandler.
func NewPassengerHandler(passengerRepo repository.PassengerRepository) *PassengerHandler {
	return &PassengerHandler{passengerRepo: passengerRepo}
}

// RegisterPassengerRequest is the HTTP request body for passenger registration.
type RegisterPassengerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// PassengerResponse is the HTTP response for passenger data.
type PassengerResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Register handles POST /v1/passengers/register
func (h *PassengerHandler) Register(c *gin.Context) {
	var req RegisterPassengerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Name == "" || req.Phone == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name and phone are required"})
		return
	}

	// Check if passenger already exists
	existing, err := h.passengerRepo.GetByPhone(c.Request.Context(), req.Phone)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		respondError(c, err)
		return
	}

	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{
			"message":   "Passenger already registered",
			"passenger": PassengerResponse{ID: existing.ID, Name: existing.Name, Phone: existing.Phone},
		})
		return
	}

	passenger := &domain.Passenger{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Phone:     req.Phone,
		CreatedAt: time.Now(),
	}

	if err := h.passengerRepo.Create(c.Request.Context(), passenger); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, PassengerResponse{
		ID:    passenger.ID,
		Name:  passenger.Name,
		Phone: passenger.Phone,
	})
}

// GetAll handles GET /v1/passengers
func (h *PassengerHandler) GetAll(c *gin.Context) {
	passengers, err := h.passengerRepo.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	var response []PassengerResponse
	for _, p := range passengers {
		response = append(response, PassengerResponse{
			ID:    p.ID,
			Name:  p.Name,
			Phone: p.Phone,
		})
	}

	c.JSON(http.StatusOK, response)
}
