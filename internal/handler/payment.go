package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridelink/internal/service"
)

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// PaymentResponse is the HTTP response for payment operations.
type PaymentResponse struct {
	ID             string  `json:"id"`
	RequestID      string  `json:"request_id"`
	Amount         float64 `json:"amount"`
	Status         string  `json:"status"`
	IdempotencyKey string  `json:"idempotency_key"`
}

// GetPayment handles GET /v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, err := h.paymentService.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, PaymentResponse{
		ID:             payment.ID,
		RequestID:      payment.RequestID,
		Amount:         payment.Amount,
		Status:         string(payment.Status),
		IdempotencyKey: payment.IdempotencyKey,
	})
}
