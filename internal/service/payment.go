package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"ridelink/internal/domain"
	"ridelink/internal/repository"
)

// PSP is the interface for a Payment Service Provider.
type PSP interface {
	Charge(ctx context.Context, amount float64) (bool, error)
}

// MockPSP is a stand-in PSP that always approves.
type MockPSP struct{}

// NewMockPSP creates a new mock PSP.
func NewMockPSP() *MockPSP {
	return &MockPSP{}
}

// Charge simulates a payment charge. Always succeeds.
func (p *MockPSP) Charge(ctx context.Context, amount float64) (bool, error) {
	return true, nil
}

// PaymentService handles fare charges for completed requests.
type PaymentService struct {
	paymentRepo repository.PaymentRepository
	psp         PSP
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(paymentRepo repository.PaymentRepository, psp PSP) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		psp:         psp,
	}
}

// ProcessPaymentRequest contains the parameters for processing a payment.
type ProcessPaymentRequest struct {
	RequestID string
	Amount    float64
}

// ProcessPayment charges the fare for a ride request, idempotent per
// request: a retry returns the existing payment instead of charging
// twice.
func (s *PaymentService) ProcessPayment(ctx context.Context, req ProcessPaymentRequest) (*domain.Payment, error) {
	if req.RequestID == "" {
		return nil, ErrInvalidRequestID
	}
	if req.Amount <= 0 {
		return nil, ErrInvalidPaymentAmount
	}

	idempotencyKey := fmt.Sprintf("payment:%s", req.RequestID)

	existing, err := s.paymentRepo.GetByIdempotencyKey(ctx, idempotencyKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	payment := &domain.Payment{
		ID:             uuid.New().String(),
		RequestID:      req.RequestID,
		Amount:         req.Amount,
		Status:         domain.PaymentStatusPending,
		IdempotencyKey: idempotencyKey,
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	success, err := s.psp.Charge(ctx, req.Amount)
	if err != nil {
		_ = s.paymentRepo.UpdateStatus(ctx, payment.ID, domain.PaymentStatusFailed)
		payment.Status = domain.PaymentStatusFailed
		return payment, nil
	}

	status := domain.PaymentStatusFailed
	if success {
		status = domain.PaymentStatusSuccess
	}
	if err := s.paymentRepo.UpdateStatus(ctx, payment.ID, status); err != nil {
		return nil, err
	}
	payment.Status = status

	return payment, nil
}

// GetPayment retrieves a payment by ID.
func (s *PaymentService) GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	if paymentID == "" {
		return nil, ErrInvalidPaymentID
	}
	return s.paymentRepo.GetByID(ctx, paymentID)
}
