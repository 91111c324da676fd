package postgres

import (
	"context"
	"database/sql"
	"errors"

	"ridelink/internal/domain"
	"ridelink/internal/repository"
)

// PaymentRepository is a PostgreSQL implementation of repository.PaymentRepository.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

// Create persists a new payment.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, request_id, amount, status, idempotency_key)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.q.ExecContext(ctx, query,
		payment.ID,
		payment.RequestID,
		payment.Amount,
		payment.Status,
		payment.IdempotencyKey,
	)
	return err
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT id, request_id, amount, status, idempotency_key FROM payments WHERE id = $1`

	var payment domain.Payment
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&payment.ID,
		&payment.RequestID,
		&payment.Amount,
		&payment.Status,
		&payment.IdempotencyKey,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// GetByIdempotencyKey retrieves a payment by its idempotency key.
// Returns (nil, nil) when no payment exists for the key.
func (r *PaymentRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Payment, error) {
	query := `SELECT id, request_id, amount, status, idempotency_key FROM payments WHERE idempotency_key = $1`

	var payment domain.Payment
	err := r.q.QueryRowContext(ctx, query, key).Scan(
		&payment.ID,
		&payment.RequestID,
		&payment.Amount,
		&payment.Status,
		&payment.IdempotencyKey,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// UpdateStatus updates the status of a payment.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	query := `UPDATE payments SET status = $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}
