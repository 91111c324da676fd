package domain

// PaymentStatus represents the current status of a payment.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// Payment represents the fare charge for a completed ride request.
type Payment struct {
	ID             string
	RequestID      string
	Amount         float64
	Status         PaymentStatus
	IdempotencyKey string
}
