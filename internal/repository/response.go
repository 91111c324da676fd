package repository

import (
	"context"
	"time"

	"ridelink/internal/domain"
)

// ResponseRepository defines the persistence operations for the
// response ledger: one row per (request, rider) pair.
type ResponseRepository interface {
	// RecordShown creates a shown row for the pair if none exists yet.
	// A no-op when the pair already has a row of any kind.
	RecordShown(ctx context.Context, requestID, riderID string) error

	// Get retrieves the ledger row for a pair, or ErrNotFound.
	Get(ctx context.Context, requestID, riderID string) (*domain.ResponseRecord, error)

	// SetResponse upserts the pair's response. A row still at shown is
	// overwritten; declined/timeout/accepted rows are terminal and stay
	// untouched. Returns whether the write was applied.
	SetResponse(ctx context.Context, requestID, riderID string, response domain.RiderResponse) (bool, error)

	// ListClosedRequestIDs returns the IDs of requests this rider has
	// declined or timed out on. Used to suppress them from polls.
	ListClosedRequestIDs(ctx context.Context, riderID string) ([]string, error)

	// ExpireStale flips shown rows first surfaced before the cutoff to
	// timeout and returns how many rows were expired.
	ExpireStale(ctx context.Context, cutoff time.Time) (int64, error)
}
