package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ridelink/internal/domain"
	"ridelink/internal/repository"
)

// ResponseRepository is a PostgreSQL implementation of repository.ResponseRepository.
type ResponseRepository struct {
	q Querier
}

// NewResponseRepository creates a new PostgreSQL response repository.
func NewResponseRepository(db *sql.DB) *ResponseRepository {
	return &ResponseRepository{q: db}
}

// RecordShown creates a shown row for the pair if none exists yet.
func (r *ResponseRepository) RecordShown(ctx context.Context, requestID, riderID string) error {
	query := `
		INSERT INTO ride_responses (request_id, rider_id, response, shown_at)
		VALUES ($1, $2, 'shown', $3)
		ON CONFLICT (request_id, rider_id) DO NOTHING
	`
	_, err := r.q.ExecContext(ctx, query, requestID, riderID, time.Now())
	return err
}

// Get retrieves the ledger row for a pair.
func (r *ResponseRepository) Get(ctx context.Context, requestID, riderID string) (*domain.ResponseRecord, error) {
	query := `
		SELECT request_id, rider_id, response, shown_at, responded_at
		FROM ride_responses WHERE request_id = $1 AND rider_id = $2
	`

	var rec domain.ResponseRecord
	var respondedAt sql.NullTime
	err := r.q.QueryRowContext(ctx, query, requestID, riderID).Scan(
		&rec.RequestID,
		&rec.RiderID,
		&rec.Response,
		&rec.ShownAt,
		&respondedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if respondedAt.Valid {
		rec.RespondedAt = respondedAt.Time
	}
	return &rec, nil
}

// SetResponse upserts the pair's response. Only a row still at shown
// may be overwritten; terminal rows stay as they are.
func (r *ResponseRepository) SetResponse(ctx context.Context, requestID, riderID string, response domain.RiderResponse) (bool, error) {
	query := `
		INSERT INTO ride_responses (request_id, rider_id, response, shown_at, responded_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (request_id, rider_id) DO UPDATE
		SET response = EXCLUDED.response, responded_at = EXCLUDED.responded_at
		WHERE ride_responses.response = 'shown'
	`

	result, err := r.q.ExecContext(ctx, query, requestID, riderID, response, time.Now())
	if err != nil {
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}

// ListClosedRequestIDs returns the request IDs this rider has declined
// or timed out on.
func (r *ResponseRepository) ListClosedRequestIDs(ctx context.Context, riderID string) ([]string, error) {
	query := `
		SELECT request_id FROM ride_responses
		WHERE rider_id = $1 AND response IN ('declined', 'timeout')
	`

	rows, err := r.q.QueryContext(ctx, query, riderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ExpireStale flips shown rows surfaced before the cutoff to timeout.
func (r *ResponseRepository) ExpireStale(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE ride_responses
		SET response = 'timeout', responded_at = $1
		WHERE response = 'shown' AND shown_at < $2
	`

	result, err := r.q.ExecContext(ctx, query, time.Now(), cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
