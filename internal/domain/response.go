package domain

import "time"

// RiderResponse represents a rider's reaction to a surfaced request.
type RiderResponse string

const (
	ResponseShown    RiderResponse = "shown"
	ResponseAccepted RiderResponse = "accepted"
	ResponseDeclined RiderResponse = "declined"
	ResponseTimeout  RiderResponse = "timeout"
)

// Closed reports whether the response ends the (request, rider) pair.
// A declined or timed-out pair is never surfaced to that rider again.
func (r RiderResponse) Closed() bool {
	return r == ResponseDeclined || r == ResponseTimeout
}

// ResponseRecord is one row of the response ledger: what a given rider
// did with a given request. Unique per (RequestID, RiderID).
type ResponseRecord struct {
	RequestID   string
	RiderID     string
	Response    RiderResponse
	ShownAt     time.Time
	RespondedAt time.Time
}
