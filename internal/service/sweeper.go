package service

import (
	"context"
	"log"
	"time"

	"ridelink/internal/repository"
)

// OfferSweeper expires surfaced requests that a rider never answered.
// Rider clients report their own 30-second timeouts; the sweep is the
// backstop for clients that disappear mid-countdown.
type OfferSweeper struct {
	responseRepo repository.ResponseRepository
	offerTimeout time.Duration
	interval     time.Duration
}

// NewOfferSweeper creates a new OfferSweeper.
func NewOfferSweeper(responseRepo repository.ResponseRepository, offerTimeout, interval time.Duration) *OfferSweeper {
	return &OfferSweeper{
		responseRepo: responseRepo,
		offerTimeout: offerTimeout,
		interval:     interval,
	}
}

// Run sweeps on a ticker until the context is cancelled.
func (s *OfferSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			expired, err := s.Sweep(ctx)
			if err != nil {
				log.Printf("offer sweep failed: %v", err)
				continue
			}
			if expired > 0 {
				log.Printf("offer sweep expired %d stale offers", expired)
			}
		}
	}
}

// Sweep runs one pass, flipping shown ledger rows older than the offer
// timeout to timeout. Returns how many rows were expired.
func (s *OfferSweeper) Sweep(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.offerTimeout)
	return s.responseRepo.ExpireStale(ctx, cutoff)
}
