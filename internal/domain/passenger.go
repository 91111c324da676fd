package domain

import "time"

// Passenger represents a person requesting rides.
type Passenger struct {
	ID        string
	Name      string
	Phone     string
	CreatedAt time.Time
}
