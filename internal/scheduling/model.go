// Package scheduling implements slot availability checks and conflict-aware
// reservation commits.
package scheduling

import (
	"errors"
	"time"
)

// Reservation statuses.
const (
	StatusScheduled = "scheduled"
)

// Wire formats for slot buckets.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// ErrSlotFull indicates the slot reached capacity between the advisory check
// and the write.
var ErrSlotFull = errors.New("scheduling: slot is at capacity")

// Reservation is one committed booking. Identity is the
// (business_id, date, time) bucket; capacity per bucket comes from the
// business profile. Reservations are never mutated by this core.
type Reservation struct {
	ID         string    `json:"id"`
	BusinessID string    `json:"business_id"`
	Date       string    `json:"date"` // YYYY-MM-DD in the business timezone
	Time       string    `json:"time"` // HH:MM:SS in the business timezone
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Email      string    `json:"email,omitempty"`
	PartySize  int       `json:"party_size"`
	Notes      string    `json:"notes,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// BookingRequest carries the merged entity fields a commit needs.
type BookingRequest struct {
	BusinessID string
	Date       string
	Time       string
	Name       string
	Phone      string
	Email      string
	PartySize  int
	Notes      string
}

// SlotAvailability reports the state of one slot bucket.
type SlotAvailability struct {
	Available bool
	// Closed is set when the business has no open window covering the slot;
	// no alternative search should follow.
	Closed   bool
	Count    int
	Capacity int
}

// SlotTime parses the bucket's date and time in the supplied location.
func (r *Reservation) SlotTime(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, r.Date+" "+r.Time, loc)
}
