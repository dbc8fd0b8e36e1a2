package slot

import (
	"time"

	"github.com/google/uuid"
)

// Slot is one fixed-length bookable time unit for a service on a date.
// Times are "HH:MM" in the single operating timezone.
type Slot struct {
	ID               uuid.UUID
	ServiceID        uuid.UUID
	Date             string // "2026-09-10"
	StartTime        string
	EndTime          string
	IsAvailable      bool
	IsBlockedByAdmin bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Bookable reports whether a member may claim the slot.
func (s *Slot) Bookable() bool {
	return s.IsAvailable && !s.IsBlockedByAdmin
}

// Window identifies a slot within its date.
func (s *Slot) Window() string {
	return s.StartTime + "-" + s.EndTime
}

// DateSlot is a slot with its booking state, as listed for one date.
// Booked means an active (not cancelled) booking references the slot.
type DateSlot struct {
	Slot
	Booked bool
}
