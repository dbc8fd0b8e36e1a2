package booking

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusSubmitted  Status = "submitted"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no_show"
	StatusIncomplete Status = "incomplete"
)

var transitions = map[Status][]Status{
	StatusSubmitted:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled, StatusNoShow, StatusIncomplete},
}

// CanTransitionTo reports whether the status machine allows moving to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Active reports whether the booking still holds its slot(s).
func (s Status) Active() bool {
	return s != StatusCancelled
}

// Booking reserves one slot (30 minutes) or two time-adjacent slots
// (60 minutes) for a member.
type Booking struct {
	ID              uuid.UUID
	ServiceID       uuid.UUID
	Date            string
	StartSlotID     uuid.UUID
	SecondSlotID    *uuid.UUID // set only for 60-minute bookings
	DurationMinutes int
	FullName        string
	Phone           string
	Email           string
	Status          Status
	AssignedTo      *uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Service struct {
	ID        uuid.UUID
	Name      string
	NameAr    string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EventLog is an append-only audit row; the engine only writes it,
// fire-and-forget.
type EventLog struct {
	ID        int64
	EventType string
	BookingID *uuid.UUID
	Payload   []byte
	CreatedAt time.Time
}
