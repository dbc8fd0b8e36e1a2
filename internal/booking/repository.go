package booking

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrServiceNotFound = errors.New("service not found")
)

// Repository contains all DB interactions needed by the coordinator.
type Repository interface {
	GetServiceByID(ctx context.Context, id uuid.UUID) (*Service, error)

	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	Create(ctx context.Context, b Booking) (*Booking, error)

	// UpdateStatus flips the status only when the current value matches
	// from; a stale caller gets ErrBookingNotFound instead of overwriting.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Booking, error)

	AssignHandler(ctx context.Context, id, staffID uuid.UUID) (*Booking, error)
	ListByDate(ctx context.Context, serviceID uuid.UUID, date string) ([]Booking, error)

	InsertEvent(ctx context.Context, ev EventLog) error
}
