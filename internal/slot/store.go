package slot

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrSlotNotFound   = errors.New("slot not found")
	ErrAlreadyClaimed = errors.New("slot already claimed")
	ErrSlotBlocked    = errors.New("slot blocked by admin")
)

// Store is the durable slot collection. Claim and Release are the only
// mutations members reach; both must be race-free under concurrent callers
// targeting the same slot id, so implementations perform a single
// conditional update rather than read-then-write.
type Store interface {
	// Claim atomically flips an available, unblocked slot to unavailable.
	// On failure it returns ErrSlotNotFound, ErrSlotBlocked or
	// ErrAlreadyClaimed without side effects.
	Claim(ctx context.Context, id uuid.UUID) error

	// Release flips the slot back to available. Idempotent; never touches
	// the admin block.
	Release(ctx context.Context, id uuid.UUID) error

	// SetAdminBlock forces a slot (un)bookable independent of booking state.
	SetAdminBlock(ctx context.Context, id uuid.UUID, blocked bool) error

	GetByID(ctx context.Context, id uuid.UUID) (*Slot, error)

	// Following returns the slot with the smallest start time strictly
	// after afterStart for the same (service, date).
	Following(ctx context.Context, serviceID uuid.UUID, date, afterStart string) (*Slot, error)

	// ListForDate returns all slots of a (service, date) in time order,
	// each with its active-booking flag.
	ListForDate(ctx context.Context, serviceID uuid.UUID, date string) ([]DateSlot, error)

	Insert(ctx context.Context, slots []Slot) error

	// DeleteIfUnbooked removes a slot only while it is still available and
	// not referenced by an active booking. The condition is evaluated by
	// the storage layer so regeneration cannot race a live claim.
	DeleteIfUnbooked(ctx context.Context, id uuid.UUID) (bool, error)
}
