package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/wakala-community/booking-desk/internal/metrics"
	"github.com/wakala-community/booking-desk/internal/slot"
)

const (
	EventBookingCreated   = "BOOKING_CREATED"
	EventBookingCancelled = "BOOKING_CANCELLED"
	EventStatusChanged    = "BOOKING_STATUS_CHANGED"
)

var (
	// ErrInvalidSelection covers unsupported durations and 60-minute
	// requests whose two slots are not time-adjacent.
	ErrInvalidSelection = errors.New("slots are not adjacent or duration unsupported")

	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

// Coordinator orchestrates single- and double-slot reservation and release.
// The 60-minute path performs two dependent claims and compensates by
// releasing the first when the second fails; no partial reservation is
// observable after a call returns.
type Coordinator struct {
	slots   slot.Store
	repo    Repository
	metrics *metrics.EngineMetrics
}

func NewCoordinator(slots slot.Store, repo Repository, m *metrics.EngineMetrics) *Coordinator {
	return &Coordinator{
		slots:   slots,
		repo:    repo,
		metrics: m,
	}
}

// Reserve claims the slot(s) for a reservation starting at startSlotID.
// minutes must be 30 or 60.
func (c *Coordinator) Reserve(ctx context.Context, serviceID uuid.UUID, date string, startSlotID uuid.UUID, minutes int) error {
	_, err := c.reserveSlots(ctx, serviceID, date, startSlotID, minutes)
	c.observeReservation(minutes, err)
	return err
}

// reserveSlots returns the ids actually claimed so a failed booking insert
// can hand them back.
func (c *Coordinator) reserveSlots(ctx context.Context, serviceID uuid.UUID, date string, startSlotID uuid.UUID, minutes int) ([]uuid.UUID, error) {
	switch minutes {
	case 30:
		if err := c.claim(ctx, startSlotID); err != nil {
			return nil, err
		}
		return []uuid.UUID{startSlotID}, nil

	case 60:
		second, err := c.followingAdjacent(ctx, serviceID, date, startSlotID)
		if err != nil {
			return nil, err
		}

		if err := c.claim(ctx, startSlotID); err != nil {
			return nil, err
		}
		if err := c.claim(ctx, second.ID); err != nil {
			// compensate before surfacing the second slot's error
			if relErr := c.slots.Release(ctx, startSlotID); relErr != nil {
				log.Printf("compensating release of slot %s failed: %v", startSlotID, relErr)
			}
			return nil, err
		}
		return []uuid.UUID{startSlotID, second.ID}, nil

	default:
		return nil, fmt.Errorf("%w: duration %d minutes", ErrInvalidSelection, minutes)
	}
}

// followingAdjacent locates the slot immediately after startSlotID and
// verifies the two form a contiguous hour.
func (c *Coordinator) followingAdjacent(ctx context.Context, serviceID uuid.UUID, date string, startSlotID uuid.UUID) (*slot.Slot, error) {
	first, err := c.slots.GetByID(ctx, startSlotID)
	if err != nil {
		return nil, err
	}

	second, err := c.slots.Following(ctx, serviceID, date, first.StartTime)
	if err != nil {
		if errors.Is(err, slot.ErrSlotNotFound) {
			return nil, fmt.Errorf("%w: no slot after %s", ErrInvalidSelection, first.StartTime)
		}
		return nil, err
	}
	if second.StartTime != first.EndTime {
		return nil, fmt.Errorf("%w: %s and %s are not adjacent", ErrInvalidSelection, first.Window(), second.Window())
	}

	return second, nil
}

func (c *Coordinator) claim(ctx context.Context, id uuid.UUID) error {
	err := c.slots.Claim(ctx, id)
	switch {
	case err == nil:
		c.metrics.ObserveClaim("ok")
	case errors.Is(err, slot.ErrAlreadyClaimed):
		c.metrics.ObserveClaim("conflict")
	case errors.Is(err, slot.ErrSlotBlocked):
		c.metrics.ObserveClaim("blocked")
	default:
		c.metrics.ObserveClaim("error")
	}
	return err
}

// Release frees the slot(s) of a reservation. Idempotent: already-released
// and missing slots are not errors.
func (c *Coordinator) Release(ctx context.Context, serviceID uuid.UUID, date string, startSlotID uuid.UUID, minutes int) error {
	first, err := c.slots.GetByID(ctx, startSlotID)
	if err != nil {
		if errors.Is(err, slot.ErrSlotNotFound) {
			return nil
		}
		return err
	}

	if err := c.slots.Release(ctx, first.ID); err != nil && !errors.Is(err, slot.ErrSlotNotFound) {
		return err
	}

	if minutes != 60 {
		return nil
	}

	second, err := c.slots.Following(ctx, serviceID, date, first.StartTime)
	if err != nil {
		if errors.Is(err, slot.ErrSlotNotFound) {
			return nil
		}
		return err
	}
	if second.StartTime != first.EndTime {
		return nil
	}

	if err := c.slots.Release(ctx, second.ID); err != nil && !errors.Is(err, slot.ErrSlotNotFound) {
		return err
	}
	return nil
}

type BookRequest struct {
	ServiceID       uuid.UUID
	Date            string
	StartSlotID     uuid.UUID
	DurationMinutes int
	FullName        string
	Phone           string
	Email           string
}

// Book reserves the slot(s) and records the booking. A failed insert hands
// the claimed slots back before the error surfaces.
func (c *Coordinator) Book(ctx context.Context, req BookRequest) (*Booking, error) {
	if _, err := c.repo.GetServiceByID(ctx, req.ServiceID); err != nil {
		if errors.Is(err, ErrServiceNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load service: %w", err)
	}

	claimed, err := c.reserveSlots(ctx, req.ServiceID, req.Date, req.StartSlotID, req.DurationMinutes)
	c.observeReservation(req.DurationMinutes, err)
	if err != nil {
		return nil, err
	}

	b := Booking{
		ServiceID:       req.ServiceID,
		Date:            req.Date,
		StartSlotID:     claimed[0],
		DurationMinutes: req.DurationMinutes,
		FullName:        req.FullName,
		Phone:           req.Phone,
		Email:           req.Email,
	}
	if len(claimed) == 2 {
		b.SecondSlotID = &claimed[1]
	}

	created, err := c.repo.Create(ctx, b)
	if err != nil {
		for _, id := range claimed {
			if relErr := c.slots.Release(ctx, id); relErr != nil {
				log.Printf("release of slot %s after failed booking insert failed: %v", id, relErr)
			}
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	c.logEvent(ctx, created.ID, EventBookingCreated, map[string]any{
		"service_id": req.ServiceID.String(),
		"date":       req.Date,
		"duration":   req.DurationMinutes,
	})

	return created, nil
}

// Cancel releases the booking's slot(s) and then flips its status. If the
// status update fails after the release, the slots stay released and the
// booking keeps its prior status; re-running Cancel is safe because the
// release is idempotent and the transition conditional.
func (c *Coordinator) Cancel(ctx context.Context, id uuid.UUID) (*Booking, error) {
	b, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status == StatusCancelled {
		return b, nil
	}

	// release by the stored ids, not by time order: the date's grid may
	// have been regenerated since the booking was made
	held := []uuid.UUID{b.StartSlotID}
	if b.SecondSlotID != nil {
		held = append(held, *b.SecondSlotID)
	}
	for _, sid := range held {
		if err := c.slots.Release(ctx, sid); err != nil && !errors.Is(err, slot.ErrSlotNotFound) {
			return nil, fmt.Errorf("release slot %s for booking %s: %w", sid, id, err)
		}
	}

	updated, err := c.repo.UpdateStatus(ctx, id, b.Status, StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("cancel booking %s: %w", id, err)
	}

	c.logEvent(ctx, updated.ID, EventBookingCancelled, map[string]any{
		"date": b.Date,
	})

	return updated, nil
}

// SetStatus advances a booking through its non-cancellation transitions.
// Cancellation must go through Cancel so the slots are freed.
func (c *Coordinator) SetStatus(ctx context.Context, id uuid.UUID, to Status) (*Booking, error) {
	if to == StatusCancelled {
		return c.Cancel(ctx, id)
	}

	b, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.Status.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, b.Status, to)
	}

	updated, err := c.repo.UpdateStatus(ctx, id, b.Status, to)
	if err != nil {
		return nil, err
	}

	c.logEvent(ctx, updated.ID, EventStatusChanged, map[string]any{
		"from": string(b.Status),
		"to":   string(to),
	})

	return updated, nil
}

func (c *Coordinator) observeReservation(minutes int, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, slot.ErrAlreadyClaimed), errors.Is(err, slot.ErrSlotBlocked):
		result = "conflict"
	case errors.Is(err, ErrInvalidSelection):
		result = "invalid"
	default:
		result = "error"
	}
	c.metrics.ObserveReservation(strconv.Itoa(minutes), result)
}

func (c *Coordinator) logEvent(ctx context.Context, bookingID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("failed to marshal event payload for %s: %v", eventType, err)
		data = nil
	}

	id := bookingID

	ev := EventLog{
		EventType: eventType,
		BookingID: &id,
		Payload:   data,
		CreatedAt: time.Now(),
	}

	if err := c.repo.InsertEvent(ctx, ev); err != nil {
		log.Printf("failed to insert event %s for booking %s: %v", eventType, bookingID, err)
	}
}
