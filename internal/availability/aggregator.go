package availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/wakala-community/booking-desk/internal/schedule"
	"github.com/wakala-community/booking-desk/internal/slot"
)

// Stat is the derived per-date summary the calendar renders. Never stored.
type Stat struct {
	Date            string `json:"date"`
	TotalSlots      int    `json:"total_slots"`
	AvailableSlots  int    `json:"available_slots"`
	BookedSlots     int    `json:"booked_slots"`
	BlockedSlots    int    `json:"blocked_slots"`
	Holiday         bool   `json:"holiday"`
	HolidayReason   string `json:"holiday_reason,omitempty"`
	HolidayReasonAr string `json:"holiday_reason_ar,omitempty"`
	Blocked         bool   `json:"blocked"`
	BlockedReason   string `json:"blocked_reason,omitempty"`
	BlockedReasonAr string `json:"blocked_reason_ar,omitempty"`
}

// ScheduleReader is the slice of the schedule repository the aggregator
// needs.
type ScheduleReader interface {
	GetDayOverride(ctx context.Context, date string) (*schedule.DayOverride, error)
	GetBlockedDate(ctx context.Context, date string) (*schedule.BlockedDate, error)
}

// SlotReader lists a date's slots with their booking state.
type SlotReader interface {
	ListForDate(ctx context.Context, serviceID uuid.UUID, date string) ([]slot.DateSlot, error)
}

// Aggregator computes calendar statistics. Read-only; it never mutates
// slots or schedule state.
type Aggregator struct {
	slots SlotReader
	sched ScheduleReader
}

func NewAggregator(slots SlotReader, sched ScheduleReader) *Aggregator {
	return &Aggregator{
		slots: slots,
		sched: sched,
	}
}

// Stats returns one Stat per date in the inclusive range. A date present in
// BlockedDate reports zero available slots regardless of individual slot
// state.
func (a *Aggregator) Stats(ctx context.Context, serviceID uuid.UUID, from, to string) ([]Stat, error) {
	dates, err := schedule.DatesBetween(from, to)
	if err != nil {
		return nil, err
	}

	stats := make([]Stat, 0, len(dates))
	for _, date := range dates {
		st, err := a.statFor(ctx, serviceID, date)
		if err != nil {
			return nil, fmt.Errorf("stats for %s: %w", date, err)
		}
		stats = append(stats, *st)
	}

	return stats, nil
}

func (a *Aggregator) statFor(ctx context.Context, serviceID uuid.UUID, date string) (*Stat, error) {
	st := &Stat{Date: date}

	slots, err := a.slots.ListForDate(ctx, serviceID, date)
	if err != nil {
		return nil, err
	}

	for _, s := range slots {
		st.TotalSlots++
		if s.Booked {
			st.BookedSlots++
		}
		if s.IsBlockedByAdmin {
			st.BlockedSlots++
			continue
		}
		if s.IsAvailable {
			st.AvailableSlots++
		}
	}

	ov, err := a.sched.GetDayOverride(ctx, date)
	if err != nil && !errors.Is(err, schedule.ErrOverrideNotFound) {
		return nil, err
	}
	if ov != nil && ov.Holiday {
		st.Holiday = true
		st.HolidayReason = ov.HolidayReason
		st.HolidayReasonAr = ov.HolidayReasonAr
	}

	bd, err := a.sched.GetBlockedDate(ctx, date)
	if err != nil && !errors.Is(err, schedule.ErrBlockedDateNotFound) {
		return nil, err
	}
	if bd != nil {
		st.Blocked = true
		st.BlockedReason = bd.Reason
		st.BlockedReasonAr = bd.ReasonAr
		st.AvailableSlots = 0
	}

	return st, nil
}
