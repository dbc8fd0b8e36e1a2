package slot

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/wakala-community/booking-desk/internal/schedule"
)

// Generate expands effective hours into the ordered slot grid for one
// (service, date). Slots start at StartTime and advance by SlotMinutes up to
// and including LastAppointment, never run past EndTime, and skip any slot
// overlapping a break window. Boundaries are computed from minute-of-day
// arithmetic, so identical inputs always yield identical output.
func Generate(serviceID uuid.UUID, date string, hours *schedule.EffectiveHours) ([]Slot, error) {
	if hours.SlotMinutes <= 0 {
		return nil, fmt.Errorf("invalid slot interval %d for %s", hours.SlotMinutes, date)
	}

	start, err := schedule.MinuteOfDay(hours.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := schedule.MinuteOfDay(hours.EndTime)
	if err != nil {
		return nil, err
	}
	last, err := schedule.MinuteOfDay(hours.LastAppointment)
	if err != nil {
		return nil, err
	}

	type window struct{ start, end int }
	breaks := make([]window, 0, len(hours.Breaks))
	for _, b := range hours.Breaks {
		bs, err := schedule.MinuteOfDay(b.Start)
		if err != nil {
			return nil, err
		}
		be, err := schedule.MinuteOfDay(b.End)
		if err != nil {
			return nil, err
		}
		breaks = append(breaks, window{bs, be})
	}

	var slots []Slot
	for cur := start; cur <= last && cur+hours.SlotMinutes <= end; cur += hours.SlotMinutes {
		slotEnd := cur + hours.SlotMinutes

		overlapsBreak := false
		for _, b := range breaks {
			// half-open intervals: [cur, slotEnd) vs [b.start, b.end)
			if cur < b.end && b.start < slotEnd {
				overlapsBreak = true
				break
			}
		}
		if overlapsBreak {
			continue
		}

		slots = append(slots, Slot{
			ID:          uuid.New(),
			ServiceID:   serviceID,
			Date:        date,
			StartTime:   schedule.FormatMinute(cur),
			EndTime:     schedule.FormatMinute(slotEnd),
			IsAvailable: true,
		})
	}

	return slots, nil
}
