package slot

import "github.com/google/uuid"

// Plan is the outcome of diffing a date's stored slots against the grid its
// current effective hours would produce.
type Plan struct {
	Create    []Slot
	Remove    []uuid.UUID
	Preserved int
}

// Reconcile diffs existing slots against the desired grid, keyed by
// start-end window. Booked slots are always preserved, whether or not the
// new schedule still contains their window. Unbooked slots outside the
// desired grid are scheduled for removal; desired windows with no stored
// slot are scheduled for creation. Pure function, no storage I/O.
func Reconcile(existing []DateSlot, desired []Slot) Plan {
	var plan Plan

	have := make(map[string]bool, len(existing))
	want := make(map[string]bool, len(desired))
	for _, d := range desired {
		want[d.Window()] = true
	}

	for _, e := range existing {
		have[e.Window()] = true
		if e.Booked || want[e.Window()] {
			plan.Preserved++
			continue
		}
		plan.Remove = append(plan.Remove, e.ID)
	}

	for _, d := range desired {
		if !have[d.Window()] {
			plan.Create = append(plan.Create, d)
		}
	}

	return plan
}
