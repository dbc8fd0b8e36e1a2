package slot

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/wakala-community/booking-desk/internal/metrics"
	redisclient "github.com/wakala-community/booking-desk/internal/redis"
	"github.com/wakala-community/booking-desk/internal/schedule"
)

// ErrPartialRegeneration marks a bulk run in which some dates failed;
// the remaining dates were still processed.
var ErrPartialRegeneration = errors.New("some dates failed to regenerate")

// HoursResolver yields the effective working hours for a date.
type HoursResolver interface {
	Resolve(ctx context.Context, date string) (*schedule.EffectiveHours, error)
}

// Regenerator reconciles a date's stored slots with its current effective
// hours: creates missing slots, removes unbooked stale ones, preserves
// booked ones.
type Regenerator struct {
	store    Store
	resolver HoursResolver
	locker   redisclient.Locker
	metrics  *metrics.EngineMetrics
}

// NewRegenerator creates a regenerator. locker may be nil, in which case
// runs for the same date are not serialized across processes; metrics may
// be nil.
func NewRegenerator(store Store, resolver HoursResolver, locker redisclient.Locker, m *metrics.EngineMetrics) *Regenerator {
	return &Regenerator{
		store:    store,
		resolver: resolver,
		locker:   locker,
		metrics:  m,
	}
}

type RegenResult struct {
	Date      string `json:"date"`
	Created   int    `json:"created"`
	Removed   int    `json:"removed"`
	Preserved int    `json:"preserved"`
}

type DateError struct {
	Date string `json:"date"`
	Err  string `json:"error"`
}

type RangeResult struct {
	Dates     int         `json:"dates"`
	Created   int         `json:"created"`
	Removed   int         `json:"removed"`
	Preserved int         `json:"preserved"`
	Failed    []DateError `json:"failed,omitempty"`
}

// RegenerateDate reconciles one (service, date). Safe to re-run: a second
// pass with unchanged hours creates and removes nothing.
func (g *Regenerator) RegenerateDate(ctx context.Context, serviceID uuid.UUID, date string) (*RegenResult, error) {
	var result *RegenResult

	run := func(ctx context.Context) error {
		r, err := g.regenerate(ctx, serviceID, date)
		result = r
		return err
	}

	var err error
	if g.locker != nil {
		err = g.locker.WithLock(ctx, fmt.Sprintf("regen:%s:%s", serviceID, date), run)
	} else {
		err = run(ctx)
	}
	if err != nil {
		g.metrics.ObserveRegeneration("error")
		return nil, err
	}

	g.metrics.ObserveRegeneration("ok")
	return result, nil
}

func (g *Regenerator) regenerate(ctx context.Context, serviceID uuid.UUID, date string) (*RegenResult, error) {
	var desired []Slot

	hours, err := g.resolver.Resolve(ctx, date)
	switch {
	case errors.Is(err, schedule.ErrClosedDay):
		// closed day: the desired grid is empty, unbooked slots go away
	case err != nil:
		return nil, fmt.Errorf("resolve hours for %s: %w", date, err)
	default:
		desired, err = Generate(serviceID, date, hours)
		if err != nil {
			return nil, fmt.Errorf("generate slots for %s: %w", date, err)
		}
	}

	existing, err := g.store.ListForDate(ctx, serviceID, date)
	if err != nil {
		return nil, fmt.Errorf("list slots for %s: %w", date, err)
	}

	plan := Reconcile(existing, desired)

	if err := g.store.Insert(ctx, plan.Create); err != nil {
		return nil, fmt.Errorf("insert slots for %s: %w", date, err)
	}

	result := &RegenResult{
		Date:      date,
		Created:   len(plan.Create),
		Preserved: plan.Preserved,
	}

	for _, id := range plan.Remove {
		removed, err := g.store.DeleteIfUnbooked(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("remove slot %s: %w", id, err)
		}
		if removed {
			result.Removed++
		} else {
			// claimed between diff and delete; the conditional delete
			// lost the race, keep the slot
			result.Preserved++
		}
	}

	return result, nil
}

// RegenerateRange runs RegenerateDate for every date in the inclusive
// range. A failing date is recorded and the batch continues; if any date
// failed the aggregate error matches ErrPartialRegeneration.
func (g *Regenerator) RegenerateRange(ctx context.Context, serviceID uuid.UUID, from, to string) (*RangeResult, error) {
	dates, err := schedule.DatesBetween(from, to)
	if err != nil {
		return nil, err
	}

	result := &RangeResult{Dates: len(dates)}

	for _, date := range dates {
		r, err := g.RegenerateDate(ctx, serviceID, date)
		if err != nil {
			log.Printf("regenerate %s service=%s failed: %v", date, serviceID, err)
			result.Failed = append(result.Failed, DateError{Date: date, Err: err.Error()})
			continue
		}
		result.Created += r.Created
		result.Removed += r.Removed
		result.Preserved += r.Preserved
	}

	if len(result.Failed) > 0 {
		return result, fmt.Errorf("%w: %d of %d dates", ErrPartialRegeneration, len(result.Failed), result.Dates)
	}

	return result, nil
}
