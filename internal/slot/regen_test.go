package slot

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakala-community/booking-desk/internal/schedule"
)

// resolverFunc lets a test hand the regenerator whatever hours it wants.
type resolverFunc func(ctx context.Context, date string) (*schedule.EffectiveHours, error)

func (f resolverFunc) Resolve(ctx context.Context, date string) (*schedule.EffectiveHours, error) {
	return f(ctx, date)
}

func fixedHours(start, end, last string) resolverFunc {
	return func(_ context.Context, date string) (*schedule.EffectiveHours, error) {
		return &schedule.EffectiveHours{
			Date:            date,
			StartTime:       start,
			EndTime:         end,
			LastAppointment: last,
			SlotMinutes:     30,
		}, nil
	}
}

func TestRegenerateDateCreatesGrid(t *testing.T) {
	store := NewMemoryStore()
	regen := NewRegenerator(store, fixedHours("09:00", "11:00", "10:30"), nil, nil)
	serviceID := uuid.New()

	result, err := regen.RegenerateDate(context.Background(), serviceID, "2026-09-10")
	require.NoError(t, err)

	assert.Equal(t, 4, result.Created)
	assert.Equal(t, 0, result.Removed)
	assert.Equal(t, 0, result.Preserved)

	slots, err := store.ListForDate(context.Background(), serviceID, "2026-09-10")
	require.NoError(t, err)
	assert.Len(t, slots, 4)
}

func TestRegenerateDateIsIdempotent(t *testing.T) {
	store := NewMemoryStore()
	regen := NewRegenerator(store, fixedHours("09:00", "11:00", "10:30"), nil, nil)
	serviceID := uuid.New()

	_, err := regen.RegenerateDate(context.Background(), serviceID, "2026-09-10")
	require.NoError(t, err)

	again, err := regen.RegenerateDate(context.Background(), serviceID, "2026-09-10")
	require.NoError(t, err)

	assert.Equal(t, 0, again.Created)
	assert.Equal(t, 0, again.Removed)
	assert.Equal(t, 4, again.Preserved)
}

func TestRegenerateDatePreservesBookedOutsideNewHours(t *testing.T) {
	store := NewMemoryStore()
	serviceID := uuid.New()
	ctx := context.Background()

	wide := NewRegenerator(store, fixedHours("09:00", "11:00", "10:30"), nil, nil)
	_, err := wide.RegenerateDate(ctx, serviceID, "2026-09-10")
	require.NoError(t, err)

	slots, err := store.ListForDate(ctx, serviceID, "2026-09-10")
	require.NoError(t, err)
	first := slots[0] // 09:00-09:30
	require.NoError(t, store.Claim(ctx, first.ID))
	store.MarkBooked(first.ID, true)

	// Shrink the morning: hours now start at 10:00.
	narrow := NewRegenerator(store, fixedHours("10:00", "11:00", "10:30"), nil, nil)
	result, err := narrow.RegenerateDate(ctx, serviceID, "2026-09-10")
	require.NoError(t, err)

	// 09:30 removed, 09:00 kept because it is booked.
	assert.Equal(t, 1, result.Removed)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 3, result.Preserved)

	kept, err := store.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, kept.IsAvailable)
}

func TestRegenerateDateClosedDayRemovesUnbooked(t *testing.T) {
	store := NewMemoryStore()
	serviceID := uuid.New()
	ctx := context.Background()

	open := NewRegenerator(store, fixedHours("09:00", "10:00", "09:30"), nil, nil)
	_, err := open.RegenerateDate(ctx, serviceID, "2026-09-10")
	require.NoError(t, err)

	closed := NewRegenerator(store, resolverFunc(func(_ context.Context, date string) (*schedule.EffectiveHours, error) {
		return nil, &schedule.ClosedDayError{Date: date, Reason: "public holiday"}
	}), nil, nil)

	result, err := closed.RegenerateDate(ctx, serviceID, "2026-09-10")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Removed)
	assert.Equal(t, 0, result.Created)

	slots, err := store.ListForDate(ctx, serviceID, "2026-09-10")
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestRegenerateRangeContinuesPastFailures(t *testing.T) {
	store := NewMemoryStore()
	serviceID := uuid.New()

	boom := errors.New("schedule backend down")
	resolver := resolverFunc(func(_ context.Context, date string) (*schedule.EffectiveHours, error) {
		if date == "2026-09-11" {
			return nil, boom
		}
		return fixedHours("09:00", "10:00", "09:30")(nil, date)
	})

	regen := NewRegenerator(store, resolver, nil, nil)
	result, err := regen.RegenerateRange(context.Background(), serviceID, "2026-09-10", "2026-09-12")

	require.ErrorIs(t, err, ErrPartialRegeneration)
	require.NotNil(t, result)
	assert.Equal(t, 3, result.Dates)
	assert.Equal(t, 4, result.Created) // two good dates, two slots each
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "2026-09-11", result.Failed[0].Date)

	// The date after the failure was still processed.
	slots, err := store.ListForDate(context.Background(), serviceID, "2026-09-12")
	require.NoError(t, err)
	assert.Len(t, slots, 2)
}

func TestRegenerateRangeRejectsInvertedRange(t *testing.T) {
	regen := NewRegenerator(NewMemoryStore(), fixedHours("09:00", "10:00", "09:30"), nil, nil)
	_, err := regen.RegenerateRange(context.Background(), uuid.New(), "2026-09-12", "2026-09-10")
	require.Error(t, err)
}
