package schedule

import (
	"context"
	"errors"
	"fmt"
)

// ErrClosedDay is matched by every "no bookable hours" condition: holiday
// override, inactive weekday, or no configuration at all.
var ErrClosedDay = errors.New("no working hours for date")

// ClosedDayError carries the reason text for a closed date so callers can
// render it. It matches ErrClosedDay under errors.Is.
type ClosedDayError struct {
	Date     string
	Reason   string
	ReasonAr string
}

func (e *ClosedDayError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("date %s is closed: %s", e.Date, e.Reason)
	}
	return fmt.Sprintf("date %s is closed", e.Date)
}

func (e *ClosedDayError) Is(target error) bool {
	return target == ErrClosedDay
}

// Resolver computes the effective working hours for a date by applying
// day overrides on top of the weekly default.
type Resolver struct {
	repo Repository
}

func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve returns the hours in force for date, or a ClosedDayError when the
// date has none. A missing configuration fails safe to closed, never to
// always-open.
func (r *Resolver) Resolve(ctx context.Context, date string) (*EffectiveHours, error) {
	weekday, err := WeekdayOf(date)
	if err != nil {
		return nil, err
	}

	ov, err := r.repo.GetDayOverride(ctx, date)
	if err != nil && !errors.Is(err, ErrOverrideNotFound) {
		return nil, fmt.Errorf("load day override: %w", err)
	}

	if ov != nil {
		if ov.Holiday {
			return nil, &ClosedDayError{Date: date, Reason: ov.HolidayReason, ReasonAr: ov.HolidayReasonAr}
		}
		return r.fromOverride(ctx, weekday, ov)
	}

	cfg, err := r.repo.GetWeekdayConfig(ctx, weekday)
	if err != nil {
		if errors.Is(err, ErrWeekdayNotConfigured) {
			return nil, &ClosedDayError{Date: date}
		}
		return nil, fmt.Errorf("load weekday config: %w", err)
	}
	if !cfg.Active {
		return nil, &ClosedDayError{Date: date}
	}

	return &EffectiveHours{
		Date:            date,
		StartTime:       cfg.StartTime,
		EndTime:         cfg.EndTime,
		LastAppointment: cfg.LastAppointment,
		SlotMinutes:     cfg.SlotMinutes,
		Breaks:          nil,
	}, nil
}

// fromOverride fills the override's optional fields from the weekday
// default where the override is silent.
func (r *Resolver) fromOverride(ctx context.Context, weekday int, ov *DayOverride) (*EffectiveHours, error) {
	hours := &EffectiveHours{
		Date:            ov.Date,
		StartTime:       ov.StartTime,
		EndTime:         ov.EndTime,
		LastAppointment: ov.LastAppointment,
		SlotMinutes:     ov.SlotMinutes,
		Breaks:          ov.Breaks,
	}

	if hours.SlotMinutes != 0 && hours.LastAppointment != "" {
		return hours, nil
	}

	cfg, err := r.repo.GetWeekdayConfig(ctx, weekday)
	if err != nil && !errors.Is(err, ErrWeekdayNotConfigured) {
		return nil, fmt.Errorf("load weekday config: %w", err)
	}

	if hours.SlotMinutes == 0 {
		if cfg != nil {
			hours.SlotMinutes = cfg.SlotMinutes
		} else {
			hours.SlotMinutes = 30
		}
	}
	if hours.LastAppointment == "" {
		end, err := MinuteOfDay(hours.EndTime)
		if err != nil {
			return nil, err
		}
		hours.LastAppointment = FormatMinute(end - hours.SlotMinutes)
	}

	return hours, nil
}
