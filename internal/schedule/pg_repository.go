package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wakala-community/booking-desk/internal/db"
)

type PgRepository struct {
	db db.Querier
}

func NewPgRepository(q db.Querier) *PgRepository {
	return &PgRepository{db: q}
}

// Helpers

func scanWeekdayConfig(row pgx.Row) (*WorkingHoursConfig, error) {
	var c WorkingHoursConfig

	err := row.Scan(
		&c.Weekday,
		&c.StartTime,
		&c.EndTime,
		&c.LastAppointment,
		&c.SlotMinutes,
		&c.Active,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWeekdayNotConfigured
		}
		return nil, err
	}

	return &c, nil
}

func scanDayOverride(row pgx.Row) (*DayOverride, error) {
	var ov DayOverride
	var lastAppointment *string
	var slotMinutes *int
	var breaks []byte

	err := row.Scan(
		&ov.Date,
		&ov.StartTime,
		&ov.EndTime,
		&lastAppointment,
		&slotMinutes,
		&breaks,
		&ov.Holiday,
		&ov.HolidayReason,
		&ov.HolidayReasonAr,
		&ov.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOverrideNotFound
		}
		return nil, err
	}

	if lastAppointment != nil {
		ov.LastAppointment = *lastAppointment
	}
	if slotMinutes != nil {
		ov.SlotMinutes = *slotMinutes
	}
	if len(breaks) > 0 {
		if err := json.Unmarshal(breaks, &ov.Breaks); err != nil {
			return nil, fmt.Errorf("decode breaks for %s: %w", ov.Date, err)
		}
	}

	return &ov, nil
}

func scanBlockedDate(row pgx.Row) (*BlockedDate, error) {
	var bd BlockedDate

	err := row.Scan(
		&bd.Date,
		&bd.Reason,
		&bd.ReasonAr,
		&bd.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBlockedDateNotFound
		}
		return nil, err
	}

	return &bd, nil
}

// Interface methods

func (r *PgRepository) GetWeekdayConfig(ctx context.Context, weekday int) (*WorkingHoursConfig, error) {
	row := r.db.QueryRow(ctx, `
		SELECT weekday, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'),
		       to_char(last_appointment, 'HH24:MI'), slot_minutes, active, updated_at
		FROM working_hours
		WHERE weekday = $1
	`, weekday)
	return scanWeekdayConfig(row)
}

func (r *PgRepository) ListWeekdayConfigs(ctx context.Context) ([]WorkingHoursConfig, error) {
	rows, err := r.db.Query(ctx, `
		SELECT weekday, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'),
		       to_char(last_appointment, 'HH24:MI'), slot_minutes, active, updated_at
		FROM working_hours
		ORDER BY weekday
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []WorkingHoursConfig
	for rows.Next() {
		c, err := scanWeekdayConfig(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}

	return result, rows.Err()
}

func (r *PgRepository) UpsertWeekdayConfig(ctx context.Context, cfg WorkingHoursConfig) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO working_hours (weekday, start_time, end_time, last_appointment, slot_minutes, active, updated_at)
		VALUES ($1, $2::time, $3::time, $4::time, $5, $6, now())
		ON CONFLICT (weekday) DO UPDATE
		SET start_time = EXCLUDED.start_time,
		    end_time = EXCLUDED.end_time,
		    last_appointment = EXCLUDED.last_appointment,
		    slot_minutes = EXCLUDED.slot_minutes,
		    active = EXCLUDED.active,
		    updated_at = now()
	`, cfg.Weekday, cfg.StartTime, cfg.EndTime, cfg.LastAppointment, cfg.SlotMinutes, cfg.Active)
	if err != nil {
		return fmt.Errorf("upsert working hours for weekday %d: %w", cfg.Weekday, err)
	}
	return nil
}

func (r *PgRepository) GetDayOverride(ctx context.Context, date string) (*DayOverride, error) {
	row := r.db.QueryRow(ctx, `
		SELECT date::text, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'),
		       to_char(last_appointment, 'HH24:MI'), slot_minutes, breaks,
		       is_holiday, holiday_reason, holiday_reason_ar, updated_at
		FROM day_overrides
		WHERE date = $1::date
	`, date)
	return scanDayOverride(row)
}

func (r *PgRepository) PutDayOverride(ctx context.Context, ov DayOverride) error {
	breaks, err := json.Marshal(ov.Breaks)
	if err != nil {
		return fmt.Errorf("encode breaks for %s: %w", ov.Date, err)
	}

	var lastAppointment *string
	if ov.LastAppointment != "" {
		lastAppointment = &ov.LastAppointment
	}
	var slotMinutes *int
	if ov.SlotMinutes != 0 {
		slotMinutes = &ov.SlotMinutes
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO day_overrides (date, start_time, end_time, last_appointment, slot_minutes, breaks,
		                           is_holiday, holiday_reason, holiday_reason_ar, updated_at)
		VALUES ($1::date, $2::time, $3::time, $4::time, $5, $6, $7, $8, $9, now())
		ON CONFLICT (date) DO UPDATE
		SET start_time = EXCLUDED.start_time,
		    end_time = EXCLUDED.end_time,
		    last_appointment = EXCLUDED.last_appointment,
		    slot_minutes = EXCLUDED.slot_minutes,
		    breaks = EXCLUDED.breaks,
		    is_holiday = EXCLUDED.is_holiday,
		    holiday_reason = EXCLUDED.holiday_reason,
		    holiday_reason_ar = EXCLUDED.holiday_reason_ar,
		    updated_at = now()
	`, ov.Date, ov.StartTime, ov.EndTime, lastAppointment, slotMinutes, breaks,
		ov.Holiday, ov.HolidayReason, ov.HolidayReasonAr)
	if err != nil {
		return fmt.Errorf("upsert day override for %s: %w", ov.Date, err)
	}
	return nil
}

func (r *PgRepository) DeleteDayOverride(ctx context.Context, date string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM day_overrides WHERE date = $1::date`, date)
	if err != nil {
		return fmt.Errorf("delete day override for %s: %w", date, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOverrideNotFound
	}
	return nil
}

func (r *PgRepository) GetBlockedDate(ctx context.Context, date string) (*BlockedDate, error) {
	row := r.db.QueryRow(ctx, `
		SELECT date::text, reason, reason_ar, created_at
		FROM blocked_dates
		WHERE date = $1::date
	`, date)
	return scanBlockedDate(row)
}

func (r *PgRepository) ListBlockedDates(ctx context.Context, from, to string) ([]BlockedDate, error) {
	rows, err := r.db.Query(ctx, `
		SELECT date::text, reason, reason_ar, created_at
		FROM blocked_dates
		WHERE date BETWEEN $1::date AND $2::date
		ORDER BY date
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []BlockedDate
	for rows.Next() {
		bd, err := scanBlockedDate(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *bd)
	}

	return result, rows.Err()
}

func (r *PgRepository) PutBlockedDate(ctx context.Context, bd BlockedDate) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO blocked_dates (date, reason, reason_ar, created_at)
		VALUES ($1::date, $2, $3, now())
		ON CONFLICT (date) DO UPDATE
		SET reason = EXCLUDED.reason,
		    reason_ar = EXCLUDED.reason_ar
	`, bd.Date, bd.Reason, bd.ReasonAr)
	if err != nil {
		return fmt.Errorf("upsert blocked date %s: %w", bd.Date, err)
	}
	return nil
}

func (r *PgRepository) DeleteBlockedDate(ctx context.Context, date string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM blocked_dates WHERE date = $1::date`, date)
	if err != nil {
		return fmt.Errorf("delete blocked date %s: %w", date, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBlockedDateNotFound
	}
	return nil
}
