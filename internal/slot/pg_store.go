package slot

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wakala-community/booking-desk/internal/db"
)

const slotColumns = `id, service_id, date::text, to_char(start_time, 'HH24:MI'),
	       to_char(end_time, 'HH24:MI'), is_available, is_blocked_by_admin, created_at, updated_at`

type PgStore struct {
	db db.Querier
}

func NewPgStore(q db.Querier) *PgStore {
	return &PgStore{db: q}
}

func scanSlot(row pgx.Row) (*Slot, error) {
	var s Slot

	err := row.Scan(
		&s.ID,
		&s.ServiceID,
		&s.Date,
		&s.StartTime,
		&s.EndTime,
		&s.IsAvailable,
		&s.IsBlockedByAdmin,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	return &s, nil
}

// Claim is a single conditional update; the WHERE clause is the whole
// check-and-set, so concurrent claimers serialize on the row and at most
// one sees RowsAffected == 1.
func (r *PgStore) Claim(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE slots
		SET is_available = false,
		    updated_at = now()
		WHERE id = $1
		  AND is_available
		  AND NOT is_blocked_by_admin
	`, id)
	if err != nil {
		return fmt.Errorf("claim slot %s: %w", id, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// Lost the race or the slot was never claimable; diagnose which.
	s, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if s.IsBlockedByAdmin {
		return ErrSlotBlocked
	}
	return ErrAlreadyClaimed
}

func (r *PgStore) Release(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE slots
		SET is_available = true,
		    updated_at = now()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("release slot %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSlotNotFound
	}
	return nil
}

func (r *PgStore) SetAdminBlock(ctx context.Context, id uuid.UUID, blocked bool) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE slots
		SET is_blocked_by_admin = $2,
		    updated_at = now()
		WHERE id = $1
	`, id, blocked)
	if err != nil {
		return fmt.Errorf("set admin block on slot %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSlotNotFound
	}
	return nil
}

func (r *PgStore) GetByID(ctx context.Context, id uuid.UUID) (*Slot, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+slotColumns+`
		FROM slots
		WHERE id = $1
	`, id)
	return scanSlot(row)
}

func (r *PgStore) Following(ctx context.Context, serviceID uuid.UUID, date, afterStart string) (*Slot, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+slotColumns+`
		FROM slots
		WHERE service_id = $1
		  AND date = $2::date
		  AND start_time > $3::time
		ORDER BY start_time
		LIMIT 1
	`, serviceID, date, afterStart)
	return scanSlot(row)
}

func (r *PgStore) ListForDate(ctx context.Context, serviceID uuid.UUID, date string) ([]DateSlot, error) {
	rows, err := r.db.Query(ctx, `
		SELECT s.id, s.service_id, s.date::text, to_char(s.start_time, 'HH24:MI'),
		       to_char(s.end_time, 'HH24:MI'), s.is_available, s.is_blocked_by_admin,
		       s.created_at, s.updated_at,
		       EXISTS (
		           SELECT 1 FROM bookings b
		           WHERE (b.start_slot_id = s.id OR b.second_slot_id = s.id)
		             AND b.status <> 'cancelled'
		       ) AS booked
		FROM slots s
		WHERE s.service_id = $1
		  AND s.date = $2::date
		ORDER BY s.start_time
	`, serviceID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []DateSlot
	for rows.Next() {
		var ds DateSlot
		err := rows.Scan(
			&ds.ID,
			&ds.ServiceID,
			&ds.Date,
			&ds.StartTime,
			&ds.EndTime,
			&ds.IsAvailable,
			&ds.IsBlockedByAdmin,
			&ds.CreatedAt,
			&ds.UpdatedAt,
			&ds.Booked,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, ds)
	}

	return result, rows.Err()
}

func (r *PgStore) Insert(ctx context.Context, slots []Slot) error {
	if len(slots) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, s := range slots {
		_, err := tx.Exec(ctx, `
			INSERT INTO slots (id, service_id, date, start_time, end_time,
			                   is_available, is_blocked_by_admin, created_at, updated_at)
			VALUES ($1, $2, $3::date, $4::time, $5::time, $6, $7, now(), now())
			ON CONFLICT (service_id, date, start_time) DO NOTHING
		`, s.ID, s.ServiceID, s.Date, s.StartTime, s.EndTime, s.IsAvailable, s.IsBlockedByAdmin)
		if err != nil {
			return fmt.Errorf("insert slot %s %s: %w", s.Date, s.StartTime, err)
		}
	}

	return tx.Commit(ctx)
}

// DeleteIfUnbooked only removes a slot that is still free; the subquery runs
// inside the DELETE so a claim landing first wins and the slot survives.
func (r *PgStore) DeleteIfUnbooked(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM slots s
		WHERE s.id = $1
		  AND s.is_available
		  AND NOT EXISTS (
		      SELECT 1 FROM bookings b
		      WHERE (b.start_slot_id = s.id OR b.second_slot_id = s.id)
		        AND b.status <> 'cancelled'
		  )
	`, id)
	if err != nil {
		return false, fmt.Errorf("delete slot %s: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}
