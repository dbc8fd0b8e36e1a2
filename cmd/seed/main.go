package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wakala-community/booking-desk/internal/booking"
	"github.com/wakala-community/booking-desk/internal/db"
	"github.com/wakala-community/booking-desk/internal/schedule"
	"github.com/wakala-community/booking-desk/internal/slot"
)

const seedDays = 14

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	serviceIDs, err := seedServices(context.Background(), pool)
	if err != nil {
		log.Fatalf("seed services: %v", err)
	}

	scheduleRepo := schedule.NewPgRepository(pool)
	if err := seedWorkingHours(context.Background(), scheduleRepo); err != nil {
		log.Fatalf("seed working hours: %v", err)
	}
	if err := seedCalendarExceptions(context.Background(), scheduleRepo); err != nil {
		log.Fatalf("seed calendar exceptions: %v", err)
	}

	slotStore := slot.NewPgStore(pool)
	resolver := schedule.NewResolver(scheduleRepo)
	regenerator := slot.NewRegenerator(slotStore, resolver, nil, nil)

	from := time.Now().Format("2006-01-02")
	to := time.Now().AddDate(0, 0, seedDays-1).Format("2006-01-02")
	for _, id := range serviceIDs {
		result, err := regenerator.RegenerateRange(context.Background(), id, from, to)
		if err != nil {
			log.Fatalf("regenerate slots for service %s: %v", id, err)
		}
		log.Printf("service %s: %d slots created over %d dates", id, result.Created, result.Dates)
	}

	bookingRepo := booking.NewPgRepository(pool)
	coordinator := booking.NewCoordinator(slotStore, bookingRepo, nil)
	if err := seedBookings(context.Background(), coordinator, slotStore, serviceIDs); err != nil {
		log.Fatalf("seed bookings: %v", err)
	}

	log.Println("seed complete")
}

func seedServices(ctx context.Context, pool *pgxpool.Pool) ([]uuid.UUID, error) {
	services := []struct {
		name   string
		nameAr string
	}{
		{"Document Attestation", "تصديق الوثائق"},
		{"Power of Attorney", "توكيل رسمي"},
		{"Residency Renewal", "تجديد الإقامة"},
		{"Certificate Issuance", "إصدار الشهادات"},
	}

	log.Printf("seeding %d services", len(services))

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, len(services))
	for _, s := range services {
		id := uuid.New()
		_, err := tx.Exec(ctx, `
			INSERT INTO services (id, name, name_ar, active, created_at, updated_at)
			VALUES ($1, $2, $3, true, now(), now())
		`, id, s.name, s.nameAr)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Println("services seeded")
	return ids, nil
}

// Sunday through Thursday open, Friday and Saturday closed.
func seedWorkingHours(ctx context.Context, repo schedule.Repository) error {
	openDays := map[int]bool{7: true, 1: true, 2: true, 3: true, 4: true}

	for weekday := 1; weekday <= 7; weekday++ {
		err := repo.UpsertWeekdayConfig(ctx, schedule.WorkingHoursConfig{
			Weekday:         weekday,
			StartTime:       "08:30",
			EndTime:         "14:30",
			LastAppointment: "14:00",
			SlotMinutes:     30,
			Active:          openDays[weekday],
		})
		if err != nil {
			return err
		}
	}

	log.Println("working hours seeded")
	return nil
}

func seedCalendarExceptions(ctx context.Context, repo schedule.Repository) error {
	// A shortened day next week with a midday break.
	shortDay := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	err := repo.PutDayOverride(ctx, schedule.DayOverride{
		Date:      shortDay,
		StartTime: "09:00",
		EndTime:   "12:30",
		Breaks:    []schedule.BreakWindow{{Start: "10:30", End: "11:00"}},
	})
	if err != nil {
		return err
	}

	// A fully blocked date further out.
	blocked := time.Now().AddDate(0, 0, 10).Format("2006-01-02")
	err = repo.PutBlockedDate(ctx, schedule.BlockedDate{
		Date:     blocked,
		Reason:   "Staff training day",
		ReasonAr: "يوم تدريب الموظفين",
	})
	if err != nil {
		return err
	}

	log.Printf("calendar exceptions seeded: short_day=%s blocked=%s", shortDay, blocked)
	return nil
}

func seedBookings(ctx context.Context, coordinator *booking.Coordinator, store slot.Store, serviceIDs []uuid.UUID) error {
	log.Println("seeding demo bookings")

	durations := []int{30, 30, 60}
	created := 0

	for _, serviceID := range serviceIDs {
		date := time.Now().AddDate(0, 0, gofakeit.Number(1, 5)).Format("2006-01-02")

		slots, err := store.ListForDate(ctx, serviceID, date)
		if err != nil {
			return err
		}

		booked := 0
		for _, ds := range slots {
			if booked >= len(durations) {
				break
			}
			if !ds.Bookable() {
				continue
			}

			_, err := coordinator.Book(ctx, booking.BookRequest{
				ServiceID:       serviceID,
				Date:            date,
				StartSlotID:     ds.ID,
				DurationMinutes: durations[booked],
				FullName:        gofakeit.Name(),
				Phone:           gofakeit.Phone(),
				Email:           gofakeit.Email(),
			})
			if err != nil {
				// 60-minute requests fail near closing or breaks; try the
				// next slot
				if errors.Is(err, booking.ErrInvalidSelection) || errors.Is(err, slot.ErrAlreadyClaimed) {
					continue
				}
				return err
			}
			booked++
			created++
		}
	}

	log.Printf("demo bookings seeded: %d", created)
	return nil
}
