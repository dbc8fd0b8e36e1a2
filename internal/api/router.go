package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wakala-community/booking-desk/internal/availability"
	"github.com/wakala-community/booking-desk/internal/booking"
	"github.com/wakala-community/booking-desk/internal/schedule"
	"github.com/wakala-community/booking-desk/internal/slot"
)

type RouterConfig struct {
	ScheduleRepo schedule.Repository
	Resolver     *schedule.Resolver
	SlotStore    slot.Store
	Regenerator  *slot.Regenerator
	Coordinator  *booking.Coordinator
	BookingRepo  booking.Repository
	Aggregator   *availability.Aggregator
	PgPool       *pgxpool.Pool
	Redis        *redis.Client
	Env          string
	Version      string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Handle("/metrics", promhttp.Handler())

	// Schedule endpoints
	r.Get("/hours/{date}", resolveHoursHandler(cfg.Resolver))
	r.Get("/admin/hours", listWeekdayHoursHandler(cfg.ScheduleRepo))
	r.Put("/admin/hours/{weekday}", putWeekdayHoursHandler(cfg.ScheduleRepo))
	r.Put("/admin/overrides/{date}", putOverrideHandler(cfg.ScheduleRepo))
	r.Delete("/admin/overrides/{date}", deleteOverrideHandler(cfg.ScheduleRepo))
	r.Get("/admin/blocked-dates", listBlockedDatesHandler(cfg.ScheduleRepo))
	r.Put("/admin/blocked-dates/{date}", putBlockedDateHandler(cfg.ScheduleRepo))
	r.Delete("/admin/blocked-dates/{date}", deleteBlockedDateHandler(cfg.ScheduleRepo))

	// Slot endpoints
	r.Get("/services/{serviceID}/slots/{date}", listSlotsHandler(cfg.SlotStore))
	r.Post("/slots/{id}/claim", claimSlotHandler(cfg.SlotStore))
	r.Post("/slots/{id}/release", releaseSlotHandler(cfg.SlotStore))
	r.Post("/admin/slots/{id}/block", setSlotBlockHandler(cfg.SlotStore, true))
	r.Post("/admin/slots/{id}/unblock", setSlotBlockHandler(cfg.SlotStore, false))

	// Regeneration endpoints
	r.Post("/admin/services/{serviceID}/regenerate/{date}", regenerateDateHandler(cfg.Regenerator))
	r.Post("/admin/services/{serviceID}/regenerate", regenerateRangeHandler(cfg.Regenerator))

	// Reservation endpoints
	r.Post("/reservations", reserveHandler(cfg.Coordinator))
	r.Post("/reservations/release", releaseReservationHandler(cfg.Coordinator))

	// Booking endpoints
	r.Post("/bookings", createBookingHandler(cfg.Coordinator, cfg.ScheduleRepo))
	r.Post("/bookings/{id}/cancel", cancelBookingHandler(cfg.Coordinator))
	r.Put("/bookings/{id}/status", setBookingStatusHandler(cfg.Coordinator))
	r.Put("/bookings/{id}/assign", assignBookingHandler(cfg.BookingRepo))
	r.Get("/services/{serviceID}/bookings/{date}", listBookingsHandler(cfg.BookingRepo))

	// Availability endpoints
	r.Get("/services/{serviceID}/stats", statsHandler(cfg.Aggregator))

	return r
}
