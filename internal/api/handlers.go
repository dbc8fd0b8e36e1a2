package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wakala-community/booking-desk/internal/availability"
	"github.com/wakala-community/booking-desk/internal/booking"
	"github.com/wakala-community/booking-desk/internal/schedule"
	"github.com/wakala-community/booking-desk/internal/slot"
)

func toBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:              b.ID,
		ServiceID:       b.ServiceID,
		Date:            b.Date,
		StartSlotID:     b.StartSlotID,
		SecondSlotID:    b.SecondSlotID,
		DurationMinutes: b.DurationMinutes,
		FullName:        b.FullName,
		Phone:           b.Phone,
		Email:           b.Email,
		Status:          string(b.Status),
		AssignedTo:      b.AssignedTo,
	}
}

func parseUUIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_"+name, name+" must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func parseDateParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	date := chi.URLParam(r, "date")
	if _, err := schedule.WeekdayOf(date); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
		return "", false
	}
	return date, true
}

// Hours

func resolveHoursHandler(resolver *schedule.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, ok := parseDateParam(w, r)
		if !ok {
			return
		}

		hours, err := resolver.Resolve(r.Context(), date)
		if err != nil {
			var closed *schedule.ClosedDayError
			if errors.As(err, &closed) {
				writeJSON(w, http.StatusOK, EffectiveHoursResponse{
					Date:     date,
					Closed:   true,
					Reason:   closed.Reason,
					ReasonAr: closed.ReasonAr,
				})
				return
			}
			mapError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, EffectiveHoursResponse{
			Date:            hours.Date,
			StartTime:       hours.StartTime,
			EndTime:         hours.EndTime,
			LastAppointment: hours.LastAppointment,
			SlotMinutes:     hours.SlotMinutes,
			Breaks:          hours.Breaks,
		})
	}
}

// Slots

func listSlotsHandler(store slot.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serviceID, ok := parseUUIDParam(w, r, "serviceID")
		if !ok {
			return
		}
		date, ok := parseDateParam(w, r)
		if !ok {
			return
		}

		slots, err := store.ListForDate(r.Context(), serviceID, date)
		if err != nil {
			mapError(w, err)
			return
		}

		resp := make([]SlotResponse, 0, len(slots))
		for _, ds := range slots {
			resp = append(resp, toSlotResponse(ds))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func claimSlotHandler(store slot.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseUUIDParam(w, r, "id")
		if !ok {
			return
		}

		if err := store.Claim(r.Context(), id); err != nil {
			mapError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "claimed"})
	}
}

func releaseSlotHandler(store slot.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseUUIDParam(w, r, "id")
		if !ok {
			return
		}

		if err := store.Release(r.Context(), id); err != nil {
			mapError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "released"})
	}
}

func setSlotBlockHandler(store slot.Store, blocked bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseUUIDParam(w, r, "id")
		if !ok {
			return
		}

		if err := store.SetAdminBlock(r.Context(), id, blocked); err != nil {
			mapError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"blocked": blocked})
	}
}

// Reservations

type reservation struct {
	serviceID   uuid.UUID
	date        string
	startSlotID uuid.UUID
	minutes     int
}

func decodeReservation(w http.ResponseWriter, r *http.Request) (reservation, bool) {
	var req ReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return reservation{}, false
	}

	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_service_id", "service_id must be a valid UUID")
		return reservation{}, false
	}
	startSlotID, err := uuid.Parse(req.StartSlotID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_start_slot_id", "start_slot_id must be a valid UUID")
		return reservation{}, false
	}
	if _, err := schedule.WeekdayOf(req.Date); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
		return reservation{}, false
	}

	return reservation{
		serviceID:   serviceID,
		date:        req.Date,
		startSlotID: startSlotID,
		minutes:     req.DurationMinutes,
	}, true
}

func reserveHandler(coord *booking.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := decodeReservation(w, r)
		if !ok {
			return
		}

		if err := coord.Reserve(r.Context(), res.serviceID, res.date, res.startSlotID, res.minutes); err != nil {
			mapError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "reserved"})
	}
}

func releaseReservationHandler(coord *booking.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := decodeReservation(w, r)
		if !ok {
			return
		}

		if err := coord.Release(r.Context(), res.serviceID, res.date, res.startSlotID, res.minutes); err != nil {
			mapError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "released"})
	}
}

// Bookings

func createBookingHandler(coord *booking.Coordinator, sched schedule.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateBookingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		serviceID, err := uuid.Parse(req.ServiceID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_service_id", "service_id must be a valid UUID")
			return
		}
		startSlotID, err := uuid.Parse(req.StartSlotID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_start_slot_id", "start_slot_id must be a valid UUID")
			return
		}
		if _, err := schedule.WeekdayOf(req.Date); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		// a date blocked as a whole refuses bookings before any slot is touched
		bd, err := sched.GetBlockedDate(r.Context(), req.Date)
		if err != nil && !errors.Is(err, schedule.ErrBlockedDateNotFound) {
			mapError(w, err)
			return
		}
		if bd != nil {
			writeError(w, http.StatusConflict, "date_blocked", "date "+req.Date+" is not bookable: "+bd.Reason)
			return
		}

		created, err := coord.Book(r.Context(), booking.BookRequest{
			ServiceID:       serviceID,
			Date:            req.Date,
			StartSlotID:     startSlotID,
			DurationMinutes: req.DurationMinutes,
			FullName:        req.FullName,
			Phone:           req.Phone,
			Email:           req.Email,
		})
		if err != nil {
			mapError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toBookingResponse(created))
	}
}

func cancelBookingHandler(coord *booking.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseUUIDParam(w, r, "id")
		if !ok {
			return
		}

		cancelled, err := coord.Cancel(r.Context(), id)
		if err != nil {
			mapError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toBookingResponse(cancelled))
	}
}

func setBookingStatusHandler(coord *booking.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseUUIDParam(w, r, "id")
		if !ok {
			return
		}

		var req SetStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		updated, err := coord.SetStatus(r.Context(), id, booking.Status(req.Status))
		if err != nil {
			mapError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toBookingResponse(updated))
	}
}

func assignBookingHandler(repo booking.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseUUIDParam(w, r, "id")
		if !ok {
			return
		}

		var req AssignRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		staffID, err := uuid.Parse(req.StaffID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_staff_id", "staff_id must be a valid UUID")
			return
		}

		updated, err := repo.AssignHandler(r.Context(), id, staffID)
		if err != nil {
			mapError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toBookingResponse(updated))
	}
}

func listBookingsHandler(repo booking.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serviceID, ok := parseUUIDParam(w, r, "serviceID")
		if !ok {
			return
		}
		date, ok := parseDateParam(w, r)
		if !ok {
			return
		}

		bookings, err := repo.ListByDate(r.Context(), serviceID, date)
		if err != nil {
			mapError(w, err)
			return
		}

		resp := make([]BookingResponse, 0, len(bookings))
		for i := range bookings {
			resp = append(resp, toBookingResponse(&bookings[i]))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// Regeneration

func regenerateDateHandler(regen *slot.Regenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serviceID, ok := parseUUIDParam(w, r, "serviceID")
		if !ok {
			return
		}
		date, ok := parseDateParam(w, r)
		if !ok {
			return
		}

		result, err := regen.RegenerateDate(r.Context(), serviceID, date)
		if err != nil {
			mapError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func regenerateRangeHandler(regen *slot.Regenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serviceID, ok := parseUUIDParam(w, r, "serviceID")
		if !ok {
			return
		}
		from := r.URL.Query().Get("from")
		to := r.URL.Query().Get("to")

		result, err := regen.RegenerateRange(r.Context(), serviceID, from, to)
		if err != nil {
			// a partial failure still reports the per-date outcome
			if errors.Is(err, slot.ErrPartialRegeneration) {
				writeJSON(w, http.StatusOK, result)
				return
			}
			if result == nil {
				writeError(w, http.StatusBadRequest, "invalid_range", err.Error())
				return
			}
			mapError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// Stats

func statsHandler(agg *availability.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serviceID, ok := parseUUIDParam(w, r, "serviceID")
		if !ok {
			return
		}
		from := r.URL.Query().Get("from")
		to := r.URL.Query().Get("to")

		if _, err := schedule.DatesBetween(from, to); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_range", err.Error())
			return
		}

		stats, err := agg.Stats(r.Context(), serviceID, from, to)
		if err != nil {
			mapError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

// Admin schedule configuration

func putWeekdayHoursHandler(repo schedule.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		weekday, err := strconv.Atoi(chi.URLParam(r, "weekday"))
		if err != nil || weekday < 1 || weekday > 7 {
			writeError(w, http.StatusBadRequest, "invalid_weekday", "weekday must be 1 (Monday) through 7 (Sunday)")
			return
		}

		var req WeekdayHoursRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if req.SlotMinutes < 15 || req.SlotMinutes > 60 {
			writeError(w, http.StatusBadRequest, "invalid_slot_minutes", "slot_minutes must be between 15 and 60")
			return
		}

		err = repo.UpsertWeekdayConfig(r.Context(), schedule.WorkingHoursConfig{
			Weekday:         weekday,
			StartTime:       req.StartTime,
			EndTime:         req.EndTime,
			LastAppointment: req.LastAppointment,
			SlotMinutes:     req.SlotMinutes,
			Active:          req.Active,
		})
		if err != nil {
			mapError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"weekday": weekday})
	}
}

func listWeekdayHoursHandler(repo schedule.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		configs, err := repo.ListWeekdayConfigs(r.Context())
		if err != nil {
			mapError(w, err)
			return
		}

		resp := make([]WeekdayHoursResponse, 0, len(configs))
		for _, cfg := range configs {
			resp = append(resp, WeekdayHoursResponse{
				Weekday:         cfg.Weekday,
				StartTime:       cfg.StartTime,
				EndTime:         cfg.EndTime,
				LastAppointment: cfg.LastAppointment,
				SlotMinutes:     cfg.SlotMinutes,
				Active:          cfg.Active,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func putOverrideHandler(repo schedule.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, ok := parseDateParam(w, r)
		if !ok {
			return
		}

		var req DayOverrideRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		err := repo.PutDayOverride(r.Context(), schedule.DayOverride{
			Date:            date,
			StartTime:       req.StartTime,
			EndTime:         req.EndTime,
			LastAppointment: req.LastAppointment,
			SlotMinutes:     req.SlotMinutes,
			Breaks:          req.Breaks,
			Holiday:         req.Holiday,
			HolidayReason:   req.HolidayReason,
			HolidayReasonAr: req.HolidayReasonAr,
		})
		if err != nil {
			mapError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"date": date})
	}
}

func deleteOverrideHandler(repo schedule.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, ok := parseDateParam(w, r)
		if !ok {
			return
		}

		if err := repo.DeleteDayOverride(r.Context(), date); err != nil {
			mapError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func listBlockedDatesHandler(repo schedule.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from := r.URL.Query().Get("from")
		to := r.URL.Query().Get("to")
		if _, err := schedule.DatesBetween(from, to); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_range", err.Error())
			return
		}

		dates, err := repo.ListBlockedDates(r.Context(), from, to)
		if err != nil {
			mapError(w, err)
			return
		}

		resp := make([]BlockedDateResponse, 0, len(dates))
		for _, bd := range dates {
			resp = append(resp, BlockedDateResponse{
				Date:     bd.Date,
				Reason:   bd.Reason,
				ReasonAr: bd.ReasonAr,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func putBlockedDateHandler(repo schedule.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, ok := parseDateParam(w, r)
		if !ok {
			return
		}

		var req BlockedDateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		err := repo.PutBlockedDate(r.Context(), schedule.BlockedDate{
			Date:     date,
			Reason:   req.Reason,
			ReasonAr: req.ReasonAr,
		})
		if err != nil {
			mapError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"date": date})
	}
}

func deleteBlockedDateHandler(repo schedule.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, ok := parseDateParam(w, r)
		if !ok {
			return
		}

		if err := repo.DeleteBlockedDate(r.Context(), date); err != nil {
			mapError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
