package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakala-community/booking-desk/internal/availability"
	"github.com/wakala-community/booking-desk/internal/booking"
	"github.com/wakala-community/booking-desk/internal/schedule"
	"github.com/wakala-community/booking-desk/internal/slot"
)

// 2026-09-10 is a Thursday.
const testDate = "2026-09-10"

type fakeScheduleRepo struct {
	weekdays  map[int]schedule.WorkingHoursConfig
	overrides map[string]schedule.DayOverride
	blocked   map[string]schedule.BlockedDate
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{
		weekdays:  make(map[int]schedule.WorkingHoursConfig),
		overrides: make(map[string]schedule.DayOverride),
		blocked:   make(map[string]schedule.BlockedDate),
	}
}

func (f *fakeScheduleRepo) GetWeekdayConfig(_ context.Context, weekday int) (*schedule.WorkingHoursConfig, error) {
	cfg, ok := f.weekdays[weekday]
	if !ok {
		return nil, schedule.ErrWeekdayNotConfigured
	}
	return &cfg, nil
}

func (f *fakeScheduleRepo) ListWeekdayConfigs(_ context.Context) ([]schedule.WorkingHoursConfig, error) {
	var out []schedule.WorkingHoursConfig
	for _, cfg := range f.weekdays {
		out = append(out, cfg)
	}
	return out, nil
}

func (f *fakeScheduleRepo) UpsertWeekdayConfig(_ context.Context, cfg schedule.WorkingHoursConfig) error {
	f.weekdays[cfg.Weekday] = cfg
	return nil
}

func (f *fakeScheduleRepo) GetDayOverride(_ context.Context, date string) (*schedule.DayOverride, error) {
	ov, ok := f.overrides[date]
	if !ok {
		return nil, schedule.ErrOverrideNotFound
	}
	return &ov, nil
}

func (f *fakeScheduleRepo) PutDayOverride(_ context.Context, ov schedule.DayOverride) error {
	f.overrides[ov.Date] = ov
	return nil
}

func (f *fakeScheduleRepo) DeleteDayOverride(_ context.Context, date string) error {
	if _, ok := f.overrides[date]; !ok {
		return schedule.ErrOverrideNotFound
	}
	delete(f.overrides, date)
	return nil
}

func (f *fakeScheduleRepo) GetBlockedDate(_ context.Context, date string) (*schedule.BlockedDate, error) {
	bd, ok := f.blocked[date]
	if !ok {
		return nil, schedule.ErrBlockedDateNotFound
	}
	return &bd, nil
}

func (f *fakeScheduleRepo) ListBlockedDates(_ context.Context, from, to string) ([]schedule.BlockedDate, error) {
	var out []schedule.BlockedDate
	for date, bd := range f.blocked {
		if date >= from && date <= to {
			out = append(out, bd)
		}
	}
	return out, nil
}

func (f *fakeScheduleRepo) PutBlockedDate(_ context.Context, bd schedule.BlockedDate) error {
	f.blocked[bd.Date] = bd
	return nil
}

func (f *fakeScheduleRepo) DeleteBlockedDate(_ context.Context, date string) error {
	if _, ok := f.blocked[date]; !ok {
		return schedule.ErrBlockedDateNotFound
	}
	delete(f.blocked, date)
	return nil
}

type fakeBookingRepo struct {
	services map[uuid.UUID]booking.Service
	bookings map[uuid.UUID]*booking.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		services: make(map[uuid.UUID]booking.Service),
		bookings: make(map[uuid.UUID]*booking.Booking),
	}
}

func (f *fakeBookingRepo) GetServiceByID(_ context.Context, id uuid.UUID) (*booking.Service, error) {
	s, ok := f.services[id]
	if !ok {
		return nil, booking.ErrServiceNotFound
	}
	return &s, nil
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookingRepo) Create(_ context.Context, b booking.Booking) (*booking.Booking, error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.Status = booking.StatusSubmitted
	f.bookings[b.ID] = &b
	cp := b
	return &cp, nil
}

func (f *fakeBookingRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to booking.Status) (*booking.Booking, error) {
	b, ok := f.bookings[id]
	if !ok || b.Status != from {
		return nil, booking.ErrBookingNotFound
	}
	b.Status = to
	cp := *b
	return &cp, nil
}

func (f *fakeBookingRepo) AssignHandler(_ context.Context, id, staffID uuid.UUID) (*booking.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	b.AssignedTo = &staffID
	cp := *b
	return &cp, nil
}

func (f *fakeBookingRepo) ListByDate(_ context.Context, serviceID uuid.UUID, date string) ([]booking.Booking, error) {
	var out []booking.Booking
	for _, b := range f.bookings {
		if b.ServiceID == serviceID && b.Date == date {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) InsertEvent(_ context.Context, _ booking.EventLog) error {
	return nil
}

type testEnv struct {
	router    http.Handler
	store     *slot.MemoryStore
	sched     *fakeScheduleRepo
	serviceID uuid.UUID
	slots     []slot.Slot
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	sched := newFakeScheduleRepo()
	sched.weekdays[4] = schedule.WorkingHoursConfig{
		Weekday:         4,
		StartTime:       "09:00",
		EndTime:         "11:00",
		LastAppointment: "10:30",
		SlotMinutes:     30,
		Active:          true,
	}

	store := slot.NewMemoryStore()
	serviceID := uuid.New()

	resolver := schedule.NewResolver(sched)
	regen := slot.NewRegenerator(store, resolver, nil, nil)
	result, err := regen.RegenerateDate(context.Background(), serviceID, testDate)
	require.NoError(t, err)
	require.Equal(t, 4, result.Created)

	slots, err := store.ListForDate(context.Background(), serviceID, testDate)
	require.NoError(t, err)

	bookingRepo := newFakeBookingRepo()
	bookingRepo.services[serviceID] = booking.Service{ID: serviceID, Name: "Document Attestation", Active: true}
	coordinator := booking.NewCoordinator(store, bookingRepo, nil)

	router := NewRouter(RouterConfig{
		ScheduleRepo: sched,
		Resolver:     resolver,
		SlotStore:    store,
		Regenerator:  regen,
		Coordinator:  coordinator,
		BookingRepo:  bookingRepo,
		Aggregator:   availability.NewAggregator(store, sched),
		Env:          "test",
		Version:      "test",
	})

	plain := make([]slot.Slot, len(slots))
	for i := range slots {
		plain[i] = slots[i].Slot
	}

	return &testEnv{
		router:    router,
		store:     store,
		sched:     sched,
		serviceID: serviceID,
		slots:     plain,
	}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestHoursEndpoint(t *testing.T) {
	env := newTestEnv(t)

	t.Run("open day", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/hours/"+testDate, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp EffectiveHoursResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.Closed)
		assert.Equal(t, "09:00", resp.StartTime)
		assert.Equal(t, "11:00", resp.EndTime)
	})

	t.Run("holiday reports closed with reason", func(t *testing.T) {
		env.sched.overrides[testDate] = schedule.DayOverride{
			Date:          testDate,
			Holiday:       true,
			HolidayReason: "National Day",
		}
		defer delete(env.sched.overrides, testDate)

		rec := env.do(t, http.MethodGet, "/hours/"+testDate, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp EffectiveHoursResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Closed)
		assert.Equal(t, "National Day", resp.Reason)
	})

	t.Run("malformed date", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/hours/10-09-2026", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSlotEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/services/"+env.serviceID.String()+"/slots/"+testDate, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []SlotResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 4)

	claimPath := "/slots/" + listed[0].ID.String() + "/claim"
	rec = env.do(t, http.MethodPost, claimPath, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// second claim loses the race
	rec = env.do(t, http.MethodPost, claimPath, "")
	require.Equal(t, http.StatusConflict, rec.Code)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "already_claimed", errResp.Error)

	rec = env.do(t, http.MethodPost, "/slots/"+listed[0].ID.String()+"/release", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/slots/not-a-uuid/claim", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBookingEndpoint(t *testing.T) {
	env := newTestEnv(t)

	body := func(slotID uuid.UUID, minutes int) string {
		b, _ := json.Marshal(CreateBookingRequest{
			ServiceID:       env.serviceID.String(),
			Date:            testDate,
			StartSlotID:     slotID.String(),
			DurationMinutes: minutes,
			FullName:        "Huda Saleh",
			Phone:           "+971501234567",
		})
		return string(b)
	}

	t.Run("sixty minute booking", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/bookings", body(env.slots[0].ID, 60))
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp BookingResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "submitted", resp.Status)
		require.NotNil(t, resp.SecondSlotID)

		// both halves of the hour are gone
		rec = env.do(t, http.MethodPost, "/bookings", body(env.slots[1].ID, 30))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unsupported duration", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/bookings", body(env.slots[2].ID, 45))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("blocked date", func(t *testing.T) {
		env.sched.blocked[testDate] = schedule.BlockedDate{Date: testDate, Reason: "Staff training day"}
		defer delete(env.sched.blocked, testDate)

		rec := env.do(t, http.MethodPost, "/bookings", body(env.slots[2].ID, 30))
		require.Equal(t, http.StatusConflict, rec.Code)

		var errResp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
		assert.Equal(t, "date_blocked", errResp.Error)
	})
}

func TestCancelBookingEndpoint(t *testing.T) {
	env := newTestEnv(t)

	reqBody, _ := json.Marshal(CreateBookingRequest{
		ServiceID:       env.serviceID.String(),
		Date:            testDate,
		StartSlotID:     env.slots[0].ID.String(),
		DurationMinutes: 30,
		FullName:        "Huda Saleh",
		Phone:           "+971501234567",
	})
	rec := env.do(t, http.MethodPost, "/bookings", string(reqBody))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = env.do(t, http.MethodPost, "/bookings/"+created.ID.String()+"/cancel", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var cancelled BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cancelled))
	assert.Equal(t, "cancelled", cancelled.Status)

	// the slot is bookable again
	s, err := env.store.GetByID(context.Background(), env.slots[0].ID)
	require.NoError(t, err)
	assert.True(t, s.IsAvailable)
}

func TestRegenerateEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/admin/services/"+env.serviceID.String()+"/regenerate/"+testDate, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result slot.RegenResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 4, result.Preserved)
}

func TestReservationEndpoints(t *testing.T) {
	env := newTestEnv(t)

	body, _ := json.Marshal(ReservationRequest{
		ServiceID:       env.serviceID.String(),
		Date:            testDate,
		StartSlotID:     env.slots[0].ID.String(),
		DurationMinutes: 60,
	})

	rec := env.do(t, http.MethodPost, "/reservations", string(body))
	require.Equal(t, http.StatusOK, rec.Code)

	for _, id := range []uuid.UUID{env.slots[0].ID, env.slots[1].ID} {
		s, err := env.store.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.False(t, s.IsAvailable)
	}

	// a second reservation of the same hour loses
	rec = env.do(t, http.MethodPost, "/reservations", string(body))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/reservations/release", string(body))
	require.Equal(t, http.StatusOK, rec.Code)

	for _, id := range []uuid.UUID{env.slots[0].ID, env.slots[1].ID} {
		s, err := env.store.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.True(t, s.IsAvailable)
	}

	// releasing again is still a 200
	rec = env.do(t, http.MethodPost, "/reservations/release", string(body))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListBlockedDatesEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.sched.blocked["2026-09-11"] = schedule.BlockedDate{
		Date:   "2026-09-11",
		Reason: "Staff training day",
	}

	rec := env.do(t, http.MethodGet, "/admin/blocked-dates?from=2026-09-10&to=2026-09-12", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []BlockedDateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "2026-09-11", listed[0].Date)
	assert.Equal(t, "Staff training day", listed[0].Reason)

	rec = env.do(t, http.MethodGet, "/admin/blocked-dates?from=2026-09-12&to=2026-09-10", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet,
		"/services/"+env.serviceID.String()+"/stats?from="+testDate+"&to="+testDate, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats []availability.Stat
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Len(t, stats, 1)
	assert.Equal(t, 4, stats[0].TotalSlots)
	assert.Equal(t, 4, stats[0].AvailableSlots)
}

func TestStatsEndpointRejectsBadRange(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet,
		"/services/"+env.serviceID.String()+"/stats?from=2026-09-12&to="+testDate, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "invalid_range", errResp.Error)
}

type failingSlotReader struct{}

func (failingSlotReader) ListForDate(context.Context, uuid.UUID, string) ([]slot.DateSlot, error) {
	return nil, errors.New("connection refused")
}

func TestStatsEndpointStorageFailureIsInternal(t *testing.T) {
	agg := availability.NewAggregator(failingSlotReader{}, newFakeScheduleRepo())
	h := statsHandler(agg)

	req := httptest.NewRequest(http.MethodGet, "/stats?from="+testDate+"&to="+testDate, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("serviceID", uuid.New().String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()
	h(rec, req)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "internal_error", errResp.Error)
}
