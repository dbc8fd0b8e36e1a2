package api

import (
	"github.com/google/uuid"

	"github.com/wakala-community/booking-desk/internal/schedule"
	"github.com/wakala-community/booking-desk/internal/slot"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type EffectiveHoursResponse struct {
	Date            string                 `json:"date"`
	Closed          bool                   `json:"closed"`
	Reason          string                 `json:"reason,omitempty"`
	ReasonAr        string                 `json:"reason_ar,omitempty"`
	StartTime       string                 `json:"start_time,omitempty"`
	EndTime         string                 `json:"end_time,omitempty"`
	LastAppointment string                 `json:"last_appointment,omitempty"`
	SlotMinutes     int                    `json:"slot_minutes,omitempty"`
	Breaks          []schedule.BreakWindow `json:"breaks,omitempty"`
}

type SlotResponse struct {
	ID               uuid.UUID `json:"id"`
	ServiceID        uuid.UUID `json:"service_id"`
	Date             string    `json:"date"`
	StartTime        string    `json:"start_time"`
	EndTime          string    `json:"end_time"`
	IsAvailable      bool      `json:"is_available"`
	IsBlockedByAdmin bool      `json:"is_blocked_by_admin"`
	Booked           bool      `json:"booked"`
}

func toSlotResponse(ds slot.DateSlot) SlotResponse {
	return SlotResponse{
		ID:               ds.ID,
		ServiceID:        ds.ServiceID,
		Date:             ds.Date,
		StartTime:        ds.StartTime,
		EndTime:          ds.EndTime,
		IsAvailable:      ds.IsAvailable,
		IsBlockedByAdmin: ds.IsBlockedByAdmin,
		Booked:           ds.Booked,
	}
}

type ReservationRequest struct {
	ServiceID       string `json:"service_id"`
	Date            string `json:"date"`
	StartSlotID     string `json:"start_slot_id"`
	DurationMinutes int    `json:"duration_minutes"`
}

type CreateBookingRequest struct {
	ServiceID       string `json:"service_id"`
	Date            string `json:"date"`
	StartSlotID     string `json:"start_slot_id"`
	DurationMinutes int    `json:"duration_minutes"`
	FullName        string `json:"full_name"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
}

type BookingResponse struct {
	ID              uuid.UUID  `json:"id"`
	ServiceID       uuid.UUID  `json:"service_id"`
	Date            string     `json:"date"`
	StartSlotID     uuid.UUID  `json:"start_slot_id"`
	SecondSlotID    *uuid.UUID `json:"second_slot_id,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
	FullName        string     `json:"full_name"`
	Phone           string     `json:"phone"`
	Email           string     `json:"email"`
	Status          string     `json:"status"`
	AssignedTo      *uuid.UUID `json:"assigned_to,omitempty"`
}

type SetStatusRequest struct {
	Status string `json:"status"`
}

type AssignRequest struct {
	StaffID string `json:"staff_id"`
}

type WeekdayHoursResponse struct {
	Weekday         int    `json:"weekday"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	LastAppointment string `json:"last_appointment"`
	SlotMinutes     int    `json:"slot_minutes"`
	Active          bool   `json:"active"`
}

type WeekdayHoursRequest struct {
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	LastAppointment string `json:"last_appointment"`
	SlotMinutes     int    `json:"slot_minutes"`
	Active          bool   `json:"active"`
}

type DayOverrideRequest struct {
	StartTime       string                 `json:"start_time"`
	EndTime         string                 `json:"end_time"`
	LastAppointment string                 `json:"last_appointment,omitempty"`
	SlotMinutes     int                    `json:"slot_minutes,omitempty"`
	Breaks          []schedule.BreakWindow `json:"breaks,omitempty"`
	Holiday         bool                   `json:"holiday"`
	HolidayReason   string                 `json:"holiday_reason,omitempty"`
	HolidayReasonAr string                 `json:"holiday_reason_ar,omitempty"`
}

type BlockedDateRequest struct {
	Reason   string `json:"reason"`
	ReasonAr string `json:"reason_ar,omitempty"`
}

type BlockedDateResponse struct {
	Date     string `json:"date"`
	Reason   string `json:"reason"`
	ReasonAr string `json:"reason_ar,omitempty"`
}
