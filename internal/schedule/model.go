package schedule

import "time"

// BreakWindow is a half-open [Start, End) pause inside a working day,
// both bounds as "HH:MM".
type BreakWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// WorkingHoursConfig is the default schedule for one ISO weekday (1=Monday
// through 7=Sunday). Rows are upserted by staff, never deleted.
type WorkingHoursConfig struct {
	Weekday         int
	StartTime       string // "09:00"
	EndTime         string // "16:30"
	LastAppointment string // latest bookable slot start, e.g. "16:00"
	SlotMinutes     int    // 15..60
	Active          bool
	UpdatedAt       time.Time
}

// DayOverride replaces the weekday default for exactly one calendar date.
// A holiday override closes the day and carries a bilingual reason.
type DayOverride struct {
	Date            string // "2026-09-10"
	StartTime       string
	EndTime         string
	LastAppointment string // optional, derived from the weekday config when empty
	SlotMinutes     int    // optional, derived from the weekday config when zero
	Breaks          []BreakWindow
	Holiday         bool
	HolidayReason   string
	HolidayReasonAr string
	UpdatedAt       time.Time
}

// BlockedDate marks an entire date unbookable for all services,
// independent of per-slot admin blocks.
type BlockedDate struct {
	Date      string
	Reason    string
	ReasonAr  string
	CreatedAt time.Time
}

// EffectiveHours is the window actually in force for a date after
// applying overrides on top of the weekday default.
type EffectiveHours struct {
	Date            string
	StartTime       string
	EndTime         string
	LastAppointment string
	SlotMinutes     int
	Breaks          []BreakWindow
}
