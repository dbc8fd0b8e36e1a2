package schedule

import (
	"context"
	"errors"
)

var (
	ErrWeekdayNotConfigured = errors.New("weekday has no working hours config")
	ErrOverrideNotFound     = errors.New("day override not found")
	ErrBlockedDateNotFound  = errors.New("blocked date not found")
)

// Repository contains all DB interactions for schedule configuration.
type Repository interface {
	GetWeekdayConfig(ctx context.Context, weekday int) (*WorkingHoursConfig, error)
	ListWeekdayConfigs(ctx context.Context) ([]WorkingHoursConfig, error)
	UpsertWeekdayConfig(ctx context.Context, cfg WorkingHoursConfig) error

	GetDayOverride(ctx context.Context, date string) (*DayOverride, error)
	PutDayOverride(ctx context.Context, ov DayOverride) error
	DeleteDayOverride(ctx context.Context, date string) error

	GetBlockedDate(ctx context.Context, date string) (*BlockedDate, error)
	ListBlockedDates(ctx context.Context, from, to string) ([]BlockedDate, error)
	PutBlockedDate(ctx context.Context, bd BlockedDate) error
	DeleteBlockedDate(ctx context.Context, date string) error
}
