package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinuteOfDayRoundTrip(t *testing.T) {
	for _, s := range []string{"00:00", "08:30", "14:00", "23:59"} {
		m, err := MinuteOfDay(s)
		require.NoError(t, err)
		assert.Equal(t, s, FormatMinute(m))
	}

	_, err := MinuteOfDay("8:30am")
	assert.Error(t, err)
}

func TestWeekdayOf(t *testing.T) {
	tests := []struct {
		date string
		want int
	}{
		{"2026-09-07", 1}, // Monday
		{"2026-09-10", 4}, // Thursday
		{"2026-09-13", 7}, // Sunday
	}
	for _, tt := range tests {
		got, err := WeekdayOf(tt.date)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.date)
	}

	_, err := WeekdayOf("2026-13-01")
	assert.Error(t, err)
}

func TestDatesBetween(t *testing.T) {
	dates, err := DatesBetween("2026-09-10", "2026-09-12")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-09-10", "2026-09-11", "2026-09-12"}, dates)

	single, err := DatesBetween("2026-09-10", "2026-09-10")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-09-10"}, single)

	_, err = DatesBetween("2026-09-12", "2026-09-10")
	assert.Error(t, err)
}
