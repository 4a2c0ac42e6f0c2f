package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestActivityDurationMinutes(t *testing.T) {
	require.Equal(t, 45, Activity{DurationSeconds: 2700}.DurationMinutes())
	require.Equal(t, 30, Activity{DurationSeconds: 1790}.DurationMinutes())
	require.Equal(t, 0, Activity{}.DurationMinutes())
}

func TestSameCalendarDay(t *testing.T) {
	morning := time.Date(2024, 6, 3, 6, 30, 0, 0, time.UTC)
	evening := time.Date(2024, 6, 3, 22, 15, 0, 0, time.UTC)
	nextDay := time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)

	require.True(t, SameCalendarDay(morning, evening))
	require.False(t, SameCalendarDay(evening, nextDay))
}
