package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepeatIntervalSeconds(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int64
		wantErr  bool
	}{
		{"once", "ONCE", 5, false},
		{"per minute", "PERMINUTE", 60, false},
		{"hourly", "HOURLY", 3600, false},
		{"daily", "DAILY", 86400, false},
		{"weekly", "WEEKLY", 604800, false},
		{"monthly", "MONTHLY", 2419200, false},
		{"unrecognized", "FORTNIGHTLY", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RepeatIntervalSeconds(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestScheduleWindow_NonRecurring(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	runAt, remaining, interval, err := ScheduleWindow(now, false, "", nil, nil)
	require.NoError(t, err)
	assert.Nil(t, remaining)
	assert.Nil(t, interval)
	assert.True(t, runAt.After(now))
	assert.True(t, runAt.Before(now.Add(10*time.Second)))
}

func TestScheduleWindow_RecurringRequiresWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	start := now
	end := now.Add(2 * 24 * time.Hour) // under the 5-day minimum

	_, _, _, err := ScheduleWindow(now, true, "DAILY", &start, &end)
	require.Error(t, err)
}

func TestScheduleWindow_RecurringRequiresStartAndEnd(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	_, _, _, err := ScheduleWindow(now, true, "DAILY", nil, nil)
	require.Error(t, err)
}

func TestScheduleWindow_OnceIsNotRecurring(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	start := now
	end := now.Add(10 * 24 * time.Hour)

	_, _, _, err := ScheduleWindow(now, true, "ONCE", &start, &end)
	require.Error(t, err)
}

func TestScheduleWindow_RecurringComputesRemaining(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	start := now
	end := now.Add(10 * 24 * time.Hour) // 10 days, daily interval -> 10 occurrences

	runAt, remaining, interval, err := ScheduleWindow(now, true, "DAILY", &start, &end)
	require.NoError(t, err)
	require.NotNil(t, remaining)
	require.NotNil(t, interval)
	assert.Equal(t, start, runAt)
	assert.Equal(t, int64(86400), *interval)
	assert.Equal(t, int64(10), *remaining)
}

func TestScheduleWindow_RecurringAtLeastOneOccurrence(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	start := now
	end := now.Add(5 * 24 * time.Hour) // exactly the minimum window, weekly interval never fires within it

	_, remaining, _, err := ScheduleWindow(now, true, "WEEKLY", &start, &end)
	require.NoError(t, err)
	require.NotNil(t, remaining)
	assert.Equal(t, int64(1), *remaining)
}
