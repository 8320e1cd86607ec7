package service

import (
	"time"

	"github.com/lapakkirim/backend/pkg/errors"
)

// Recurrence interval seconds for the fixed enum.
const (
	intervalOnce      = 5 // one-shot fast path, not a real recurrence
	intervalPerMinute = 60
	intervalHourly    = 3600
	intervalDaily     = 24 * 3600
	intervalWeekly    = 7 * 24 * 3600
	intervalMonthly   = 4 * 7 * 24 * 3600 // "4 weeks", not a calendar month
)

const minRecurringWindow = 5 * 24 * time.Hour

// RepeatIntervalSeconds maps a repeat_interval_type to its step in seconds.
func RepeatIntervalSeconds(repeatIntervalType string) (int64, error) {
	switch repeatIntervalType {
	case "ONCE":
		return intervalOnce, nil
	case "PERMINUTE":
		return intervalPerMinute, nil
	case "HOURLY":
		return intervalHourly, nil
	case "DAILY":
		return intervalDaily, nil
	case "WEEKLY":
		return intervalWeekly, nil
	case "MONTHLY":
		return intervalMonthly, nil
	default:
		return 0, errors.ErrInvalidInput.WithMessage("unrecognized repeat_interval_type: " + repeatIntervalType)
	}
}

// ScheduleWindow resolves the (run_at, remaining) pair for a new schedule.
// Non-recurring jobs get an auto-set now+5s/now+10s window; a
// remaining of nil means "no further recurrence". Recurring jobs require an
// explicit window of at least 5 days and a recognized interval type.
func ScheduleWindow(now time.Time, isRecurring bool, repeatIntervalType string, startAt, endAt *time.Time) (runAt time.Time, remaining *int64, intervalSeconds *int64, err error) {
	if !isRecurring {
		return now.Add(5 * time.Second), nil, nil, nil
	}

	if startAt == nil || endAt == nil {
		return time.Time{}, nil, nil, errors.ErrInvalidInput.WithMessage("recurring schedules require start_at and end_at")
	}
	if endAt.Sub(*startAt) < minRecurringWindow {
		return time.Time{}, nil, nil, errors.ErrInvalidInput.WithMessage("recurring schedules require a window of at least 5 days")
	}

	step, err := RepeatIntervalSeconds(repeatIntervalType)
	if err != nil {
		return time.Time{}, nil, nil, err
	}
	if step == intervalOnce {
		return time.Time{}, nil, nil, errors.ErrInvalidInput.WithMessage("ONCE is not a valid recurring interval")
	}

	count := int64(endAt.Sub(*startAt).Seconds()) / step
	if count < 1 {
		count = 1
	}
	return *startAt, &count, &step, nil
}
