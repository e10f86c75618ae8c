package domain

import (
	"context"
	"time"
)

// SettingsRepository is the port for the recurring rest-day setting.
type SettingsRepository interface {
	// FixedRestWeekdays returns the weekly rest days (Sunday = 0). An unset
	// value is an empty slice.
	FixedRestWeekdays(ctx context.Context) ([]time.Weekday, error)
	SaveFixedRestWeekdays(ctx context.Context, days []time.Weekday) error
}
