package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DayLayout is the canonical calendar date format used for every day key.
const DayLayout = "2006-01-02"

// ErrInvalidDate is returned for day strings that are not YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// ParseDay parses a YYYY-MM-DD day key as midnight UTC.
func ParseDay(day string) (time.Time, error) {
	t, err := time.Parse(DayLayout, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, day)
	}
	return t, nil
}

// FormatDay formats t as a day key without converting its location.
func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}

// LocalDay returns the day key of t in the local time zone.
func LocalDay(t time.Time) string {
	return t.In(time.Local).Format(DayLayout)
}

// AddDays shifts day by n calendar days.
func AddDays(day string, n int) (string, error) {
	t, err := ParseDay(day)
	if err != nil {
		return "", err
	}
	return FormatDay(t.AddDate(0, 0, n)), nil
}

// Weekday returns the weekday of day (Sunday = 0).
func Weekday(day string) (time.Weekday, error) {
	t, err := ParseDay(day)
	if err != nil {
		return 0, err
	}
	return t.Weekday(), nil
}

// DaysBetween lists every day from from to to inclusive, ascending. It is
// empty when from is after to.
func DaysBetween(from, to string) ([]string, error) {
	start, err := ParseDay(from)
	if err != nil {
		return nil, err
	}
	end, err := ParseDay(to)
	if err != nil {
		return nil, err
	}
	var out []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, FormatDay(d))
	}
	return out, nil
}

// DayState is the persisted per-date record.
type DayState struct {
	Date string `json:"date"`
	// ManualRestDay is the user's per-date override.
	ManualRestDay bool `json:"manualRestDay"`
	// RestDay is the effective rest flag used when Level was committed.
	RestDay bool `json:"restDay"`
	// Level is nil until the day is finalized.
	Level *Level `json:"level"`
}

// Finalized reports whether a level has been committed for the day.
func (s *DayState) Finalized() bool {
	return s != nil && s.Level != nil
}

// LevelPtr returns a pointer to a copy of l.
func LevelPtr(l Level) *Level {
	return &l
}

// DayStateRepository is the port for per-day state persistence.
type DayStateRepository interface {
	// GetDayState returns nil, nil when no record exists for date.
	GetDayState(ctx context.Context, date string) (*DayState, error)
	// UpsertDayState overwrites every field of the record keyed by state.Date.
	UpsertDayState(ctx context.Context, state DayState) error
	// ListDayStates returns records with from <= date <= to, ascending.
	ListDayStates(ctx context.Context, from, to string) ([]DayState, error)
}

// DataResetter wipes all tracked workouts and day states.
type DataResetter interface {
	ResetAll(ctx context.Context) error
}
