package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"fitlevel/internal/domain"

	log "github.com/sirupsen/logrus"
)

// ErrInvalidWeekday is returned for fixed rest days outside 0..6.
var ErrInvalidWeekday = errors.New("weekday must be between 0 (Sunday) and 6 (Saturday)")

// SettingsService manages manual rest days and the weekly rest pattern.
type SettingsService struct {
	days     domain.DayStateRepository
	settings domain.SettingsRepository
	levels   *LevelService
}

// NewSettingsService creates a SettingsService backed by the given repositories.
// With a nil levels service rest toggles are stored without recomputing.
func NewSettingsService(days domain.DayStateRepository, settings domain.SettingsRepository, levels *LevelService) *SettingsService {
	return &SettingsService{days: days, settings: settings, levels: levels}
}

// SetRestDay sets the manual rest flag of date and recomputes levels from it.
// A committed level is kept until the recompute rewrites it.
func (s *SettingsService) SetRestDay(ctx context.Context, date string, isRest bool, today string) (*domain.DayState, error) {
	if _, err := domain.ParseDay(date); err != nil {
		return nil, err
	}
	if date > today {
		return nil, fmt.Errorf("%w: %s", ErrFutureDate, date)
	}

	if s.levels != nil {
		return s.levels.SetManualRest(ctx, date, isRest, today)
	}
	return writeManualRest(ctx, s.days, date, isRest)
}

// writeManualRest stores the manual rest flag of date, keeping every other
// field of its day state.
func writeManualRest(ctx context.Context, days domain.DayStateRepository, date string, isRest bool) (*domain.DayState, error) {
	state, err := days.GetDayState(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("get day state %s: %w", date, err)
	}
	if state == nil {
		state = &domain.DayState{Date: date}
	}
	state.ManualRestDay = isRest
	if err := days.UpsertDayState(ctx, *state); err != nil {
		return nil, fmt.Errorf("save day state %s: %w", date, err)
	}
	log.WithFields(log.Fields{"date": date, "rest": isRest}).Info("rest day toggled")
	return state, nil
}

// FixedRestDays returns the weekly rest days, sorted.
func (s *SettingsService) FixedRestDays(ctx context.Context) ([]time.Weekday, error) {
	return s.settings.FixedRestWeekdays(ctx)
}

// SetFixedRestDays replaces the weekly rest pattern. Values are
// de-duplicated and sorted. Already committed levels are not rewritten.
func (s *SettingsService) SetFixedRestDays(ctx context.Context, days []int) ([]time.Weekday, error) {
	seen := make(map[time.Weekday]bool, len(days))
	out := make([]time.Weekday, 0, len(days))
	for _, d := range days {
		if d < int(time.Sunday) || d > int(time.Saturday) {
			return nil, fmt.Errorf("%w: %d", ErrInvalidWeekday, d)
		}
		wd := time.Weekday(d)
		if seen[wd] {
			continue
		}
		seen[wd] = true
		out = append(out, wd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	if err := s.settings.SaveFixedRestWeekdays(ctx, out); err != nil {
		return nil, fmt.Errorf("save fixed rest days: %w", err)
	}
	log.WithField("days", out).Info("fixed rest days updated")
	return out, nil
}
