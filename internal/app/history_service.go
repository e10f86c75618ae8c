package app

import (
	"context"
	"fmt"
	"time"

	"fitlevel/internal/domain"

	log "github.com/sirupsen/logrus"
)

// CalendarCells is the size of a month grid: six weeks starting on Sunday.
const CalendarCells = 42

// TodayView is the state shown on the home screen.
// Provisional is true while today's level is not committed yet.
type TodayView struct {
	Date          string               `json:"date"`
	Level         domain.Level         `json:"level"`
	Provisional   bool                 `json:"provisional"`
	Status        domain.DisplayStatus `json:"status"`
	ManualRestDay bool                 `json:"manualRestDay"`
	Workouts      []domain.Workout     `json:"workouts"`
}

// CalendarCell is one day of a month grid. Status is empty for days after
// today.
type CalendarCell struct {
	Date         string               `json:"date"`
	InMonth      bool                 `json:"inMonth"`
	Level        *domain.Level        `json:"level"`
	Status       domain.DisplayStatus `json:"status,omitempty"`
	WorkoutCount int                  `json:"workoutCount"`
}

// MonthView is a calendar page.
type MonthView struct {
	Year  int            `json:"year"`
	Month time.Month     `json:"month"`
	Cells []CalendarCell `json:"cells"`
}

// HistoryService serves the today, calendar and timeline views.
type HistoryService struct {
	days     domain.DayStateRepository
	workouts domain.WorkoutRepository
	settings domain.SettingsRepository
	levels   *LevelService
}

// NewHistoryService creates a HistoryService backed by the given repositories.
// levels may be nil, in which case views never finalize missed days.
func NewHistoryService(days domain.DayStateRepository, workouts domain.WorkoutRepository, settings domain.SettingsRepository, levels *LevelService) *HistoryService {
	return &HistoryService{days: days, workouts: workouts, settings: settings, levels: levels}
}

// Today finalizes missed days (best-effort) and reports the level for today.
// Until today is committed the level is the most recent committed one.
func (s *HistoryService) Today(ctx context.Context, today string) (*TodayView, error) {
	if _, err := domain.ParseDay(today); err != nil {
		return nil, err
	}
	if s.levels != nil {
		_, _ = s.levels.FinalizePreviousDays(ctx, today)
	}

	from, err := domain.AddDays(today, -LookbackDays)
	if err != nil {
		return nil, err
	}
	states, err := s.days.ListDayStates(ctx, from, today)
	if err != nil {
		return nil, fmt.Errorf("list day states: %w", err)
	}
	workouts, err := s.workouts.ListWorkoutsByDate(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	fixed, err := s.settings.FixedRestWeekdays(ctx)
	if err != nil {
		return nil, fmt.Errorf("load fixed rest days: %w", err)
	}

	view := &TodayView{Date: today, Provisional: true, Workouts: workouts}
	for i := len(states) - 1; i >= 0; i-- {
		st := states[i]
		if st.Date == today {
			view.ManualRestDay = st.ManualRestDay
		}
		if st.Finalized() {
			view.Level = *st.Level
			view.Provisional = st.Date != today
			break
		}
	}

	_, status, err := domain.Observe(today, view.ManualRestDay, fixed, len(workouts) > 0)
	if err != nil {
		return nil, err
	}
	view.Status = status.Display
	return view, nil
}

// Month returns the calendar grid for the given month. The grid starts on
// the Sunday on or before the 1st and always has CalendarCells cells.
func (s *HistoryService) Month(ctx context.Context, year int, month time.Month, today string) (*MonthView, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("month out of range: %d", month)
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	end := start.AddDate(0, 0, CalendarCells-1)
	from, to := domain.FormatDay(start), domain.FormatDay(end)

	states, err := s.days.ListDayStates(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list day states: %w", err)
	}
	byDate := make(map[string]domain.DayState, len(states))
	for _, st := range states {
		byDate[st.Date] = st
	}
	workouts, err := s.workouts.ListWorkoutsInRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	counts := make(map[string]int)
	for _, w := range workouts {
		counts[w.Date]++
	}
	fixed, err := s.settings.FixedRestWeekdays(ctx)
	if err != nil {
		return nil, fmt.Errorf("load fixed rest days: %w", err)
	}

	view := &MonthView{Year: year, Month: month, Cells: make([]CalendarCell, 0, CalendarCells)}
	for i := 0; i < CalendarCells; i++ {
		d := start.AddDate(0, 0, i)
		date := domain.FormatDay(d)
		st := byDate[date]
		cell := CalendarCell{
			Date:         date,
			InMonth:      d.Month() == month,
			Level:        st.Level,
			WorkoutCount: counts[date],
		}
		if date <= today {
			_, status, err := domain.Observe(date, st.ManualRestDay, fixed, cell.WorkoutCount > 0)
			if err != nil {
				return nil, err
			}
			cell.Status = status.Display
		}
		view.Cells = append(view.Cells, cell)
	}
	return view, nil
}

// Timeline returns the committed levels between from and to inclusive.
func (s *HistoryService) Timeline(ctx context.Context, from, to string) ([]domain.TimelineEntry, error) {
	if _, err := domain.ParseDay(from); err != nil {
		return nil, err
	}
	if _, err := domain.ParseDay(to); err != nil {
		return nil, err
	}
	states, err := s.days.ListDayStates(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list day states: %w", err)
	}
	out := make([]domain.TimelineEntry, 0, len(states))
	for _, st := range states {
		if st.Finalized() {
			out = append(out, domain.TimelineEntry{Date: st.Date, Level: *st.Level})
		}
	}
	log.WithFields(log.Fields{"from": from, "to": to, "entries": len(out)}).Debug("timeline loaded")
	return out, nil
}
