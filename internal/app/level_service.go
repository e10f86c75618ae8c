package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"fitlevel/internal/domain"
	"fitlevel/internal/metrics"

	log "github.com/sirupsen/logrus"
)

// LookbackDays bounds how far back a finalization pass searches for the
// last committed level.
const LookbackDays = 30

// ErrFutureDate is returned when an edit targets a date after today.
var ErrFutureDate = errors.New("date is in the future")

// FinalizeResult describes one finalization pass.
type FinalizeResult struct {
	// Anchor is the level the pass started from. It is 0 when no committed
	// level was found within LookbackDays.
	Anchor      domain.Level           `json:"anchor"`
	AnchorFound bool                   `json:"anchorFound"`
	Finalized   []domain.TimelineEntry `json:"finalized"`
}

// LevelService keeps committed day levels consistent with the workout and
// rest-day history. Passes are serialized.
type LevelService struct {
	mu       sync.Mutex
	days     domain.DayStateRepository
	workouts domain.WorkoutRepository
	settings domain.SettingsRepository
	metrics  *metrics.Manager
}

// NewLevelService creates a LevelService backed by the given repositories.
// m may be nil.
func NewLevelService(days domain.DayStateRepository, workouts domain.WorkoutRepository, settings domain.SettingsRepository, m *metrics.Manager) *LevelService {
	return &LevelService{
		days:     days,
		workouts: workouts,
		settings: settings,
		metrics:  m,
	}
}

// FinalizePreviousDays commits a level for every undetermined day before
// today, walking back at most LookbackDays to the last committed level.
// Today itself is left provisional.
func (s *LevelService) FinalizePreviousDays(ctx context.Context, today string) (*FinalizeResult, error) {
	if _, err := domain.ParseDay(today); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	res, err := s.finalize(ctx, today)
	if s.metrics != nil {
		s.metrics.HistFinalizeDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		s.failed("finalize", today, err)
		return nil, err
	}

	if len(res.Finalized) > 0 {
		log.WithFields(log.Fields{
			"today":        today,
			"anchor":       res.Anchor,
			"anchor_found": res.AnchorFound,
			"days":         len(res.Finalized),
		}).Info("finalized previous days")
	}
	return res, nil
}

func (s *LevelService) finalize(ctx context.Context, today string) (*FinalizeResult, error) {
	res := &FinalizeResult{Finalized: []domain.TimelineEntry{}}

	// newest first while scanning
	var gaps []domain.DayState
	for i := 1; i <= LookbackDays; i++ {
		date, err := domain.AddDays(today, -i)
		if err != nil {
			return nil, err
		}
		state, err := s.days.GetDayState(ctx, date)
		if err != nil {
			return nil, fmt.Errorf("get day state %s: %w", date, err)
		}
		if state.Finalized() {
			res.Anchor = *state.Level
			res.AnchorFound = true
			break
		}
		gap := domain.DayState{Date: date}
		if state != nil {
			gap.ManualRestDay = state.ManualRestDay
		}
		gaps = append(gaps, gap)
	}
	if len(gaps) == 0 {
		return res, nil
	}

	fixed, err := s.settings.FixedRestWeekdays(ctx)
	if err != nil {
		return nil, fmt.Errorf("load fixed rest days: %w", err)
	}

	current := res.Anchor
	for i := len(gaps) - 1; i >= 0; i-- {
		gap := gaps[i]
		count, err := s.workouts.CountWorkoutsOnDate(ctx, gap.Date)
		if err != nil {
			return nil, fmt.Errorf("count workouts %s: %w", gap.Date, err)
		}
		obs, _, err := domain.Observe(gap.Date, gap.ManualRestDay, fixed, count > 0)
		if err != nil {
			return nil, err
		}

		current = domain.NextLevel(current, obs)
		gap.RestDay = obs.IsRestDay
		gap.Level = domain.LevelPtr(current)
		if err := s.days.UpsertDayState(ctx, gap); err != nil {
			return nil, fmt.Errorf("save day state %s: %w", gap.Date, err)
		}
		res.Finalized = append(res.Finalized, domain.TimelineEntry{Date: gap.Date, Level: current})
		if s.metrics != nil {
			s.metrics.CounterDaysFinalized.Inc()
		}
	}
	s.setCurrentLevel(current)
	return res, nil
}

// RecomputeFrom rewrites the committed level of every observation on or
// after editedDate (and on or before endDate when it is set), starting from
// startLevel. Observations are processed in date order.
func (s *LevelService) RecomputeFrom(ctx context.Context, editedDate string, startLevel domain.Level, observations []domain.DayObservation, endDate string) ([]domain.TimelineEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tl, err := s.recompute(ctx, editedDate, startLevel, observations, endDate)
	if err != nil {
		s.failed("recompute", editedDate, err)
		return nil, err
	}
	return tl, nil
}

func (s *LevelService) recompute(ctx context.Context, editedDate string, startLevel domain.Level, observations []domain.DayObservation, endDate string) ([]domain.TimelineEntry, error) {
	filtered := make([]domain.DayObservation, 0, len(observations))
	for _, o := range observations {
		if o.Date < editedDate {
			continue
		}
		if endDate != "" && o.Date > endDate {
			continue
		}
		filtered = append(filtered, o)
	}
	sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Date < filtered[j].Date })

	timeline := domain.ComputeTimeline(startLevel, filtered)
	if len(timeline) == 0 {
		return timeline, nil
	}

	existing, err := s.days.ListDayStates(ctx, filtered[0].Date, filtered[len(filtered)-1].Date)
	if err != nil {
		return nil, fmt.Errorf("list day states: %w", err)
	}
	manual := make(map[string]bool, len(existing))
	for _, st := range existing {
		manual[st.Date] = st.ManualRestDay
	}

	for i, entry := range timeline {
		state := domain.DayState{
			Date:          entry.Date,
			ManualRestDay: manual[entry.Date],
			RestDay:       filtered[i].IsRestDay,
			Level:         domain.LevelPtr(entry.Level),
		}
		if err := s.days.UpsertDayState(ctx, state); err != nil {
			return nil, fmt.Errorf("save day state %s: %w", entry.Date, err)
		}
		if s.metrics != nil {
			s.metrics.CounterDaysRecomputed.Inc()
		}
	}

	last, _ := domain.LatestLevel(timeline)
	s.setCurrentLevel(last)
	log.WithFields(log.Fields{
		"from":  editedDate,
		"to":    timeline[len(timeline)-1].Date,
		"start": startLevel,
		"level": last,
	}).Debug("recomputed levels")
	return timeline, nil
}

// RecomputeAfterEdit brings the chain up to date after a change on
// editedDate. It finalizes missing days first, then rewrites every level
// from editedDate through today, starting from the level committed the day
// before the edit.
func (s *LevelService) RecomputeAfterEdit(ctx context.Context, editedDate, today string) ([]domain.TimelineEntry, error) {
	if _, err := domain.ParseDay(editedDate); err != nil {
		return nil, err
	}
	if _, err := domain.ParseDay(today); err != nil {
		return nil, err
	}
	if editedDate > today {
		return nil, fmt.Errorf("%w: %s", ErrFutureDate, editedDate)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tl, err := s.recomputeAfterEdit(ctx, editedDate, today)
	if err != nil {
		s.failed("recompute", editedDate, err)
		return nil, err
	}
	return tl, nil
}

func (s *LevelService) recomputeAfterEdit(ctx context.Context, editedDate, today string) ([]domain.TimelineEntry, error) {
	if _, err := s.finalize(ctx, today); err != nil {
		return nil, err
	}

	prev, err := domain.AddDays(editedDate, -1)
	if err != nil {
		return nil, err
	}
	prevState, err := s.days.GetDayState(ctx, prev)
	if err != nil {
		return nil, fmt.Errorf("get day state %s: %w", prev, err)
	}
	var start domain.Level
	if prevState.Finalized() {
		start = *prevState.Level
	}

	observations, err := s.observeRange(ctx, editedDate, today)
	if err != nil {
		return nil, err
	}
	return s.recompute(ctx, editedDate, start, observations, today)
}

// SetManualRest stores the manual rest flag of date and recomputes levels
// from it through today. Both happen under the pass lock so a concurrent
// finalization cannot write back a stale flag. A failed recompute is logged
// and the stored flag is still returned.
func (s *LevelService) SetManualRest(ctx context.Context, date string, isRest bool, today string) (*domain.DayState, error) {
	if _, err := domain.ParseDay(date); err != nil {
		return nil, err
	}
	if _, err := domain.ParseDay(today); err != nil {
		return nil, err
	}
	if date > today {
		return nil, fmt.Errorf("%w: %s", ErrFutureDate, date)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := writeManualRest(ctx, s.days, date, isRest)
	if err != nil {
		return nil, err
	}
	if _, err := s.recomputeAfterEdit(ctx, date, today); err != nil {
		s.failed("recompute", date, err)
		return state, nil
	}
	if fresh, err := s.days.GetDayState(ctx, date); err == nil && fresh != nil {
		state = fresh
	}
	return state, nil
}

// observeRange builds the level rule inputs for from..to from the stores.
func (s *LevelService) observeRange(ctx context.Context, from, to string) ([]domain.DayObservation, error) {
	dates, err := domain.DaysBetween(from, to)
	if err != nil {
		return nil, err
	}
	fixed, err := s.settings.FixedRestWeekdays(ctx)
	if err != nil {
		return nil, fmt.Errorf("load fixed rest days: %w", err)
	}
	states, err := s.days.ListDayStates(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list day states: %w", err)
	}
	manual := make(map[string]bool, len(states))
	for _, st := range states {
		manual[st.Date] = st.ManualRestDay
	}
	workouts, err := s.workouts.ListWorkoutsInRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	active := make(map[string]bool, len(workouts))
	for _, w := range workouts {
		active[w.Date] = true
	}

	out := make([]domain.DayObservation, 0, len(dates))
	for _, d := range dates {
		obs, _, err := domain.Observe(d, manual[d], fixed, active[d])
		if err != nil {
			return nil, err
		}
		out = append(out, obs)
	}
	return out, nil
}

func (s *LevelService) failed(op, date string, err error) {
	log.WithFields(log.Fields{"op": op, "date": date}).WithError(err).Error("level reconciliation aborted")
	if s.metrics != nil {
		s.metrics.CounterReconcileFailures.WithLabelValues(op).Inc()
	}
}

func (s *LevelService) setCurrentLevel(l domain.Level) {
	if s.metrics != nil {
		s.metrics.GaugeCurrentLevel.Set(float64(l))
	}
}
