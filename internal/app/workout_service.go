package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fitlevel/internal/domain"
	"fitlevel/internal/metrics"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ErrInvalidWorkout wraps every workout validation failure.
var ErrInvalidWorkout = errors.New("invalid workout")

// WorkoutService encapsulates workout logging use cases. Every change
// triggers a best-effort level recompute from the affected date.
type WorkoutService struct {
	repo    domain.WorkoutRepository
	levels  *LevelService
	metrics *metrics.Manager
	now     func() time.Time
}

// NewWorkoutService creates a WorkoutService backed by the given repository.
func NewWorkoutService(repo domain.WorkoutRepository, levels *LevelService, m *metrics.Manager) *WorkoutService {
	return &WorkoutService{
		repo:    repo,
		levels:  levels,
		metrics: m,
		now:     time.Now,
	}
}

// Create validates and stores a new workout, then recomputes levels from its date.
func (s *WorkoutService) Create(ctx context.Context, w domain.Workout, today string) (*domain.Workout, error) {
	if err := validateWorkout(&w, today); err != nil {
		return nil, err
	}
	w.ID = uuid.NewString()
	w.CreatedAt = s.now().UTC()

	if err := s.repo.CreateWorkout(ctx, &w); err != nil {
		return nil, fmt.Errorf("create workout: %w", err)
	}
	if s.metrics != nil {
		s.metrics.CounterWorkoutsLogged.WithLabelValues(string(w.Type)).Inc()
	}
	log.WithFields(log.Fields{"id": w.ID, "date": w.Date, "type": w.Type}).Info("workout logged")

	s.reconcile(ctx, w.Date, today)
	return &w, nil
}

// Update replaces an existing workout. Levels are recomputed from the
// earlier of its old and new dates.
func (s *WorkoutService) Update(ctx context.Context, w domain.Workout, today string) (*domain.Workout, error) {
	old, err := s.repo.GetWorkout(ctx, w.ID)
	if err != nil {
		return nil, fmt.Errorf("get workout: %w", err)
	}
	if old == nil {
		return nil, domain.ErrWorkoutNotFound
	}
	if err := validateWorkout(&w, today); err != nil {
		return nil, err
	}
	w.CreatedAt = old.CreatedAt

	if err := s.repo.UpdateWorkout(ctx, &w); err != nil {
		return nil, fmt.Errorf("update workout: %w", err)
	}

	from := w.Date
	if old.Date < from {
		from = old.Date
	}
	s.reconcile(ctx, from, today)
	return &w, nil
}

// Delete removes a workout and recomputes levels from its date.
func (s *WorkoutService) Delete(ctx context.Context, id, today string) error {
	old, err := s.repo.GetWorkout(ctx, id)
	if err != nil {
		return fmt.Errorf("get workout: %w", err)
	}
	if old == nil {
		return domain.ErrWorkoutNotFound
	}
	if err := s.repo.DeleteWorkout(ctx, id); err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}
	s.reconcile(ctx, old.Date, today)
	return nil
}

// Get returns the workout with the given ID or ErrWorkoutNotFound.
func (s *WorkoutService) Get(ctx context.Context, id string) (*domain.Workout, error) {
	w, err := s.repo.GetWorkout(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, domain.ErrWorkoutNotFound
	}
	return w, nil
}

// ListByDate returns the workouts logged on date, newest first.
func (s *WorkoutService) ListByDate(ctx context.Context, date string) ([]domain.Workout, error) {
	if _, err := domain.ParseDay(date); err != nil {
		return nil, err
	}
	return s.repo.ListWorkoutsByDate(ctx, date)
}

func (s *WorkoutService) reconcile(ctx context.Context, from, today string) {
	if s.levels == nil || from > today {
		return
	}
	// failure is already logged by the level service; the write stands
	_, _ = s.levels.RecomputeAfterEdit(ctx, from, today)
}

func validateWorkout(w *domain.Workout, today string) error {
	if _, err := domain.ParseDay(w.Date); err != nil {
		return err
	}
	if w.Date > today {
		return fmt.Errorf("%w: %s", ErrFutureDate, w.Date)
	}
	if !w.Type.IsValid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidWorkout, w.Type)
	}

	switch w.Type {
	case domain.WorkoutStrength:
		if w.Strength == nil || len(w.Strength.Exercises) == 0 {
			return fmt.Errorf("%w: strength workout needs at least one exercise", ErrInvalidWorkout)
		}
		for i, ex := range w.Strength.Exercises {
			if strings.TrimSpace(ex.Name) == "" {
				return fmt.Errorf("%w: exercise %d has no name", ErrInvalidWorkout, i+1)
			}
		}
		w.Cardio, w.Light = nil, nil
	case domain.WorkoutCardio:
		if w.Cardio == nil || w.Cardio.Minutes <= 0 {
			return fmt.Errorf("%w: cardio minutes must be positive", ErrInvalidWorkout)
		}
		if w.Cardio.Intensity != "" && !w.Cardio.Intensity.IsValid() {
			return fmt.Errorf("%w: unknown intensity %q", ErrInvalidWorkout, w.Cardio.Intensity)
		}
		w.Strength, w.Light = nil, nil
	case domain.WorkoutLight:
		if w.Light != nil && w.Light.Minutes < 0 {
			return fmt.Errorf("%w: light minutes must not be negative", ErrInvalidWorkout)
		}
		w.Strength, w.Cardio = nil, nil
	}

	w.Title = strings.TrimSpace(w.Title)
	if w.Title == "" {
		w.Title = w.Date
	}
	return nil
}
