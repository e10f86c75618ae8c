// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"fitlevel/internal/domain"
)

// DB implements an in-memory database storage.
type DB struct {
	mu          sync.Mutex
	workouts    map[string]domain.Workout
	dayStates   map[string]domain.DayState
	fixedRest   []time.Weekday
	users       []*domain.User
	sessions    map[string]*domain.Session
	userCounter int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		workouts:  make(map[string]domain.Workout),
		dayStates: make(map[string]domain.DayState),
		sessions:  make(map[string]*domain.Session),
	}
}

// Ensure interfaces are met.
var _ domain.WorkoutRepository = (*DB)(nil)
var _ domain.DayStateRepository = (*DB)(nil)
var _ domain.SettingsRepository = (*DB)(nil)
var _ domain.DataResetter = (*DB)(nil)
var _ domain.UserRepository = (*DB)(nil)
var _ domain.SessionRepository = (*DB)(nil)

// --- WorkoutRepository ---

func (db *DB) CreateWorkout(ctx context.Context, w *domain.Workout) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.workouts[w.ID]; ok {
		return errors.New("workout already exists")
	}
	db.workouts[w.ID] = cloneWorkout(*w)
	return nil
}

func (db *DB) UpdateWorkout(ctx context.Context, w *domain.Workout) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	old, ok := db.workouts[w.ID]
	if !ok {
		return domain.ErrWorkoutNotFound
	}
	updated := cloneWorkout(*w)
	updated.CreatedAt = old.CreatedAt
	db.workouts[w.ID] = updated
	return nil
}

func (db *DB) DeleteWorkout(ctx context.Context, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.workouts[id]; !ok {
		return domain.ErrWorkoutNotFound
	}
	delete(db.workouts, id)
	return nil
}

func (db *DB) GetWorkout(ctx context.Context, id string) (*domain.Workout, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	w, ok := db.workouts[id]
	if !ok {
		return nil, nil
	}
	out := cloneWorkout(w)
	return &out, nil
}

func (db *DB) ListWorkoutsByDate(ctx context.Context, date string) ([]domain.Workout, error) {
	return db.ListWorkoutsInRange(ctx, date, date)
}

func (db *DB) ListWorkoutsInRange(ctx context.Context, from, to string) ([]domain.Workout, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := []domain.Workout{}
	for _, w := range db.workouts {
		if w.Date >= from && w.Date <= to {
			result = append(result, cloneWorkout(w))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date < result[j].Date
		}
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (db *DB) CountWorkoutsOnDate(ctx context.Context, date string) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	n := 0
	for _, w := range db.workouts {
		if w.Date == date {
			n++
		}
	}
	return n, nil
}

// cloneWorkout copies the detail payloads so callers cannot mutate stored rows.
func cloneWorkout(w domain.Workout) domain.Workout {
	if w.Strength != nil {
		s := domain.StrengthDetails{Exercises: make([]domain.Exercise, len(w.Strength.Exercises))}
		for i, ex := range w.Strength.Exercises {
			s.Exercises[i] = domain.Exercise{Name: ex.Name, Sets: append([]domain.SetEntry(nil), ex.Sets...)}
		}
		w.Strength = &s
	}
	if w.Cardio != nil {
		c := *w.Cardio
		w.Cardio = &c
	}
	if w.Light != nil {
		l := *w.Light
		w.Light = &l
	}
	return w
}

// --- DayStateRepository ---

func (db *DB) GetDayState(ctx context.Context, date string) (*domain.DayState, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	s, ok := db.dayStates[date]
	if !ok {
		return nil, nil
	}
	out := cloneDayState(s)
	return &out, nil
}

func (db *DB) UpsertDayState(ctx context.Context, state domain.DayState) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.dayStates[state.Date] = cloneDayState(state)
	return nil
}

func (db *DB) ListDayStates(ctx context.Context, from, to string) ([]domain.DayState, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := []domain.DayState{}
	for d, s := range db.dayStates {
		if d >= from && d <= to {
			result = append(result, cloneDayState(s))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result, nil
}

func cloneDayState(s domain.DayState) domain.DayState {
	if s.Level != nil {
		s.Level = domain.LevelPtr(*s.Level)
	}
	return s
}

// --- SettingsRepository ---

func (db *DB) FixedRestWeekdays(ctx context.Context) ([]time.Weekday, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	return append([]time.Weekday{}, db.fixedRest...), nil
}

func (db *DB) SaveFixedRestWeekdays(ctx context.Context, days []time.Weekday) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.fixedRest = append([]time.Weekday{}, days...)
	return nil
}

// --- DataResetter ---

// ResetAll drops all workouts and day states. Settings and accounts survive.
func (db *DB) ResetAll(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.workouts = make(map[string]domain.Workout)
	db.dayStates = make(map[string]domain.DayState)
	return nil
}

// --- UserRepository ---

// GetUserByUsername retrieves a user by username.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

// GetUserByID retrieves a user by ID.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

// CreateUser creates a new user.
func (db *DB) CreateUser(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return nil, errors.New("user already exists")
		}
	}

	db.userCounter++
	u := &domain.User{
		ID:           db.userCounter,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	db.users = append(db.users, u)
	return u, nil
}

// CountUsers returns the total number of users.
func (db *DB) CountUsers(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users), nil
}

// --- SessionRepository ---

func (db *DB) CreateSession(ctx context.Context, s domain.Session) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	db.sessions[s.Token] = &s
	return nil
}

func (db *DB) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	s, ok := db.sessions[token]
	if !ok {
		return nil, nil
	}
	out := *s
	return &out, nil
}

func (db *DB) DeleteSession(ctx context.Context, token string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.sessions, token)
	return nil
}

func (db *DB) DeleteExpiredSessions(ctx context.Context, now time.Time) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	for k, v := range db.sessions {
		if now.After(v.ExpiresAt) {
			delete(db.sessions, k)
		}
	}
	return nil
}
