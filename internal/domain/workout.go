package domain

import (
	"context"
	"errors"
	"time"
)

// ErrWorkoutNotFound is returned when a workout ID does not exist.
var ErrWorkoutNotFound = errors.New("workout not found")

// WorkoutType is one of strength, cardio or light.
type WorkoutType string

const (
	WorkoutStrength WorkoutType = "strength"
	WorkoutCardio   WorkoutType = "cardio"
	WorkoutLight    WorkoutType = "light"
)

func (t WorkoutType) IsValid() bool {
	switch t {
	case WorkoutStrength, WorkoutCardio, WorkoutLight:
		return true
	default:
		return false
	}
}

// Intensity of a cardio session.
type Intensity string

const (
	IntensityEasy   Intensity = "easy"
	IntensityMedium Intensity = "medium"
	IntensityHard   Intensity = "hard"
)

func (i Intensity) IsValid() bool {
	switch i {
	case IntensityEasy, IntensityMedium, IntensityHard:
		return true
	default:
		return false
	}
}

// SetEntry is one set of a strength exercise.
type SetEntry struct {
	Reps     int     `json:"reps,omitempty"`
	WeightKg float64 `json:"weightKg,omitempty"`
	RPE      float64 `json:"rpe,omitempty"`
	Note     string  `json:"note,omitempty"`
}

// Exercise is a named strength exercise with its sets.
type Exercise struct {
	Name string     `json:"name"`
	Sets []SetEntry `json:"sets"`
}

type StrengthDetails struct {
	Exercises []Exercise `json:"exercises"`
}

type CardioDetails struct {
	Minutes   int       `json:"minutes"`
	Intensity Intensity `json:"intensity,omitempty"`
}

type LightDetails struct {
	Minutes int    `json:"minutes,omitempty"`
	Label   string `json:"label,omitempty"`
}

// Workout is a single logged session. Exactly one of the detail blocks
// matching Type is expected to be set.
type Workout struct {
	ID        string           `json:"id"`
	Date      string           `json:"date"`
	Type      WorkoutType      `json:"type"`
	Title     string           `json:"title,omitempty"`
	Note      string           `json:"note,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	Strength  *StrengthDetails `json:"strength,omitempty"`
	Cardio    *CardioDetails   `json:"cardio,omitempty"`
	Light     *LightDetails    `json:"light,omitempty"`
}

// WorkoutRepository is the port for workout persistence.
type WorkoutRepository interface {
	CreateWorkout(ctx context.Context, w *Workout) error
	// UpdateWorkout returns ErrWorkoutNotFound when w.ID does not exist.
	UpdateWorkout(ctx context.Context, w *Workout) error
	// DeleteWorkout returns ErrWorkoutNotFound when id does not exist.
	DeleteWorkout(ctx context.Context, id string) error
	// GetWorkout returns nil, nil when id does not exist.
	GetWorkout(ctx context.Context, id string) (*Workout, error)
	// ListWorkoutsByDate returns the day's workouts, newest first.
	ListWorkoutsByDate(ctx context.Context, date string) ([]Workout, error)
	// ListWorkoutsInRange returns workouts with from <= date <= to, by date
	// ascending then newest first.
	ListWorkoutsInRange(ctx context.Context, from, to string) ([]Workout, error)
	CountWorkoutsOnDate(ctx context.Context, date string) (int, error)
}
