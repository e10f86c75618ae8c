package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"fitlevel/internal/domain"
)

const workoutColumns = `id, date, type, title, note, created_at, strength_data, cardio_data, light_data`

func (d *DB) CreateWorkout(ctx context.Context, w *domain.Workout) error {
	strength, cardio, light, err := encodeDetails(w)
	if err != nil {
		return err
	}
	_, err = d.sql.ExecContext(ctx,
		`INSERT INTO workouts (`+workoutColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.Date, string(w.Type), w.Title, w.Note, w.CreatedAt.UTC(), strength, cardio, light,
	)
	return err
}

func (d *DB) UpdateWorkout(ctx context.Context, w *domain.Workout) error {
	strength, cardio, light, err := encodeDetails(w)
	if err != nil {
		return err
	}
	res, err := d.sql.ExecContext(ctx,
		`UPDATE workouts SET date = ?, type = ?, title = ?, note = ?, strength_data = ?, cardio_data = ?, light_data = ? WHERE id = ?`,
		w.Date, string(w.Type), w.Title, w.Note, strength, cardio, light, w.ID,
	)
	if err != nil {
		return err
	}
	return affectedOne(res)
}

func (d *DB) DeleteWorkout(ctx context.Context, id string) error {
	res, err := d.sql.ExecContext(ctx, `DELETE FROM workouts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectedOne(res)
}

func (d *DB) GetWorkout(ctx context.Context, id string) (*domain.Workout, error) {
	row := d.sql.QueryRowContext(ctx, `SELECT `+workoutColumns+` FROM workouts WHERE id = ?`, id)
	w, err := scanWorkout(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (d *DB) ListWorkoutsByDate(ctx context.Context, date string) ([]domain.Workout, error) {
	return d.ListWorkoutsInRange(ctx, date, date)
}

func (d *DB) ListWorkoutsInRange(ctx context.Context, from, to string) ([]domain.Workout, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT `+workoutColumns+` FROM workouts WHERE date >= ? AND date <= ? ORDER BY date ASC, created_at DESC, id ASC`,
		from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Workout{}
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

func (d *DB) CountWorkoutsOnDate(ctx context.Context, date string) (int, error) {
	var n int
	err := d.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM workouts WHERE date = ?`, date).Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanWorkout(s scanner) (*domain.Workout, error) {
	var (
		w                       domain.Workout
		typ                     string
		strength, cardio, light sql.NullString
	)
	if err := s.Scan(&w.ID, &w.Date, &typ, &w.Title, &w.Note, &w.CreatedAt, &strength, &cardio, &light); err != nil {
		return nil, err
	}
	w.Type = domain.WorkoutType(typ)
	if err := decodeDetail(strength, &w.Strength); err != nil {
		return nil, fmt.Errorf("workout %s strength: %w", w.ID, err)
	}
	if err := decodeDetail(cardio, &w.Cardio); err != nil {
		return nil, fmt.Errorf("workout %s cardio: %w", w.ID, err)
	}
	if err := decodeDetail(light, &w.Light); err != nil {
		return nil, fmt.Errorf("workout %s light: %w", w.ID, err)
	}
	return &w, nil
}

func encodeDetails(w *domain.Workout) (strength, cardio, light sql.NullString, err error) {
	if strength, err = encodeDetail(w.Strength); err != nil {
		return
	}
	if cardio, err = encodeDetail(w.Cardio); err != nil {
		return
	}
	light, err = encodeDetail(w.Light)
	return
}

func encodeDetail[T any](v *T) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeDetail[T any](s sql.NullString, dst **T) error {
	if !s.Valid || s.String == "" {
		return nil
	}
	v := new(T)
	if err := json.Unmarshal([]byte(s.String), v); err != nil {
		return err
	}
	*dst = v
	return nil
}

func affectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrWorkoutNotFound
	}
	return nil
}
