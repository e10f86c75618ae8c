package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"fitlevel/internal/domain"
)

func (d *DB) GetDayState(ctx context.Context, date string) (*domain.DayState, error) {
	row := d.sql.QueryRowContext(ctx,
		"SELECT date, manual_rest_day, rest_day, level FROM day_states WHERE date=$1;", date)
	s, err := scanDayState(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func (d *DB) UpsertDayState(ctx context.Context, s domain.DayState) error {
	var level sql.NullInt64
	if s.Level != nil {
		level = sql.NullInt64{Int64: int64(*s.Level), Valid: true}
	}
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO day_states (date, manual_rest_day, rest_day, level) VALUES ($1, $2, $3, $4)
		ON CONFLICT (date) DO UPDATE SET manual_rest_day=EXCLUDED.manual_rest_day, rest_day=EXCLUDED.rest_day, level=EXCLUDED.level;`,
		s.Date, s.ManualRestDay, s.RestDay, level,
	)
	return err
}

func (d *DB) ListDayStates(ctx context.Context, from, to string) ([]domain.DayState, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT date, manual_rest_day, rest_day, level FROM day_states WHERE date >= $1 AND date <= $2 ORDER BY date ASC;",
		from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.DayState{}
	for rows.Next() {
		s, err := scanDayState(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func scanDayState(sc scanner) (*domain.DayState, error) {
	var (
		s     domain.DayState
		level sql.NullInt64
	)
	if err := sc.Scan(&s.Date, &s.ManualRestDay, &s.RestDay, &level); err != nil {
		return nil, err
	}
	if level.Valid {
		s.Level = domain.LevelPtr(domain.Level(level.Int64))
	}
	return &s, nil
}

func (d *DB) FixedRestWeekdays(ctx context.Context) ([]time.Weekday, error) {
	var raw []byte
	err := d.sql.QueryRowContext(ctx, "SELECT fixed_rest_days FROM settings WHERE id=1;").Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []time.Weekday{}, nil
	}
	if err != nil {
		return nil, err
	}
	var ints []int
	if err := json.Unmarshal(raw, &ints); err != nil {
		return nil, err
	}
	out := make([]time.Weekday, 0, len(ints))
	for _, i := range ints {
		out = append(out, time.Weekday(i))
	}
	return out, nil
}

func (d *DB) SaveFixedRestWeekdays(ctx context.Context, days []time.Weekday) error {
	ints := make([]int, len(days))
	for i, wd := range days {
		ints[i] = int(wd)
	}
	raw, err := json.Marshal(ints)
	if err != nil {
		return err
	}
	_, err = d.sql.ExecContext(ctx,
		`INSERT INTO settings (id, fixed_rest_days) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET fixed_rest_days=EXCLUDED.fixed_rest_days;`,
		string(raw),
	)
	return err
}
