// Package postgres implements the domain repositories using PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fitlevel/internal/domain"

	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

// DB wraps a *sql.DB and implements domain repository interfaces.
type DB struct {
	sql *sql.DB
}

var _ domain.WorkoutRepository = (*DB)(nil)
var _ domain.DayStateRepository = (*DB)(nil)
var _ domain.SettingsRepository = (*DB)(nil)
var _ domain.DataResetter = (*DB)(nil)
var _ domain.UserRepository = (*DB)(nil)
var _ domain.SessionRepository = (*DB)(nil)

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

var migrations = [][]string{
	1: {
		`CREATE TABLE IF NOT EXISTS workouts (
			id TEXT PRIMARY KEY,
			date TEXT NOT NULL,
			type TEXT NOT NULL CHECK(type IN ('strength','cardio','light')),
			title TEXT NOT NULL DEFAULT '',
			note TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			strength_data JSONB,
			cardio_data JSONB,
			light_data JSONB
		);`,
		`CREATE INDEX IF NOT EXISTS idx_workouts_date ON workouts(date);`,
	},
	2: {
		`CREATE TABLE IF NOT EXISTS day_states (
			date TEXT PRIMARY KEY,
			manual_rest_day BOOLEAN NOT NULL DEFAULT FALSE,
			rest_day BOOLEAN NOT NULL DEFAULT FALSE,
			level SMALLINT CHECK(level IS NULL OR (level >= 0 AND level <= 10))
		);`,
	},
	3: {
		`CREATE TABLE IF NOT EXISTS settings (
			id INTEGER PRIMARY KEY CHECK(id = 1),
			fixed_rest_days JSONB NOT NULL DEFAULT '[]'
		);`,
		`INSERT INTO settings (id, fixed_rest_days) VALUES (1, '[]') ON CONFLICT (id) DO NOTHING;`,
	},
	4: {
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			user_agent TEXT NOT NULL DEFAULT '',
			expires_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);`,
	},
}

func (d *DB) migrate(ctx context.Context) error {
	if _, err := d.sql.ExecContext(ctx,
		"CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY, applied_at TIMESTAMPTZ NOT NULL);",
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	var current sql.NullInt64
	if err := d.sql.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations;").Scan(&current); err != nil {
		return fmt.Errorf("migrate: schema version: %w", err)
	}

	for version := int(current.Int64) + 1; version < len(migrations); version++ {
		tx, err := d.sql.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("migrate v%d: %w", version, err)
		}
		for _, stmt := range migrations[version] {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migrate v%d: %w", version, err)
			}
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schema_migrations (version, applied_at) VALUES ($1, $2);", version, time.Now().UTC(),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migrate v%d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migrate v%d: %w", version, err)
		}
		log.WithField("version", version).Info("postgres migration applied")
	}
	return nil
}

// ResetAll deletes every workout and day state.
func (d *DB) ResetAll(ctx context.Context) error {
	_, err := d.sql.ExecContext(ctx, "TRUNCATE workouts, day_states;")
	return err
}
