// Package sqlite implements the domain repositories on an embedded SQLite
// database. It is the default store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fitlevel/internal/domain"

	_ "github.com/mattn/go-sqlite3"
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

// Open creates or opens the database file at path, applies pragmas and runs
// pending migrations.
func Open(path string) (*DB, error) {
	s, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// single writer avoids SQLITE_BUSY
	s.SetMaxOpenConns(1)
	s.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}

	d := &DB{sql: s}
	if err := d.applyPragmas(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
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

func (d *DB) applyPragmas(ctx context.Context) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := d.sql.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	return nil
}

type migration struct {
	version int
	stmts   []string
}

var migrations = []migration{
	{1, []string{
		`CREATE TABLE workouts (
			id TEXT PRIMARY KEY,
			date TEXT NOT NULL,
			type TEXT NOT NULL CHECK(type IN ('strength','cardio','light')),
			title TEXT NOT NULL DEFAULT '',
			note TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			strength_data TEXT,
			cardio_data TEXT,
			light_data TEXT
		)`,
		`CREATE INDEX idx_workouts_date ON workouts(date)`,
	}},
	{2, []string{
		`CREATE TABLE day_states (
			date TEXT PRIMARY KEY,
			manual_rest_day INTEGER NOT NULL DEFAULT 0 CHECK(manual_rest_day IN (0,1)),
			rest_day INTEGER NOT NULL DEFAULT 0 CHECK(rest_day IN (0,1)),
			level INTEGER CHECK(level IS NULL OR (level >= 0 AND level <= 10))
		)`,
	}},
	{3, []string{
		`CREATE TABLE settings (
			id INTEGER PRIMARY KEY CHECK(id = 1),
			fixed_rest_days TEXT NOT NULL DEFAULT '[]'
		)`,
		`INSERT OR IGNORE INTO settings (id, fixed_rest_days) VALUES (1, '[]')`,
	}},
	{4, []string{
		`CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE sessions (
			token TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			user_agent TEXT NOT NULL DEFAULT '',
			expires_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX idx_sessions_expires_at ON sessions(expires_at)`,
	}},
}

// migrate applies every migration newer than the recorded schema version.
// Each version runs in its own transaction.
func (d *DB) migrate(ctx context.Context) error {
	if _, err := d.sql.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TIMESTAMP NOT NULL
	)`); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	current, err := d.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := d.sql.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("migrate v%d: %w", m.version, err)
		}
		for _, stmt := range m.stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migrate v%d: %w", m.version, err)
			}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
			m.version, time.Now().UTC(),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migrate v%d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migrate v%d: %w", m.version, err)
		}
		log.WithField("version", m.version).Info("sqlite migration applied")
	}
	return nil
}

// SchemaVersion returns the highest applied migration, 0 for a new database.
func (d *DB) SchemaVersion(ctx context.Context) (int, error) {
	var v sql.NullInt64
	if err := d.sql.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&v); err != nil {
		return 0, fmt.Errorf("schema version: %w", err)
	}
	return int(v.Int64), nil
}

// ResetAll deletes every workout and day state in one transaction.
func (d *DB) ResetAll(ctx context.Context) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, stmt := range []string{`DELETE FROM workouts`, `DELETE FROM day_states`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
