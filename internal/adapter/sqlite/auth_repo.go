package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fitlevel/internal/domain"
)

// GetUserByUsername retrieves a user by username.
func (d *DB) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return d.getUser(ctx, `SELECT id, username, password_hash, created_at FROM users WHERE username = ?`, username)
}

// GetUserByID retrieves a user by ID.
func (d *DB) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	return d.getUser(ctx, `SELECT id, username, password_hash, created_at FROM users WHERE id = ?`, id)
}

func (d *DB) getUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := d.sql.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser creates a new user.
func (d *DB) CreateUser(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	now := time.Now().UTC()
	res, err := d.sql.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)`,
		username, passwordHash, now,
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &domain.User{ID: id, Username: username, PasswordHash: passwordHash, CreatedAt: now}, nil
}

// CountUsers returns the total number of users.
func (d *DB) CountUsers(ctx context.Context) (int, error) {
	var count int
	err := d.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

func (d *DB) CreateSession(ctx context.Context, s domain.Session) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, user_agent, expires_at, created_at) VALUES (?, ?, ?, ?, ?)`,
		s.Token, s.UserID, s.UserAgent, s.ExpiresAt.UTC(), s.CreatedAt.UTC(),
	)
	return err
}

func (d *DB) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	var s domain.Session
	err := d.sql.QueryRowContext(ctx,
		`SELECT token, user_id, user_agent, expires_at, created_at FROM sessions WHERE token = ?`,
		token,
	).Scan(&s.Token, &s.UserID, &s.UserAgent, &s.ExpiresAt, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (d *DB) DeleteSession(ctx context.Context, token string) error {
	_, err := d.sql.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	return err
}

func (d *DB) DeleteExpiredSessions(ctx context.Context, now time.Time) error {
	_, err := d.sql.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, now.UTC())
	return err
}
