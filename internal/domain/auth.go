// Package domain contains the core business entities, the level rules and the
// repository ports.
package domain

import (
	"context"
	"time"
)

// User is an account allowed to use the API.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Session is an active login session.
type Session struct {
	Token     string
	UserID    int64
	UserAgent string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// UserRepository defines the port for user persistence operations.
type UserRepository interface {
	// GetUserByUsername returns nil, nil when the user does not exist.
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
	CreateUser(ctx context.Context, username, passwordHash string) (*User, error)
	CountUsers(ctx context.Context) (int, error)
}

// SessionRepository defines the port for session persistence operations.
type SessionRepository interface {
	CreateSession(ctx context.Context, s Session) error
	// GetSession returns nil, nil when the token is unknown.
	GetSession(ctx context.Context, token string) (*Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) error
}
