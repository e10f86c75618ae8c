package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"fitlevel/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

type mockUserRepo struct {
	getByUsernameFn func(ctx context.Context, username string) (*domain.User, error)
	getByIDFn       func(ctx context.Context, id int64) (*domain.User, error)
	createFn        func(ctx context.Context, username, passwordHash string) (*domain.User, error)
	countFn         func(ctx context.Context) (int, error)
}

func (m *mockUserRepo) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, nil
}

func (m *mockUserRepo) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) CreateUser(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, username, passwordHash)
	}
	return &domain.User{ID: 1, Username: username, PasswordHash: passwordHash}, nil
}

func (m *mockUserRepo) CountUsers(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

type mockSessionRepo struct {
	createFn        func(ctx context.Context, s domain.Session) error
	getFn           func(ctx context.Context, token string) (*domain.Session, error)
	deleteFn        func(ctx context.Context, token string) error
	deleteExpiredFn func(ctx context.Context, now time.Time) error
}

func (m *mockSessionRepo) CreateSession(ctx context.Context, s domain.Session) error {
	if m.createFn != nil {
		return m.createFn(ctx, s)
	}
	return nil
}

func (m *mockSessionRepo) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	if m.getFn != nil {
		return m.getFn(ctx, token)
	}
	return nil, nil
}

func (m *mockSessionRepo) DeleteSession(ctx context.Context, token string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, token)
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpiredSessions(ctx context.Context, now time.Time) error {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx, now)
	}
	return nil
}

func TestAuthService_Login_Success(t *testing.T) {
	ctx := context.Background()
	password := "testpass123"
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)

	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return &domain.User{
				ID:           1,
				Username:     "testuser",
				PasswordHash: string(hash),
			}, nil
		},
	}

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sessions := &mockSessionRepo{
		createFn: func(ctx context.Context, s domain.Session) error {
			if s.UserID != 1 {
				t.Errorf("expected userID 1, got %d", s.UserID)
			}
			if s.Token == "" {
				t.Error("token should not be empty")
			}
			if s.UserAgent != "agent/1" {
				t.Errorf("expected user agent to be bound, got %q", s.UserAgent)
			}
			if !s.ExpiresAt.Equal(fixed.Add(SessionTTL)) {
				t.Errorf("unexpected expiry %v", s.ExpiresAt)
			}
			return nil
		},
	}

	svc := NewAuthService(users, sessions)
	svc.now = func() time.Time { return fixed }
	token, err := svc.Login(ctx, "testuser", password, "agent/1")

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if token == "" {
		t.Error("expected token, got empty string")
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.MinCost)

	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return &domain.User{
				ID:           1,
				Username:     "testuser",
				PasswordHash: string(hash),
			}, nil
		},
	}

	svc := NewAuthService(users, &mockSessionRepo{})

	_, err := svc.Login(ctx, "testuser", "wrongpass", "agent")
	if err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_SSOUserHasNoPassword(t *testing.T) {
	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return &domain.User{ID: 3, Username: username}, nil
		},
	}
	svc := NewAuthService(users, &mockSessionRepo{})

	if _, err := svc.Login(context.Background(), "sso", "", "agent"); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_ValidateSession_Valid(t *testing.T) {
	ctx := context.Background()
	token := "validtoken"

	sessions := &mockSessionRepo{
		getFn: func(ctx context.Context, tok string) (*domain.Session, error) {
			return &domain.Session{
				Token:     token,
				UserID:    1,
				UserAgent: "agent",
				ExpiresAt: time.Now().Add(1 * time.Hour),
			}, nil
		},
	}

	users := &mockUserRepo{
		getByIDFn: func(ctx context.Context, id int64) (*domain.User, error) {
			return &domain.User{
				ID:       1,
				Username: "testuser",
			}, nil
		},
	}

	svc := NewAuthService(users, sessions)
	user, err := svc.ValidateSession(ctx, token, "agent")

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.Username != "testuser" {
		t.Errorf("expected username 'testuser', got %s", user.Username)
	}
}

func TestAuthService_ValidateSession_Rejects(t *testing.T) {
	tests := []struct {
		name      string
		expiresIn time.Duration
		agent     string
	}{
		{"expired", -time.Hour, "agent"},
		{"different user agent", time.Hour, "other"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			deleted := false
			sessions := &mockSessionRepo{
				getFn: func(ctx context.Context, tok string) (*domain.Session, error) {
					return &domain.Session{
						Token:     tok,
						UserID:    1,
						UserAgent: "agent",
						ExpiresAt: time.Now().Add(tc.expiresIn),
					}, nil
				},
				deleteFn: func(ctx context.Context, tok string) error {
					deleted = true
					return nil
				},
			}

			svc := NewAuthService(&mockUserRepo{}, sessions)
			_, err := svc.ValidateSession(context.Background(), "tok", tc.agent)
			if err != ErrSessionExpired {
				t.Errorf("expected ErrSessionExpired, got %v", err)
			}
			if !deleted {
				t.Error("expected session to be deleted")
			}
		})
	}
}

func TestAuthService_ValidateSession_Unknown(t *testing.T) {
	svc := NewAuthService(&mockUserRepo{}, &mockSessionRepo{})
	if _, err := svc.ValidateSession(context.Background(), "nope", "agent"); err != ErrSessionNotFound {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestAuthService_CreateInitialUser_Success(t *testing.T) {
	ctx := context.Background()

	users := &mockUserRepo{
		countFn: func(ctx context.Context) (int, error) {
			return 0, nil
		},
		createFn: func(ctx context.Context, username, passwordHash string) (*domain.User, error) {
			if username != "admin" {
				t.Errorf("expected username 'admin', got %s", username)
			}
			if passwordHash == "" {
				t.Error("password hash should not be empty")
			}
			return &domain.User{ID: 1, Username: username}, nil
		},
	}

	svc := NewAuthService(users, &mockSessionRepo{})

	err := svc.CreateInitialUser(ctx, " admin ", "password123")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestAuthService_CreateInitialUser_UsersExist(t *testing.T) {
	users := &mockUserRepo{
		countFn: func(ctx context.Context) (int, error) {
			return 1, nil
		},
	}

	svc := NewAuthService(users, &mockSessionRepo{})

	err := svc.CreateInitialUser(context.Background(), "admin", "password123")
	if !errors.Is(err, ErrSetupDone) {
		t.Errorf("expected ErrSetupDone, got %v", err)
	}
}

func TestAuthService_CreateInitialUser_ShortPassword(t *testing.T) {
	svc := NewAuthService(&mockUserRepo{}, &mockSessionRepo{})
	if err := svc.CreateInitialUser(context.Background(), "admin", "short"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_LoginWithUser_ProvisionsUser(t *testing.T) {
	created := false
	users := &mockUserRepo{
		createFn: func(ctx context.Context, username, passwordHash string) (*domain.User, error) {
			created = true
			if passwordHash != "" {
				t.Error("SSO user must not get a password hash")
			}
			return &domain.User{ID: 2, Username: username}, nil
		},
	}
	var got domain.Session
	sessions := &mockSessionRepo{
		createFn: func(ctx context.Context, s domain.Session) error {
			got = s
			return nil
		},
	}

	svc := NewAuthService(users, sessions)
	token, err := svc.LoginWithUser(context.Background(), "newssouser", "agent")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !created {
		t.Error("expected user to be provisioned")
	}
	if token == "" || got.UserID != 2 {
		t.Errorf("unexpected session %+v", got)
	}
}

func TestAuthService_PurgeExpiredSessions(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	var seen time.Time
	sessions := &mockSessionRepo{
		deleteExpiredFn: func(ctx context.Context, now time.Time) error {
			seen = now
			return nil
		},
	}
	svc := NewAuthService(&mockUserRepo{}, sessions)
	svc.now = func() time.Time { return fixed }

	if err := svc.PurgeExpiredSessions(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !seen.Equal(fixed) {
		t.Errorf("expected purge at %v, got %v", fixed, seen)
	}
}

func TestConstantTimeCompare(t *testing.T) {
	if !ConstantTimeCompare("abc", "abc") {
		t.Error("expected equal strings to match")
	}
	if ConstantTimeCompare("abc", "abd") {
		t.Error("expected different strings not to match")
	}
}
