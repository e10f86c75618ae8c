package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"fitlevel/internal/adapter/memory"
	"fitlevel/internal/app"
	"fitlevel/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// TestMain checks that Stop leaves no cron goroutine behind.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type mockFinalizer struct {
	FinalizeFn func(ctx context.Context, today string) (*app.FinalizeResult, error)
}

func (m *mockFinalizer) FinalizePreviousDays(ctx context.Context, today string) (*app.FinalizeResult, error) {
	return m.FinalizeFn(ctx, today)
}

type mockPurger struct {
	calls int
}

func (m *mockPurger) PurgeExpiredSessions(ctx context.Context) error {
	m.calls++
	return nil
}

func fixedClock() time.Time {
	return time.Date(2026, 3, 10, 0, 10, 0, 0, time.Local)
}

func TestNewRejectsBadSpec(t *testing.T) {
	_, err := New("every night", &mockFinalizer{}, nil)
	require.Error(t, err)
}

func TestRunOnceFinalizesBeforeToday(t *testing.T) {
	db := memory.New()
	levels := app.NewLevelService(db, db, db, nil)

	s, err := New("5 0 * * *", levels, nil)
	require.NoError(t, err)
	s.WithClock(fixedClock).RunOnce(context.Background())

	y, err := db.GetDayState(context.Background(), "2026-03-09")
	require.NoError(t, err)
	require.True(t, y.Finalized())

	today, err := db.GetDayState(context.Background(), "2026-03-10")
	require.NoError(t, err)
	assert.Nil(t, today)
}

func TestRunOnceSurvivesErrors(t *testing.T) {
	var gotToday string
	f := &mockFinalizer{FinalizeFn: func(_ context.Context, today string) (*app.FinalizeResult, error) {
		gotToday = today
		return nil, errors.New("db down")
	}}
	p := &mockPurger{}

	s, err := New("5 0 * * *", f, p)
	require.NoError(t, err)
	s.WithClock(fixedClock).RunOnce(context.Background())

	assert.Equal(t, domain.LocalDay(fixedClock()), gotToday)
	assert.Equal(t, 1, p.calls)
}

func TestStartRunsImmediately(t *testing.T) {
	calls := 0
	f := &mockFinalizer{FinalizeFn: func(context.Context, string) (*app.FinalizeResult, error) {
		calls++
		return &app.FinalizeResult{}, nil
	}}

	s, err := New("@daily", f, nil)
	require.NoError(t, err)
	s.Start(context.Background())
	defer s.Stop()

	assert.Equal(t, 1, calls)
	assert.False(t, s.Next().IsZero())
}
