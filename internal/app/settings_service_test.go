package app_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"fitlevel/internal/adapter/memory"
	"fitlevel/internal/app"
	"fitlevel/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsService_SetRestDayRecomputes(t *testing.T) {
	db := memory.New()
	levels, _ := newLevelService(db)
	svc := app.NewSettingsService(db, db, levels)
	ctx := context.Background()

	commit(t, db, "2026-03-07", 5)
	_, err := levels.FinalizePreviousDays(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, domain.LevelPtr(3), levelOf(t, db, "2026-03-09"))

	state, err := svc.SetRestDay(ctx, "2026-03-08", true, today)
	require.NoError(t, err)
	assert.True(t, state.ManualRestDay)
	assert.True(t, state.RestDay)
	assert.Equal(t, domain.LevelPtr(5), state.Level)

	assert.Equal(t, domain.LevelPtr(4), levelOf(t, db, "2026-03-09"))
	assert.Equal(t, domain.LevelPtr(3), levelOf(t, db, today))

	state, err = svc.SetRestDay(ctx, "2026-03-08", false, today)
	require.NoError(t, err)
	assert.False(t, state.ManualRestDay)
	assert.Equal(t, domain.LevelPtr(4), state.Level)
}

// toggleOnRead runs onRead in the background the first time date is read,
// then gives it time to reach the store before the read returns.
type toggleOnRead struct {
	*memory.DB
	date   string
	fired  atomic.Bool
	onRead func()
}

func (d *toggleOnRead) GetDayState(ctx context.Context, date string) (*domain.DayState, error) {
	if date == d.date && d.fired.CompareAndSwap(false, true) {
		go d.onRead()
		time.Sleep(50 * time.Millisecond)
	}
	return d.DB.GetDayState(ctx, date)
}

func TestSettingsService_SetRestDayDuringFinalize(t *testing.T) {
	db := memory.New()
	days := &toggleOnRead{DB: db, date: "2026-03-09"}
	levels := app.NewLevelService(days, db, db, nil)
	svc := app.NewSettingsService(days, db, levels)
	ctx := context.Background()
	commit(t, db, "2026-03-08", 5)

	type result struct {
		state *domain.DayState
		err   error
	}
	done := make(chan result, 1)
	days.onRead = func() {
		state, err := svc.SetRestDay(ctx, "2026-03-09", true, today)
		done <- result{state, err}
	}

	_, err := levels.FinalizePreviousDays(ctx, today)
	require.NoError(t, err)

	var toggled result
	select {
	case toggled = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("rest toggle did not finish")
	}
	require.NoError(t, toggled.err)
	assert.True(t, toggled.state.ManualRestDay)

	got, err := db.GetDayState(ctx, "2026-03-09")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.ManualRestDay)
	assert.True(t, got.RestDay)
	assert.Equal(t, domain.LevelPtr(5), got.Level)
	assert.Equal(t, domain.LevelPtr(4), levelOf(t, db, today))
}

func TestSettingsService_SetRestDayOnActiveDayHasNoEffect(t *testing.T) {
	db := memory.New()
	levels, _ := newLevelService(db)
	svc := app.NewSettingsService(db, db, levels)
	ctx := context.Background()
	commit(t, db, "2026-03-09", 2)
	addWorkout(t, db, "w1", today)

	state, err := svc.SetRestDay(ctx, today, true, today)
	require.NoError(t, err)
	assert.True(t, state.ManualRestDay)
	assert.False(t, state.RestDay)
	assert.Equal(t, domain.LevelPtr(3), state.Level)
}

func TestSettingsService_SetRestDayRejects(t *testing.T) {
	svc := app.NewSettingsService(memory.New(), memory.New(), nil)

	_, err := svc.SetRestDay(context.Background(), "2026-03-11", true, today)
	assert.ErrorIs(t, err, app.ErrFutureDate)

	_, err = svc.SetRestDay(context.Background(), "11.03.2026", true, today)
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}

func TestSettingsService_FixedRestDays(t *testing.T) {
	db := memory.New()
	svc := app.NewSettingsService(db, db, nil)
	ctx := context.Background()

	got, err := svc.SetFixedRestDays(ctx, []int{6, 0, 6, 3})
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Sunday, time.Wednesday, time.Saturday}, got)

	stored, err := svc.FixedRestDays(ctx)
	require.NoError(t, err)
	assert.Equal(t, got, stored)

	_, err = svc.SetFixedRestDays(ctx, []int{1, 7})
	assert.ErrorIs(t, err, app.ErrInvalidWeekday)

	got, err = svc.SetFixedRestDays(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSettingsService_FixedRestDaysNotRetroactive(t *testing.T) {
	db := memory.New()
	levels, _ := newLevelService(db)
	svc := app.NewSettingsService(db, db, levels)
	ctx := context.Background()

	commit(t, db, "2026-03-07", 5)
	_, err := levels.FinalizePreviousDays(ctx, today)
	require.NoError(t, err)

	// 2026-03-08 is a Sunday
	_, err = svc.SetFixedRestDays(ctx, []int{0})
	require.NoError(t, err)
	assert.Equal(t, domain.LevelPtr(4), levelOf(t, db, "2026-03-08"))
}
