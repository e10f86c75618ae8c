package memory

import (
	"context"
	"testing"
	"time"

	"fitlevel/internal/domain"
)

func TestWorkoutRepository(t *testing.T) {
	db := New()
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	older := &domain.Workout{ID: "a", Date: "2026-03-02", Type: domain.WorkoutCardio, CreatedAt: base,
		Cardio: &domain.CardioDetails{Minutes: 30}}
	newer := &domain.Workout{ID: "b", Date: "2026-03-02", Type: domain.WorkoutLight, CreatedAt: base.Add(time.Hour)}
	other := &domain.Workout{ID: "c", Date: "2026-03-04", Type: domain.WorkoutLight, CreatedAt: base}
	for _, w := range []*domain.Workout{older, newer, other} {
		if err := db.CreateWorkout(ctx, w); err != nil {
			t.Fatalf("CreateWorkout(%s): %v", w.ID, err)
		}
	}
	if err := db.CreateWorkout(ctx, older); err == nil {
		t.Error("expected duplicate ID error")
	}

	list, err := db.ListWorkoutsByDate(ctx, "2026-03-02")
	if err != nil {
		t.Fatalf("ListWorkoutsByDate: %v", err)
	}
	if len(list) != 2 || list[0].ID != "b" || list[1].ID != "a" {
		t.Fatalf("expected [b a] newest first, got %+v", list)
	}

	n, _ := db.CountWorkoutsOnDate(ctx, "2026-03-03")
	if n != 0 {
		t.Errorf("expected 0 workouts on empty day, got %d", n)
	}

	ranged, _ := db.ListWorkoutsInRange(ctx, "2026-03-01", "2026-03-31")
	if len(ranged) != 3 || ranged[2].ID != "c" {
		t.Errorf("unexpected range order: %+v", ranged)
	}

	// stored rows are isolated from caller mutation
	older.Cardio.Minutes = 99
	got, _ := db.GetWorkout(ctx, "a")
	if got.Cardio.Minutes != 30 {
		t.Errorf("expected stored minutes 30, got %d", got.Cardio.Minutes)
	}

	got.Date = "2026-03-03"
	if err := db.UpdateWorkout(ctx, got); err != nil {
		t.Fatalf("UpdateWorkout: %v", err)
	}
	n, _ = db.CountWorkoutsOnDate(ctx, "2026-03-03")
	if n != 1 {
		t.Errorf("expected moved workout on 2026-03-03, got %d", n)
	}

	if err := db.UpdateWorkout(ctx, &domain.Workout{ID: "missing"}); err != domain.ErrWorkoutNotFound {
		t.Errorf("expected ErrWorkoutNotFound, got %v", err)
	}
	if err := db.DeleteWorkout(ctx, "missing"); err != domain.ErrWorkoutNotFound {
		t.Errorf("expected ErrWorkoutNotFound, got %v", err)
	}
	if err := db.DeleteWorkout(ctx, "a"); err != nil {
		t.Fatalf("DeleteWorkout: %v", err)
	}
	if w, _ := db.GetWorkout(ctx, "a"); w != nil {
		t.Error("expected nil after delete")
	}
}

func TestDayStateRepository(t *testing.T) {
	db := New()
	ctx := context.Background()

	if s, err := db.GetDayState(ctx, "2026-03-01"); err != nil || s != nil {
		t.Fatalf("expected nil, nil for missing state, got %v, %v", s, err)
	}

	lvl := domain.LevelPtr(3)
	_ = db.UpsertDayState(ctx, domain.DayState{Date: "2026-03-02", Level: lvl})
	_ = db.UpsertDayState(ctx, domain.DayState{Date: "2026-03-01", ManualRestDay: true})
	*lvl = 9

	s, _ := db.GetDayState(ctx, "2026-03-02")
	if !s.Finalized() || *s.Level != 3 {
		t.Errorf("expected committed level 3, got %+v", s)
	}

	list, _ := db.ListDayStates(ctx, "2026-03-01", "2026-03-02")
	if len(list) != 2 || list[0].Date != "2026-03-01" || !list[0].ManualRestDay {
		t.Errorf("unexpected list: %+v", list)
	}

	if err := db.ResetAll(ctx); err != nil {
		t.Fatalf("ResetAll: %v", err)
	}
	list, _ = db.ListDayStates(ctx, "2026-01-01", "2026-12-31")
	if len(list) != 0 {
		t.Errorf("expected empty after reset, got %d", len(list))
	}
}

func TestSettingsRepository(t *testing.T) {
	db := New()
	ctx := context.Background()

	days, _ := db.FixedRestWeekdays(ctx)
	if days == nil || len(days) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", days)
	}
	_ = db.SaveFixedRestWeekdays(ctx, []time.Weekday{time.Sunday, time.Wednesday})
	days, _ = db.FixedRestWeekdays(ctx)
	if len(days) != 2 || days[1] != time.Wednesday {
		t.Errorf("unexpected weekdays: %v", days)
	}
}

func TestUserAndSessionRepository(t *testing.T) {
	db := New()
	ctx := context.Background()

	u, err := db.CreateUser(ctx, "owner", "hash")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := db.CreateUser(ctx, "owner", "x"); err == nil {
		t.Error("expected duplicate user error")
	}
	if n, _ := db.CountUsers(ctx); n != 1 {
		t.Errorf("expected 1 user, got %d", n)
	}
	if got, _ := db.GetUserByID(ctx, u.ID); got == nil || got.Username != "owner" {
		t.Errorf("GetUserByID: %+v", got)
	}

	now := time.Now()
	_ = db.CreateSession(ctx, domain.Session{Token: "live", UserID: u.ID, ExpiresAt: now.Add(time.Hour)})
	_ = db.CreateSession(ctx, domain.Session{Token: "stale", UserID: u.ID, ExpiresAt: now.Add(-time.Hour)})
	if err := db.DeleteExpiredSessions(ctx, now); err != nil {
		t.Fatalf("DeleteExpiredSessions: %v", err)
	}
	if s, _ := db.GetSession(ctx, "stale"); s != nil {
		t.Error("expected expired session to be removed")
	}
	if s, _ := db.GetSession(ctx, "live"); s == nil {
		t.Error("expected live session to remain")
	}
	_ = db.DeleteSession(ctx, "live")
	if s, _ := db.GetSession(ctx, "live"); s != nil {
		t.Error("expected session to be deleted")
	}
}
