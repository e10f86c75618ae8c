package domain_test

import (
	"testing"
	"time"

	"fitlevel/internal/domain"
)

func TestAddDays(t *testing.T) {
	tests := []struct {
		day  string
		n    int
		want string
	}{
		{"2026-01-01", -1, "2025-12-31"},
		{"2026-02-28", 1, "2026-03-01"},
		{"2024-02-28", 1, "2024-02-29"},
		{"2026-03-29", 1, "2026-03-30"},
		{"2026-01-15", 0, "2026-01-15"},
		{"2026-01-31", -30, "2026-01-01"},
	}
	for _, tc := range tests {
		got, err := domain.AddDays(tc.day, tc.n)
		if err != nil {
			t.Fatalf("AddDays(%q, %d): %v", tc.day, tc.n, err)
		}
		if got != tc.want {
			t.Errorf("AddDays(%q, %d) = %q; want %q", tc.day, tc.n, got, tc.want)
		}
	}
}

func TestParseDay_Invalid(t *testing.T) {
	for _, s := range []string{"", "2026-1-5", "2026-13-01", "yesterday"} {
		if _, err := domain.ParseDay(s); err == nil {
			t.Errorf("ParseDay(%q) expected error", s)
		}
	}
}

func TestWeekday(t *testing.T) {
	wd, err := domain.Weekday("2026-01-04")
	if err != nil {
		t.Fatal(err)
	}
	if wd != time.Sunday {
		t.Errorf("expected Sunday, got %v", wd)
	}
}

func TestDaysBetween(t *testing.T) {
	days, err := domain.DaysBetween("2025-12-30", "2026-01-02")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"2025-12-30", "2025-12-31", "2026-01-01", "2026-01-02"}
	if len(days) != len(want) {
		t.Fatalf("expected %d days, got %v", len(want), days)
	}
	for i := range want {
		if days[i] != want[i] {
			t.Errorf("day %d = %q; want %q", i, days[i], want[i])
		}
	}

	days, err = domain.DaysBetween("2026-01-02", "2026-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 0 {
		t.Errorf("expected no days, got %v", days)
	}
}

func TestDayStateFinalized(t *testing.T) {
	var missing *domain.DayState
	if missing.Finalized() {
		t.Error("nil state must not be finalized")
	}
	if (&domain.DayState{Date: "2026-01-01"}).Finalized() {
		t.Error("state without level must not be finalized")
	}
	if !(&domain.DayState{Date: "2026-01-01", Level: domain.LevelPtr(0)}).Finalized() {
		t.Error("level 0 is a committed level")
	}
}
