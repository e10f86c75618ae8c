package domain

// Level is the daily progress value, always within [MinLevel, MaxLevel].
type Level int

const (
	MinLevel Level = 0
	MaxLevel Level = 10
)

// DayObservation is what the level rule needs to know about a single day.
// IsRestDay is the level-affecting rest flag (see EffectiveDayStatus).
type DayObservation struct {
	Date        string `json:"date" yaml:"date"`
	IsRestDay   bool   `json:"isRestDay" yaml:"rest"`
	DidActivity bool   `json:"didActivity" yaml:"activity"`
}

// TimelineEntry is the level committed for one date.
type TimelineEntry struct {
	Date  string `json:"date"`
	Level Level  `json:"level"`
}

// ClampLevel returns n clamped into [MinLevel, MaxLevel].
func ClampLevel(n int) Level {
	if n < int(MinLevel) {
		return MinLevel
	}
	if n > int(MaxLevel) {
		return MaxLevel
	}
	return Level(n)
}

// NextLevel applies the daily rule. A rest day holds the level and is checked
// before activity; callers that want activity to win must clear IsRestDay
// first.
func NextLevel(prev Level, day DayObservation) Level {
	if day.IsRestDay {
		return prev
	}
	if day.DidActivity {
		return ClampLevel(int(prev) + 1)
	}
	return ClampLevel(int(prev) - 1)
}

// ComputeTimeline folds NextLevel over days in the given order, which must be
// chronological. It never sorts.
func ComputeTimeline(start Level, days []DayObservation) []TimelineEntry {
	current := ClampLevel(int(start))
	out := make([]TimelineEntry, 0, len(days))
	for _, d := range days {
		current = NextLevel(current, d)
		out = append(out, TimelineEntry{Date: d.Date, Level: current})
	}
	return out
}

// LevelOn returns the level recorded for date in timeline.
func LevelOn(timeline []TimelineEntry, date string) (Level, bool) {
	for _, e := range timeline {
		if e.Date == date {
			return e.Level, true
		}
	}
	return 0, false
}

// LatestLevel returns the last level in timeline.
func LatestLevel(timeline []TimelineEntry) (Level, bool) {
	if len(timeline) == 0 {
		return 0, false
	}
	return timeline[len(timeline)-1].Level, true
}
