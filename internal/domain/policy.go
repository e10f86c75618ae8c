package domain

import "time"

// DisplayStatus is how a day is shown in the today and calendar views.
type DisplayStatus string

const (
	StatusActive DisplayStatus = "active"
	StatusRest   DisplayStatus = "rest"
	StatusMissed DisplayStatus = "missed"
)

// DayStatus is the outcome of the day-status policy.
type DayStatus struct {
	// RestDay is the flag fed to NextLevel.
	RestDay bool          `json:"restDay"`
	Display DisplayStatus `json:"display"`
}

// EffectiveDayStatus is the single place deciding how rest and activity
// interact. Logged activity always wins: the day advances the level and is
// displayed as active even when it is a manual or weekly rest day.
func EffectiveDayStatus(manualRest, fixedRestWeekday, didActivity bool) DayStatus {
	switch {
	case didActivity:
		return DayStatus{RestDay: false, Display: StatusActive}
	case manualRest || fixedRestWeekday:
		return DayStatus{RestDay: true, Display: StatusRest}
	default:
		return DayStatus{RestDay: false, Display: StatusMissed}
	}
}

// IsFixedRestDay reports whether day falls on one of the fixed weekdays.
func IsFixedRestDay(day string, fixed []time.Weekday) (bool, error) {
	wd, err := Weekday(day)
	if err != nil {
		return false, err
	}
	for _, f := range fixed {
		if f == wd {
			return true, nil
		}
	}
	return false, nil
}

// Observe builds the level rule input for day through EffectiveDayStatus.
func Observe(day string, manualRest bool, fixed []time.Weekday, didActivity bool) (DayObservation, DayStatus, error) {
	fixedRest, err := IsFixedRestDay(day, fixed)
	if err != nil {
		return DayObservation{}, DayStatus{}, err
	}
	status := EffectiveDayStatus(manualRest, fixedRest, didActivity)
	return DayObservation{
		Date:        day,
		IsRestDay:   status.RestDay,
		DidActivity: didActivity,
	}, status, nil
}
