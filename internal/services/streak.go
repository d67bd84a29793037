package services

import "time"

// StreakState is the streak slice of a user document.
type StreakState struct {
	Current     int
	Longest     int
	LastLogDate *time.Time
}

// AdvanceStreak applies one confirmed-meal event at now. It returns the new
// state and whether anything changed. Days are compared in loc; the stored
// watermark is the start of the logging day.
func AdvanceStreak(s StreakState, now time.Time, loc *time.Location) (StreakState, bool) {
	today := StartOfDay(now, loc)
	watermark := today.UTC()

	if s.LastLogDate == nil || s.LastLogDate.IsZero() {
		s.Current = 1
		s.Longest = max(s.Longest, 1)
		s.LastLogDate = &watermark
		return s, true
	}

	last := StartOfDay(*s.LastLogDate, loc)
	switch {
	case last.Equal(today):
		return s, false
	case last.AddDate(0, 0, 1).Equal(today):
		s.Current++
	default:
		// Gap of two or more days, or a watermark in the future.
		s.Current = 1
	}

	s.Longest = max(s.Longest, s.Current)
	s.LastLogDate = &watermark
	return s, true
}
