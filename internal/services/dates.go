package services

import "time"

const (
	dayLayout    = "2006-01-02"
	minuteLayout = "2006-01-02T15:04"
	clockLayout  = "15:04"
)

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DayKey formats t's calendar day in loc as YYYY-MM-DD.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dayLayout)
}

// ParseDay parses YYYY-MM-DD in loc. An empty string means today.
func ParseDay(s string, now time.Time, loc *time.Location) (time.Time, error) {
	if s == "" {
		return StartOfDay(now, loc), nil
	}
	return time.ParseInLocation(dayLayout, s, loc)
}

// ValidClock reports whether s is a 24h HH:MM time.
func ValidClock(s string) bool {
	_, err := time.Parse(clockLayout, s)
	return err == nil && len(s) == 5
}
