package models

const (
	DefaultDailyGoal = 2000
	DefaultLanguage  = "en"
	DefaultLevel     = 1
)

// Default reminder times, HH:MM in the reference timezone.
const (
	DefaultBreakfastTime = "09:00"
	DefaultLunchTime     = "13:00"
	DefaultDinnerTime    = "19:00"
	DefaultStreakTime    = "21:00"
	DefaultWeighInTime   = "08:00"
	DefaultReportTime    = "22:00"
)

// ResolveUserDefaults fills zero-valued profile fields. Every code path that
// creates or reads a user relies on this single function instead of inline
// fallbacks.
func ResolveUserDefaults(u *User) {
	if u.DailyGoal <= 0 {
		u.DailyGoal = DefaultDailyGoal
	}
	if u.Language == "" {
		u.Language = DefaultLanguage
	}
	if u.Level < DefaultLevel {
		u.Level = DefaultLevel
	}
	if u.XP < 0 {
		u.XP = 0
	}

	r := &u.Reminders
	if r.BreakfastTime == "" {
		r.BreakfastTime = DefaultBreakfastTime
	}
	if r.LunchTime == "" {
		r.LunchTime = DefaultLunchTime
	}
	if r.DinnerTime == "" {
		r.DinnerTime = DefaultDinnerTime
	}
	if r.StreakTime == "" {
		r.StreakTime = DefaultStreakTime
	}
	if r.WeighInTime == "" {
		r.WeighInTime = DefaultWeighInTime
	}
	if r.ReportTime == "" {
		r.ReportTime = DefaultReportTime
	}
	if r.WeighInDay < 0 || r.WeighInDay > 6 {
		r.WeighInDay = 1
	}
}
