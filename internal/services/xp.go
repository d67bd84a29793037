package services

// LevelThresholds is the minimum XP for each level, strictly increasing.
// Level n requires LevelThresholds[n-1].
var LevelThresholds = []int{0, 50, 150, 300, 500, 800, 1200, 1700, 2300, 3000, 4000, 5500, 7500, 10000, 15000}

const (
	XPPerMeal           = 10
	XPStreakBonusPerDay = 2
	XPStreakBonusCap    = 20
	XPPerWeightLog      = 5
)

// LevelForXP maps cumulative XP to a level starting at 1.
func LevelForXP(xp int) int {
	level := 1
	for i, threshold := range LevelThresholds {
		if xp >= threshold {
			level = i + 1
		}
	}
	return level
}

// StreakBonus is the capped per-day bonus, only for a streak that just grew past one day.
func StreakBonus(streak int, streakChanged bool) int {
	if !streakChanged || streak <= 1 {
		return 0
	}
	return min(streak*XPStreakBonusPerDay, XPStreakBonusCap)
}

// MealXP is the award for one confirmed meal.
func MealXP(streak int, streakChanged bool) int {
	return XPPerMeal + StreakBonus(streak, streakChanged)
}

// LevelProgress describes where xp sits between two thresholds. At the top
// level Next is zero and Percent is 100.
type LevelProgress struct {
	Level   int `json:"level"`
	Current int `json:"currentLevelXp"`
	Next    int `json:"nextLevelXp"`
	Percent int `json:"percent"`
}

func ProgressForXP(xp int) LevelProgress {
	level := LevelForXP(xp)
	p := LevelProgress{Level: level, Current: LevelThresholds[level-1]}
	if level >= len(LevelThresholds) {
		p.Percent = 100
		return p
	}
	p.Next = LevelThresholds[level]
	span := p.Next - p.Current
	p.Percent = (max(xp, 0) - p.Current) * 100 / span
	return p
}
