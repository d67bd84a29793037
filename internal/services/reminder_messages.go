package services

import (
	"fmt"
	"html"

	"github.com/kcalbot/kcalbot-backend/internal/models"
)

var reminderTemplates = map[string]map[models.ReminderCategory]string{
	"en": {
		models.ReminderBreakfast:  "🍳 Good morning%s! Don't forget to log your breakfast.",
		models.ReminderLunch:      "🥗 Lunch time%s! Snap a photo of your meal to log it.",
		models.ReminderDinner:     "🍽 Time for dinner%s? Log it to close the day.",
		models.ReminderStreakRisk: "🔥 Your %d-day streak is at risk! Log a meal today to keep it.",
		models.ReminderWeighIn:    "⚖️ Weekly weigh-in%s! Log your weight to track progress.",
		models.ReminderReport:     "📊 Your daily report card is ready%s. Open the app to see your grade.",
	},
	"ru": {
		models.ReminderBreakfast:  "🍳 Доброе утро%s! Не забудьте записать завтрак.",
		models.ReminderLunch:      "🥗 Время обеда%s! Сфотографируйте блюдо, чтобы записать его.",
		models.ReminderDinner:     "🍽 Время ужина%s? Запишите его, чтобы закрыть день.",
		models.ReminderStreakRisk: "🔥 Ваша серия из %d дней под угрозой! Запишите приём пищи сегодня.",
		models.ReminderWeighIn:    "⚖️ Еженедельное взвешивание%s! Запишите свой вес.",
		models.ReminderReport:     "📊 Ваш дневной отчёт готов%s. Откройте приложение, чтобы увидеть оценку.",
	},
}

// ReminderText renders the localized message for category.
func ReminderText(category models.ReminderCategory, user *models.User) string {
	templates, ok := reminderTemplates[user.Language]
	if !ok {
		templates = reminderTemplates[models.DefaultLanguage]
	}
	tmpl := templates[category]

	if category == models.ReminderStreakRisk {
		return fmt.Sprintf(tmpl, user.CurrentStreak)
	}

	// Sent with HTML parse mode
	name := ""
	if user.FirstName != "" {
		name = ", " + html.EscapeString(user.FirstName)
	}
	return fmt.Sprintf(tmpl, name)
}
