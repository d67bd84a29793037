package models

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Meal{},
		&MealItem{},
		&WeightLog{},
		&UserBadge{},
		&XPEvent{},
		&Friendship{},
		&ReminderDelivery{},
	}
}
