package migrations

import (
	"fmt"

	"gorm.io/gorm"
)

var reminderColumns = []string{"breakfast", "lunch", "dinner", "streak", "weigh_in", "report"}

// Migration001ReminderIndexes adds one partial index per reminder slot.
// Optimizes the scheduler tick: WHERE reminder_<slot>_enabled AND reminder_<slot>_time = ?
func Migration001ReminderIndexes() Migration {
	return Migration{
		ID:   "001_reminder_indexes",
		Name: "Add partial indexes for reminder slot lookups",
		Up: func(db *gorm.DB) error {
			for _, col := range reminderColumns {
				stmt := fmt.Sprintf(
					`CREATE INDEX IF NOT EXISTS idx_users_reminder_%[1]s ON users (reminder_%[1]s_time) WHERE reminder_%[1]s_enabled = true`,
					col)
				if err := db.Exec(stmt).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Down: func(db *gorm.DB) error {
			for _, col := range reminderColumns {
				if err := db.Exec(fmt.Sprintf(`DROP INDEX IF EXISTS idx_users_reminder_%s`, col)).Error; err != nil {
					return err
				}
			}
			return nil
		},
	}
}
