package migrations

import (
	"gorm.io/gorm"
)

// Migration002LeaderboardIndexes indexes the trailing-window scan of the
// weekly leaderboard and the pending friend request lookup.
func Migration002LeaderboardIndexes() Migration {
	return Migration{
		ID:        "002_leaderboard_indexes",
		Name:      "Add indexes for weekly leaderboard and friend requests",
		DependsOn: []string{"001_reminder_indexes"},
		Up: func(db *gorm.DB) error {
			// Optimizes: WHERE created_at >= ? GROUP BY user_id
			if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_xp_events_created ON xp_events (created_at)`).Error; err != nil {
				return err
			}

			// Optimizes: WHERE addressee_id = ? AND status = 'pending'
			return db.Exec(`CREATE INDEX IF NOT EXISTS idx_friendships_addressee_status ON friendships (addressee_id, status)`).Error
		},
		Down: func(db *gorm.DB) error {
			if err := db.Exec(`DROP INDEX IF EXISTS idx_xp_events_created`).Error; err != nil {
				return err
			}
			return db.Exec(`DROP INDEX IF EXISTS idx_friendships_addressee_status`).Error
		},
	}
}
