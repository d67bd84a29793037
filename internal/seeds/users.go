package seeds

import (
	"context"
	"log"

	"github.com/kcalbot/kcalbot-backend/internal/models"
	"github.com/kcalbot/kcalbot-backend/internal/services"
	"gorm.io/gorm"
)

// Demo Telegram ids are far outside the real id range.
const (
	DemoTelegramID   int64 = 9_000_000_001
	FriendTelegramID int64 = 9_000_000_002
)

// SeedDemoUsers creates (or reuses) two demo users with a complete profile
// and makes them friends.
func SeedDemoUsers(ctx context.Context, db *gorm.DB, users *services.UserService, social *services.SocialService) ([]*models.User, error) {
	log.Println("👤 Seeding demo users...")

	profiles := []struct {
		ident  services.TelegramIdentity
		update services.ProfileUpdate
	}{
		{
			ident:  services.TelegramIdentity{ID: DemoTelegramID, Username: "demo_eater", FirstName: "Demo", LanguageCode: "en"},
			update: profile(models.GenderFemale, 29, 168, 64, 60, "moderate", models.GoalLose),
		},
		{
			ident:  services.TelegramIdentity{ID: FriendTelegramID, Username: "demo_friend", FirstName: "Друг", LanguageCode: "ru"},
			update: profile(models.GenderMale, 34, 181, 82, 85, "active", models.GoalGain),
		},
	}

	seeded := make([]*models.User, 0, len(profiles))
	for _, p := range profiles {
		user, created, err := users.UpsertTelegramUser(ctx, p.ident)
		if err != nil {
			return nil, err
		}
		user, err = users.UpdateProfile(ctx, user.ID, p.update)
		if err != nil {
			return nil, err
		}
		if created {
			log.Printf("   ✅ Created %s (goal %d kcal)", user.Username, user.DailyGoal)
		} else {
			log.Printf("   ✅ Reusing %s", user.Username)
		}
		seeded = append(seeded, user)
	}

	// Request from the demo user, accepted by the friend
	friendship, err := social.RequestFriend(ctx, seeded[0].ID, FriendTelegramID)
	if err != nil {
		return nil, err
	}
	if friendship.Status == models.FriendshipPending {
		if _, err := social.AcceptFriend(ctx, seeded[1].ID, friendship.ID); err != nil {
			return nil, err
		}
	}

	if err := db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", seeded[0].ID).
		Updates(map[string]interface{}{
			"reminder_breakfast_enabled": true,
			"reminder_report_enabled":    true,
		}).Error; err != nil {
		return nil, err
	}
	return seeded, nil
}

func profile(gender models.Gender, age int, height, weight, target float64, activity string, goal models.Goal) services.ProfileUpdate {
	return services.ProfileUpdate{
		Gender:        &gender,
		Age:           &age,
		Height:        &height,
		Weight:        &weight,
		TargetWeight:  &target,
		ActivityLevel: &activity,
		Goal:          &goal,
	}
}
