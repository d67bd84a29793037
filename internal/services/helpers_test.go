package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/kcalbot/kcalbot-backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var moscow = mustLoad("Europe/Moscow")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// setupTestDB opens a private in-memory SQLite database with every model
// migrated.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func ptr[T any](v T) *T {
	return &v
}

func createUser(t *testing.T, db *gorm.DB, telegramID int64, mutate ...func(*models.User)) *models.User {
	t.Helper()
	user := &models.User{TelegramID: telegramID, FirstName: "Anna", Language: "en"}
	for _, m := range mutate {
		m(user)
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createConfirmedMeal(t *testing.T, db *gorm.DB, userID string, eatenAt time.Time, calories float64) *models.Meal {
	t.Helper()
	confirmedAt := eatenAt.UTC()
	meal := &models.Meal{
		UserID:      userID,
		Name:        "Meal",
		Calories:    calories,
		Protein:     calories * 0.25 / 4,
		Carbs:       calories * 0.45 / 4,
		Fat:         calories * 0.30 / 9,
		Status:      models.MealStatusConfirmed,
		EatenAt:     eatenAt.UTC(),
		ConfirmedAt: &confirmedAt,
	}
	require.NoError(t, db.Create(meal).Error)
	return meal
}

func reloadUser(t *testing.T, db *gorm.DB, id string) *models.User {
	t.Helper()
	var user models.User
	require.NoError(t, db.First(&user, "id = ?", id).Error)
	return &user
}

// at builds a wall-clock time in Moscow.
func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, moscow)
}

type testServices struct {
	db           *gorm.DB
	clock        *clockwork.FakeClock
	nutrition    *NutritionService
	badges       *BadgeService
	gamification *GamificationService
}

func newTestServices(t *testing.T, now time.Time) *testServices {
	db := setupTestDB(t)
	clock := clockwork.NewFakeClockAt(now)
	nutrition := NewNutritionService(db, moscow)
	badges := NewBadgeService(db)
	return &testServices{
		db:           db,
		clock:        clock,
		nutrition:    nutrition,
		badges:       badges,
		gamification: NewGamificationService(db, badges, nutrition, clock),
	}
}

// fakeGenerator returns a canned JSON response and records prompts.
type fakeGenerator struct {
	mu       sync.Mutex
	response string
	err      error
	calls    []CompletionRequest
}

func (f *fakeGenerator) GenerateJSON(_ context.Context, req CompletionRequest, out interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.response), out)
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type sentMessage struct {
	chatID int64
	text   string
}

// fakeMessenger records messages and fails for chat ids in failFor.
type fakeMessenger struct {
	mu      sync.Mutex
	sent    []sentMessage
	failFor map[int64]bool
}

func (f *fakeMessenger) Send(_ context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[chatID] {
		return fmt.Errorf("telegram: 403 Forbidden: bot was blocked by the user")
	}
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

func (f *fakeMessenger) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}
