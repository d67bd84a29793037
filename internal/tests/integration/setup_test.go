package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/kcalbot/kcalbot-backend/internal/config"
	"github.com/kcalbot/kcalbot-backend/internal/handlers"
	"github.com/kcalbot/kcalbot-backend/internal/migrations"
	"github.com/kcalbot/kcalbot-backend/internal/routes"
	"github.com/kcalbot/kcalbot-backend/internal/services"
	"github.com/kcalbot/kcalbot-backend/pkg/utils"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testBotToken = "123456:TEST-BOT-TOKEN"

var clientSeq atomic.Int32

// scriptedGenerator answers meal analysis and report card prompts with
// canned JSON.
type scriptedGenerator struct {
	mu     sync.Mutex
	meal   string
	report string
	calls  int
}

func (g *scriptedGenerator) GenerateJSON(_ context.Context, req services.CompletionRequest, out interface{}) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if strings.Contains(req.User, "Daily goal:") {
		return json.Unmarshal([]byte(g.report), out)
	}
	return json.Unmarshal([]byte(g.meal), out)
}

type staticHealth struct{}

func (staticHealth) DatabaseStatus() string { return "ok" }
func (staticHealth) RedisStatus() string    { return "ok" }

type testEnv struct {
	db        *gorm.DB
	clock     *clockwork.FakeClock
	generator *scriptedGenerator
	router    *gin.Engine
	clientIP  string
}

func setupTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	prev := config.AppConfig
	config.AppConfig = &config.Config{JWTSecret: "test_secret_key_12345"}
	t.Cleanup(func() { config.AppConfig = prev })

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	require.NoError(t, migrations.AutoMigrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)

	clock := clockwork.NewFakeClockAt(now)
	generator := &scriptedGenerator{
		meal:   `{"name":"Chicken with rice","items":[{"name":"Chicken breast","grams":150,"calories":250,"protein":46,"carbs":0,"fat":5},{"name":"Rice","grams":200,"calories":260,"protein":5,"carbs":56,"fat":1}]}`,
		report: `{"grade":"C","calorieStatus":"Well under goal","macroStatus":"High protein","highlights":["Protein"],"improvements":["Eat more"],"tomorrowTip":"Add a snack","streakMessage":"Day one!"}`,
	}

	nutrition := services.NewNutritionService(db, loc)
	badges := services.NewBadgeService(db)
	gamification := services.NewGamificationService(db, badges, nutrition, clock)

	h := &handlers.Handler{
		DB:           db,
		Users:        services.NewUserService(db, gamification, clock),
		Meals:        services.NewMealService(db, gamification, generator, clock, loc),
		Nutrition:    nutrition,
		Gamification: gamification,
		Badges:       badges,
		Leaderboard:  services.NewLeaderboardService(db, clock, services.NewTTLCache[string, []services.LeaderboardEntry](clock, services.LeaderboardTTL)),
		Reports:      services.NewReportCardService(db, nutrition, generator, clock),
		Social:       services.NewSocialService(db, badges, clock),
		Health:       staticHealth{},
		Clock:        clock,
		BotToken:     testBotToken,
		InitDataTTL:  24 * time.Hour,
	}

	seq := clientSeq.Add(1)
	return &testEnv{
		db:        db,
		clock:     clock,
		generator: generator,
		router:    routes.Setup(h, "http://localhost:5173"),
		clientIP:  fmt.Sprintf("10.0.%d.%d", seq/250, seq%250+1),
	}
}

func (e *testEnv) performRequest(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = e.clientIP + ":40000"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// initData builds a WebApp initData string signed with the test bot token.
func (e *testEnv) initData(telegramID int64, firstName string) string {
	user, _ := json.Marshal(map[string]interface{}{
		"id":            telegramID,
		"first_name":    firstName,
		"username":      strings.ToLower(firstName),
		"language_code": "en",
	})
	values := url.Values{}
	values.Set("auth_date", strconv.FormatInt(e.clock.Now().Unix(), 10))
	values.Set("user", string(user))
	values.Set("hash", utils.SignInitData(values, testBotToken))
	return values.Encode()
}

// login authenticates through /api/auth/telegram and returns the token and
// user id.
func (e *testEnv) login(t *testing.T, telegramID int64, firstName string) (string, string) {
	t.Helper()
	w := e.performRequest(http.MethodPost, "/api/auth/telegram", map[string]string{
		"initData": e.initData(telegramID, firstName),
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token, resp.User.ID
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}
