package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"github.com/kcalbot/kcalbot-backend/internal/models"
	"github.com/kcalbot/kcalbot-backend/pkg/logger"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const reminderClaimTTL = 24 * time.Hour

// reminderSlot maps a category to its reminder_<column>_enabled and
// reminder_<column>_time columns. Meal slots carry their [fromHour, toHour)
// window.
type reminderSlot struct {
	category models.ReminderCategory
	column   string
	fromHour int
	toHour   int
	weekly   bool
	mealSlot bool
}

var reminderSlots = []reminderSlot{
	{category: models.ReminderBreakfast, column: "breakfast", fromHour: 5, toHour: 11, mealSlot: true},
	{category: models.ReminderLunch, column: "lunch", fromHour: 11, toHour: 16, mealSlot: true},
	{category: models.ReminderDinner, column: "dinner", fromHour: 16, toHour: 22, mealSlot: true},
	{category: models.ReminderStreakRisk, column: "streak"},
	{category: models.ReminderWeighIn, column: "weigh_in", weekly: true},
	{category: models.ReminderReport, column: "report"},
}

// TickReport summarises one scheduler tick.
type TickReport struct {
	Minute     string `json:"minute"`
	Skipped    bool   `json:"skipped"`
	Sent       int    `json:"sent"`
	Suppressed int    `json:"suppressed"`
	Duplicates int    `json:"duplicates"`
	Failed     int    `json:"failed"`
}

// ReminderScheduler polls on a fixed interval and sends the reminders whose
// configured time equals the current minute in the reference timezone.
type ReminderScheduler struct {
	db        *gorm.DB
	nutrition *NutritionService
	messenger Messenger
	ledger    ReminderLedger
	clock     clockwork.Clock
	loc       *time.Location
	interval  time.Duration
	log       zerolog.Logger

	mu         sync.Mutex
	lastMinute string
	scheduler  gocron.Scheduler
}

func NewReminderScheduler(db *gorm.DB, nutrition *NutritionService, messenger Messenger, ledger ReminderLedger, clock clockwork.Clock, interval time.Duration) *ReminderScheduler {
	return &ReminderScheduler{
		db:        db,
		nutrition: nutrition,
		messenger: messenger,
		ledger:    ledger,
		clock:     clock,
		loc:       nutrition.Location(),
		interval:  interval,
		log:       logger.Component("reminders"),
	}
}

// Start registers the polling job and starts the scheduler.
func (s *ReminderScheduler) Start() error {
	sched, err := gocron.NewScheduler(
		gocron.WithClock(s.clock),
		gocron.WithLocation(s.loc),
	)
	if err != nil {
		return err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), s.interval)
			defer cancel()
			report := s.Tick(ctx)
			if !report.Skipped && (report.Sent > 0 || report.Failed > 0) {
				s.log.Info().
					Str("minute", report.Minute).
					Int("sent", report.Sent).
					Int("suppressed", report.Suppressed).
					Int("failed", report.Failed).
					Msg("Reminder tick")
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("reminders"),
	)
	if err != nil {
		return err
	}

	sched.Start()
	s.scheduler = sched
	s.log.Info().Dur("interval", s.interval).Str("timezone", s.loc.String()).Msg("Reminder scheduler started")
	return nil
}

func (s *ReminderScheduler) Stop() error {
	if s.scheduler == nil {
		return nil
	}
	return s.scheduler.Shutdown()
}

// Tick processes the current minute once. Later ticks inside the same minute
// return a skipped report.
func (s *ReminderScheduler) Tick(ctx context.Context) TickReport {
	now := s.clock.Now().In(s.loc)
	minute := now.Format(minuteLayout)
	report := TickReport{Minute: minute}

	s.mu.Lock()
	if s.lastMinute == minute {
		s.mu.Unlock()
		report.Skipped = true
		return report
	}
	s.lastMinute = minute
	s.mu.Unlock()

	hhmm := now.Format(clockLayout)
	for _, slot := range reminderSlots {
		s.processSlot(ctx, slot, now, hhmm, minute, &report)
	}
	return report
}

func (s *ReminderScheduler) processSlot(ctx context.Context, slot reminderSlot, now time.Time, hhmm, minute string, report *TickReport) {
	query := s.db.WithContext(ctx).
		Where(fmt.Sprintf("reminder_%s_enabled = ? AND reminder_%s_time = ?", slot.column, slot.column), true, hhmm)
	if slot.weekly {
		query = query.Where("reminder_weigh_in_day = ?", int(now.Weekday()))
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		s.log.Error().Err(err).Str("category", string(slot.category)).Msg("Reminder query failed")
		return
	}

	for i := range users {
		user := &users[i]

		suppress, err := s.suppressed(ctx, slot, user, now)
		if err != nil {
			s.log.Error().Err(err).Str("user_id", user.ID).Str("category", string(slot.category)).Msg("Reminder suppression check failed")
			report.Failed++
			continue
		}
		if suppress {
			report.Suppressed++
			continue
		}

		claimed, err := s.ledger.Claim(ctx, ReminderKey(user.ID, slot.category, minute), reminderClaimTTL)
		if err != nil {
			s.log.Error().Err(err).Str("user_id", user.ID).Msg("Reminder ledger unavailable")
			report.Failed++
			continue
		}
		if !claimed {
			report.Duplicates++
			continue
		}

		if err := s.messenger.Send(ctx, user.TelegramID, ReminderText(slot.category, user)); err != nil {
			s.log.Warn().Err(err).
				Str("user_id", user.ID).
				Int64("telegram_id", user.TelegramID).
				Str("category", string(slot.category)).
				Msg("Reminder dispatch failed")
			report.Failed++
			continue
		}

		if err := s.db.WithContext(ctx).Create(&models.ReminderDelivery{
			UserID:   user.ID,
			Category: slot.category,
			Minute:   minute,
			SentAt:   now.UTC(),
		}).Error; err != nil {
			s.log.Warn().Err(err).Str("user_id", user.ID).Msg("Failed to record reminder delivery")
		}
		report.Sent++
	}
}

func (s *ReminderScheduler) suppressed(ctx context.Context, slot reminderSlot, user *models.User, now time.Time) (bool, error) {
	today := StartOfDay(now, s.loc)

	switch {
	case slot.mealSlot:
		from := today.Add(time.Duration(slot.fromHour) * time.Hour)
		to := today.Add(time.Duration(slot.toHour) * time.Hour)
		return s.nutrition.HasConfirmedMealBetween(ctx, user.ID, from, to)

	case slot.category == models.ReminderStreakRisk:
		if user.CurrentStreak == 0 {
			return true, nil
		}
		return s.nutrition.HasConfirmedMealBetween(ctx, user.ID, today, today.AddDate(0, 0, 1))

	case slot.category == models.ReminderReport:
		logged, err := s.nutrition.HasConfirmedMealBetween(ctx, user.ID, today, today.AddDate(0, 0, 1))
		return !logged, err
	}
	return false, nil
}
