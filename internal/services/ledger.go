package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/kcalbot/kcalbot-backend/internal/models"
	"github.com/redis/go-redis/v9"
)

// ReminderLedger records which (user, category, minute) reminders were
// claimed. Claim returns true only for the first caller of a key.
type ReminderLedger interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// ReminderKey is the idempotency key of one reminder occurrence.
func ReminderKey(userID string, category models.ReminderCategory, minute string) string {
	return fmt.Sprintf("reminder:%s:%s:%s", userID, category, minute)
}

// RedisReminderLedger keeps claims in Redis so they survive restarts and are
// shared between instances.
type RedisReminderLedger struct {
	client *redis.Client
}

func NewRedisReminderLedger(client *redis.Client) *RedisReminderLedger {
	return &RedisReminderLedger{client: client}
}

func (l *RedisReminderLedger) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, key, time.Now().Unix(), ttl).Result()
}

// MemoryReminderLedger is the single-process fallback used when Redis is
// unavailable, and in tests.
type MemoryReminderLedger struct {
	claims *TTLCache[string, struct{}]
}

func NewMemoryReminderLedger(clock clockwork.Clock, ttl time.Duration) *MemoryReminderLedger {
	return &MemoryReminderLedger{claims: NewTTLCache[string, struct{}](clock, ttl)}
}

func (l *MemoryReminderLedger) Claim(_ context.Context, key string, _ time.Duration) (bool, error) {
	return l.claims.SetIfAbsent(key, struct{}{}), nil
}
