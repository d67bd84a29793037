package database

import (
	"context"
	"log"
	"time"

	"github.com/kcalbot/kcalbot-backend/internal/config"
	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client

func InitRedis() {
	Redis = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := Redis.Ping(ctx).Result(); err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Reminder de-duplication falls back to memory.", err)
		Redis = nil
	} else {
		log.Println("Connected to Redis successfully")
	}
}

// RedisStatus is used by the health check.
func RedisStatus(ctx context.Context) string {
	if Redis == nil {
		return "not configured"
	}
	if _, err := Redis.Ping(ctx).Result(); err != nil {
		return "error"
	}
	return "ok"
}
