package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"GO_ENV"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`
	FrontendURL string `mapstructure:"FRONTEND_URL"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	// Telegram
	TelegramBotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	TelegramAPIURL   string `mapstructure:"TELEGRAM_API_URL"`

	// LLM (OpenAI-compatible chat completions endpoint)
	LLMBaseURL string `mapstructure:"LLM_BASE_URL"`
	LLMAPIKey  string `mapstructure:"LLM_API_KEY"`
	LLMModel   string `mapstructure:"LLM_MODEL"`

	// All day boundaries (stats, streaks, reminders, report cards) use this zone
	Timezone         string        `mapstructure:"APP_TIMEZONE"`
	ReminderInterval time.Duration `mapstructure:"REMINDER_INTERVAL"`
	RemindersEnabled bool          `mapstructure:"REMINDERS_ENABLED"`

	// R2 / S3 for meal photos
	R2AccountID       string `mapstructure:"R2_ACCOUNT_ID"`
	R2AccessKeyID     string `mapstructure:"R2_ACCESS_KEY_ID"`
	R2SecretAccessKey string `mapstructure:"R2_SECRET_ACCESS_KEY"`
	R2BucketName      string `mapstructure:"R2_BUCKET_NAME"`
	R2PublicURL       string `mapstructure:"R2_PUBLIC_URL"`
}

var AppConfig *Config

var envKeys = []string{
	"PORT", "GO_ENV", "DATABASE_URL", "JWT_SECRET", "FRONTEND_URL", "LOG_LEVEL",
	"REDIS_ADDR", "REDIS_PASSWORD",
	"TELEGRAM_BOT_TOKEN", "TELEGRAM_API_URL",
	"LLM_BASE_URL", "LLM_API_KEY", "LLM_MODEL",
	"APP_TIMEZONE", "REMINDER_INTERVAL", "REMINDERS_ENABLED",
	"R2_ACCOUNT_ID", "R2_ACCESS_KEY_ID", "R2_SECRET_ACCESS_KEY", "R2_BUCKET_NAME", "R2_PUBLIC_URL",
}

func LoadConfig() {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()
	viper.SetDefault("REMINDERS_ENABLED", true)

	// Unmarshal only sees keys viper already knows about
	for _, key := range envKeys {
		_ = viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Unable to decode config: %v", err)
	}

	ResolveDefaults(AppConfig)
}

// ResolveDefaults fills every unset value. It is the only place process-level
// defaults live.
func ResolveDefaults(cfg *Config) {
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = "localhost:6379"
	}
	if cfg.TelegramAPIURL == "" {
		cfg.TelegramAPIURL = "https://api.telegram.org"
	}
	if cfg.LLMBaseURL == "" {
		cfg.LLMBaseURL = "https://api.openai.com/v1"
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = "gpt-4o-mini"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Europe/Moscow"
	}
	if cfg.ReminderInterval <= 0 {
		cfg.ReminderInterval = 30 * time.Second
	}
}

// Location returns the reference timezone, falling back to UTC when the zone
// database does not know the configured name.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Unknown APP_TIMEZONE %q, using UTC", c.Timezone)
		return time.UTC
	}
	return loc
}
