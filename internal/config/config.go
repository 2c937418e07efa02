package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration for the application.
type Config struct {
	DatabasePath   string
	LogLevel       string
	LogDevelopment bool

	// Page fetching
	HTTPTimeout   time.Duration
	HTTPUserAgent string
	RedisAddr     string
	PageCacheTTL  time.Duration

	DefaultMealCount int

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	Port                   string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database_path", "data/meal-planner.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_development", false)
	v.SetDefault("http_timeout", "15s")
	v.SetDefault("http_user_agent", "Mozilla/5.0 (compatible; meal-planner/1.0)")
	v.SetDefault("redis_addr", "")
	v.SetDefault("page_cache_ttl", "24h")
	v.SetDefault("default_meal_count", 5)
	v.SetDefault("telegram_bot_token", "")
	v.SetDefault("telegram_webhook_url", "")
	v.SetDefault("telegram_allowed_user_ids", "")
	v.SetDefault("port", "8080")
}

// NewFromEnv creates a new Config object from environment variables. A .env
// file in the working directory is loaded first when present.
func NewFromEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	allowed, err := parseUserIDs(v.GetString("telegram_allowed_user_ids"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabasePath:           v.GetString("database_path"),
		LogLevel:               v.GetString("log_level"),
		LogDevelopment:         v.GetBool("log_development"),
		HTTPTimeout:            v.GetDuration("http_timeout"),
		HTTPUserAgent:          v.GetString("http_user_agent"),
		RedisAddr:              v.GetString("redis_addr"),
		PageCacheTTL:           v.GetDuration("page_cache_ttl"),
		DefaultMealCount:       v.GetInt("default_meal_count"),
		TelegramBotToken:       v.GetString("telegram_bot_token"),
		TelegramWebhookURL:     v.GetString("telegram_webhook_url"),
		TelegramAllowedUserIDs: allowed,
		Port:                   v.GetString("port"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH environment variable not set")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be a positive duration")
	}
	if c.DefaultMealCount <= 0 {
		return fmt.Errorf("DEFAULT_MEAL_COUNT must be positive, got %d", c.DefaultMealCount)
	}
	return nil
}

// ValidateTelegram checks the variables only the Telegram bot needs.
func (c *Config) ValidateTelegram() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	if c.TelegramWebhookURL == "" {
		return fmt.Errorf("TELEGRAM_WEBHOOK_URL environment variable not set")
	}
	if len(c.TelegramAllowedUserIDs) == 0 {
		return fmt.Errorf("TELEGRAM_ALLOWED_USER_IDS environment variable not set")
	}
	return nil
}

func parseUserIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS entry %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
