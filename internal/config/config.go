package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from the environment
// (optionally seeded from a .env file). Every field has a sensible default;
// only DATABASE_URL is required.
type Config struct {
	// Server
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Logging
	LogLevel  string
	LogFormat string

	// Database
	DatabaseURL    string
	DBMaxConns     int32
	DBMinConns     int32
	MigrationsPath string

	// Redis run lock; empty address disables locking
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RunLockTTL    time.Duration

	// Expiry check
	TimeZone     string
	Location     *time.Location
	ScheduleAt   string
	ScheduleHour int
	ScheduleMin  int
	HorizonDays  int
	NotifyDays   []int
	MaxBodyItems int

	// Push delivery
	PushProvider       string
	PushRateLimit      int
	DispatchTimeout    time.Duration
	FCMCredentialsFile string
	VAPIDPublicKey     string
	VAPIDPrivateKey    string
	VAPIDSubscriber    string
	WebPushTTL         int
	AWSRegion          string
	ProviderBaseURL    string
	ProviderTimeout    time.Duration

	// Background cleanup of expired items
	CleanupInterval time.Duration
}

var providers = map[string]bool{"fcm": true, "webpush": true, "sns": true, "webhook": true}

func Load() (*Config, error) {
	// A missing .env is normal in containers.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	dbURL := v.GetString("DATABASE_URL")
	if dbURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	cfg := &Config{
		HTTPPort:        v.GetString("HTTP_PORT"),
		ReadTimeout:     v.GetDuration("READ_TIMEOUT"),
		WriteTimeout:    v.GetDuration("WRITE_TIMEOUT"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),

		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),

		DatabaseURL:    dbURL,
		DBMaxConns:     v.GetInt32("DB_MAX_CONNS"),
		DBMinConns:     v.GetInt32("DB_MIN_CONNS"),
		MigrationsPath: v.GetString("MIGRATIONS_PATH"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		RunLockTTL:    v.GetDuration("RUN_LOCK_TTL"),

		TimeZone:     v.GetString("EXPIRY_TIMEZONE"),
		ScheduleAt:   v.GetString("EXPIRY_SCHEDULE"),
		HorizonDays:  v.GetInt("EXPIRY_HORIZON_DAYS"),
		MaxBodyItems: v.GetInt("EXPIRY_MAX_BODY_ITEMS"),

		PushProvider:       strings.ToLower(v.GetString("PUSH_PROVIDER")),
		PushRateLimit:      v.GetInt("PUSH_RATE_LIMIT"),
		DispatchTimeout:    v.GetDuration("DISPATCH_TIMEOUT"),
		FCMCredentialsFile: v.GetString("FCM_CREDENTIALS_FILE"),
		VAPIDPublicKey:     v.GetString("VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey:    v.GetString("VAPID_PRIVATE_KEY"),
		VAPIDSubscriber:    v.GetString("VAPID_SUBSCRIBER"),
		WebPushTTL:         v.GetInt("WEBPUSH_TTL"),
		AWSRegion:          v.GetString("AWS_REGION"),
		ProviderBaseURL:    v.GetString("PROVIDER_BASE_URL"),
		ProviderTimeout:    v.GetDuration("PROVIDER_TIMEOUT"),

		CleanupInterval: v.GetDuration("CLEANUP_INTERVAL"),
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("EXPIRY_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	cfg.ScheduleHour, cfg.ScheduleMin, err = parseClock(cfg.ScheduleAt)
	if err != nil {
		return nil, fmt.Errorf("EXPIRY_SCHEDULE: %w", err)
	}

	cfg.NotifyDays, err = parseDays(v.GetString("EXPIRY_NOTIFY_DAYS"))
	if err != nil {
		return nil, fmt.Errorf("EXPIRY_NOTIFY_DAYS: %w", err)
	}
	for _, d := range cfg.NotifyDays {
		if d > cfg.HorizonDays {
			return nil, fmt.Errorf("EXPIRY_NOTIFY_DAYS: day %d is beyond the %d-day horizon", d, cfg.HorizonDays)
		}
	}

	if !providers[cfg.PushProvider] {
		return nil, fmt.Errorf("PUSH_PROVIDER: unknown provider %q", cfg.PushProvider)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("READ_TIMEOUT", 5*time.Second)
	v.SetDefault("WRITE_TIMEOUT", 10*time.Second)
	v.SetDefault("SHUTDOWN_TIMEOUT", 30*time.Second)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")

	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RUN_LOCK_TTL", 23*time.Hour)

	v.SetDefault("EXPIRY_TIMEZONE", "Asia/Kolkata")
	v.SetDefault("EXPIRY_SCHEDULE", "09:00")
	v.SetDefault("EXPIRY_HORIZON_DAYS", 7)
	v.SetDefault("EXPIRY_NOTIFY_DAYS", "0,1")
	v.SetDefault("EXPIRY_MAX_BODY_ITEMS", 3)

	v.SetDefault("PUSH_PROVIDER", "fcm")
	v.SetDefault("PUSH_RATE_LIMIT", 50)
	v.SetDefault("DISPATCH_TIMEOUT", 30*time.Second)
	v.SetDefault("VAPID_SUBSCRIBER", "mailto:admin@example.com")
	v.SetDefault("WEBPUSH_TTL", 3600)
	v.SetDefault("AWS_REGION", "ap-south-1")
	v.SetDefault("PROVIDER_TIMEOUT", 10*time.Second)

	v.SetDefault("CLEANUP_INTERVAL", time.Hour)
}

// parseClock parses a local wall-clock time in HH:MM form.
func parseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	return t.Hour(), t.Minute(), nil
}

// parseDays parses a comma-separated list of non-negative day offsets.
func parseDays(s string) ([]int, error) {
	var days []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid day offset %q", part)
		}
		days = append(days, n)
	}
	if len(days) == 0 {
		return nil, errors.New("at least one day offset is required")
	}
	return days, nil
}
