package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config keeps runtime settings for the tracker.
type Config struct {
	DatabaseURL      string
	HTTPAddr         string
	TemplatesFile    string
	TelegramToken    string
	ReminderInterval time.Duration
	ReminderTime     string
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		HTTPAddr:         strings.TrimSpace(os.Getenv("HTTP_ADDR")),
		TemplatesFile:    strings.TrimSpace(os.Getenv("TEMPLATES_FILE")),
		TelegramToken:    strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		ReminderInterval: parseInterval(strings.TrimSpace(os.Getenv("REMINDER_INTERVAL_HOURS"))),
		ReminderTime:     strings.TrimSpace(os.Getenv("REMINDER_TIME")),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "compliance_tracker.db"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.ReminderInterval == 0 && cfg.ReminderTime == "" {
		cfg.ReminderInterval = 24 * time.Hour
	}
	if cfg.ReminderTime != "" && len(strings.Split(cfg.ReminderTime, ":")) != 2 {
		return cfg, fmt.Errorf("REMINDER_TIME must be HH:MM, got %q", cfg.ReminderTime)
	}

	return cfg, nil
}

func parseInterval(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}
