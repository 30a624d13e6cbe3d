// Package config loads runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Reminder delivery strategies. See internal/reminder for the two
// implementations.
const (
	ModeSweep = "sweep" // periodic scan of due entries (default)
	ModeTimer = "timer" // one in-process timer per entry
)

type Config struct {
	Port   int    // HTTP listen port
	DBPath string // SQLite database file

	ReminderMode  string        // ModeSweep or ModeTimer
	SweepInterval time.Duration // how often the internal sweep ticker fires; 0 disables it
	SendTimeout   time.Duration // upper bound on a single notification delivery
	CronSecret    string        // shared secret for the external cron trigger endpoint

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string // From address on reminder emails
}

// Load reads configuration. A missing .env file is not an error — in
// production everything comes from real environment variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables or defaults")
	}

	mode := getEnv("REMINDER_MODE", ModeSweep)
	if mode != ModeSweep && mode != ModeTimer {
		log.Printf("unknown REMINDER_MODE %q, falling back to %q", mode, ModeSweep)
		mode = ModeSweep
	}

	return &Config{
		Port:          getEnvInt("PORT", 8080),
		DBPath:        getEnv("DB_PATH", "data/plantcare.db"),
		ReminderMode:  mode,
		SweepInterval: getEnvDuration("SWEEP_INTERVAL", time.Hour),
		SendTimeout:   getEnvDuration("SEND_TIMEOUT", 15*time.Second),
		CronSecret:    getEnv("CRON_SECRET", ""),
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnvInt("SMTP_PORT", 587),
		SMTPUser:      getEnv("SMTP_USER", ""),
		SMTPPass:      getEnv("SMTP_PASS", ""),
		MailFrom:      getEnv("MAIL_FROM", "PlantCare <noreply@plantcare.local>"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
