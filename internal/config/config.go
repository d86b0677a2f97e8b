package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	SLA          SLAConfig
	Scheduler    SchedulerConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// SLAConfig holds the priority→duration table and workflow timing rules.
// The table is fixed for the lifetime of the process; the High window is
// 12h in the reference profile and 24h in some deployments.
type SLAConfig struct {
	CriticalHours          int
	HighHours              int
	MediumHours            int
	LowHours               int
	ApproachThreshold      float64
	ReminderWindowHours    int
	ReopenWindowDays       int
	CriticalEscalationPct  float64
	HighEscalationPct      float64
	RecurrenceWindowDays   int
	RecurrenceMinimumCount int
}

// SchedulerConfig controls periodic sweep cadences.
type SchedulerConfig struct {
	Enabled                 bool
	SLASweepMinutes         int
	ReminderSweepMinutes    int
	EscalationSweepMinutes  int
	MaintenanceSweepMinutes int
}

// NotificationConfig configures the intent sink.
type NotificationConfig struct {
	Channel string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "complaint-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		SLA: SLAConfig{
			CriticalHours:          getEnvAsInt("SLA_CRITICAL_HOURS", 4),
			HighHours:              getEnvAsInt("SLA_HIGH_HOURS", 12),
			MediumHours:            getEnvAsInt("SLA_MEDIUM_HOURS", 24),
			LowHours:               getEnvAsInt("SLA_LOW_HOURS", 48),
			ApproachThreshold:      getEnvAsFloat("SLA_APPROACH_THRESHOLD", 0.75),
			ReminderWindowHours:    getEnvAsInt("SLA_REMINDER_WINDOW_HOURS", 2),
			ReopenWindowDays:       getEnvAsInt("REOPEN_WINDOW_DAYS", 7),
			CriticalEscalationPct:  getEnvAsFloat("ESCALATION_CRITICAL_PCT", 0.5),
			HighEscalationPct:      getEnvAsFloat("ESCALATION_HIGH_PCT", 0.75),
			RecurrenceWindowDays:   getEnvAsInt("RECURRENCE_WINDOW_DAYS", 30),
			RecurrenceMinimumCount: getEnvAsInt("RECURRENCE_MIN_COUNT", 3),
		},
		Scheduler: SchedulerConfig{
			Enabled:                 getEnvAsBool("SCHEDULER_ENABLED", true),
			SLASweepMinutes:         getEnvAsInt("SWEEP_SLA_MINUTES", 60),
			ReminderSweepMinutes:    getEnvAsInt("SWEEP_REMINDER_MINUTES", 30),
			EscalationSweepMinutes:  getEnvAsInt("SWEEP_ESCALATION_MINUTES", 60),
			MaintenanceSweepMinutes: getEnvAsInt("SWEEP_MAINTENANCE_MINUTES", 1440),
		},
		Notification: NotificationConfig{
			Channel: getEnv("NOTIFY_CHANNEL", "complaint-notifications"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// ReopenWindow returns the reopen window as a duration.
func (s SLAConfig) ReopenWindow() time.Duration {
	days := s.ReopenWindowDays
	if days <= 0 {
		days = 7
	}
	return time.Duration(days) * 24 * time.Hour
}

// ReminderWindow returns the look-ahead window for deadline reminders.
func (s SLAConfig) ReminderWindow() time.Duration {
	hours := s.ReminderWindowHours
	if hours <= 0 {
		hours = 2
	}
	return time.Duration(hours) * time.Hour
}

// RecurrenceWindow returns the look-back window for recurrence detection.
func (s SLAConfig) RecurrenceWindow() time.Duration {
	days := s.RecurrenceWindowDays
	if days <= 0 {
		days = 30
	}
	return time.Duration(days) * 24 * time.Hour
}

func sweepInterval(minutes, fallback int) time.Duration {
	if minutes <= 0 {
		minutes = fallback
	}
	return time.Duration(minutes) * time.Minute
}

// SLASweepInterval returns the overdue-flagging sweep cadence.
func (s SchedulerConfig) SLASweepInterval() time.Duration {
	return sweepInterval(s.SLASweepMinutes, 60)
}

// ReminderSweepInterval returns the reminder sweep cadence.
func (s SchedulerConfig) ReminderSweepInterval() time.Duration {
	return sweepInterval(s.ReminderSweepMinutes, 30)
}

// EscalationSweepInterval returns the escalation sweep cadence.
func (s SchedulerConfig) EscalationSweepInterval() time.Duration {
	return sweepInterval(s.EscalationSweepMinutes, 60)
}

// MaintenanceSweepInterval returns the daily maintenance cadence.
func (s SchedulerConfig) MaintenanceSweepInterval() time.Duration {
	return sweepInterval(s.MaintenanceSweepMinutes, 1440)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
