package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Ledger backends selectable via LEDGER_BACKEND.
const (
	LedgerBackendPostgres = "postgres"
	LedgerBackendRedis    = "redis"
)

// AppConfig holds all configuration for the notifier binaries.
type AppConfig struct {
	// Ledger storage
	LedgerBackend string
	DatabaseURL   string
	RedisAddr     string

	// Appointment registry API
	RegistryBaseURL  string
	RegistryUser     string
	RegistryPass     string
	RegistryClinicID string

	// Message provider
	SenderAPIURL       string
	SenderAuth         string
	SenderProvider     string // generic, evolution, whatsapp_cloud
	DefaultCountryCode string
	SendAttempts       int
	SendRetryDelay     time.Duration

	// Cycle tuning
	IntervalMin        int
	DaysAhead          int
	ReminderLeadDays   int
	BlockedExecutorIDs []int64

	// Webhook receiver
	WebhookPort        int
	WebhookVerifyToken string

	LogLevel    string
	Environment string
}

// Load reads configuration from environment variables and .env file (if
// present). godotenv.Load will not override variables already set.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.LedgerBackend = strings.ToLower(os.Getenv("LEDGER_BACKEND"))
	if cfg.LedgerBackend == "" {
		cfg.LedgerBackend = LedgerBackendPostgres
	}
	switch cfg.LedgerBackend {
	case LedgerBackendPostgres:
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is not set")
		}
	case LedgerBackendRedis:
		cfg.RedisAddr = os.Getenv("REDIS_ADDR")
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is not set")
		}
	default:
		return nil, fmt.Errorf("unknown LEDGER_BACKEND: %q", cfg.LedgerBackend)
	}

	cfg.RegistryBaseURL = strings.TrimRight(os.Getenv("API_BASE"), "/")
	if cfg.RegistryBaseURL == "" {
		return nil, fmt.Errorf("API_BASE is not set")
	}
	cfg.RegistryUser = os.Getenv("API_USER")
	if cfg.RegistryUser == "" {
		return nil, fmt.Errorf("API_USER is not set")
	}
	cfg.RegistryPass = os.Getenv("API_PASS")
	if cfg.RegistryPass == "" {
		return nil, fmt.Errorf("API_PASS is not set")
	}
	cfg.RegistryClinicID = os.Getenv("CLINICA_CID")
	if cfg.RegistryClinicID == "" {
		return nil, fmt.Errorf("CLINICA_CID is not set")
	}

	cfg.SenderAPIURL = os.Getenv("SENDER_API_URL")
	if cfg.SenderAPIURL == "" {
		return nil, fmt.Errorf("SENDER_API_URL is not set")
	}
	cfg.SenderAuth = os.Getenv("SENDER_AUTH")
	cfg.SenderProvider = strings.ToLower(os.Getenv("SENDER_PROVIDER"))
	if cfg.SenderProvider == "" {
		cfg.SenderProvider = "generic"
	}
	cfg.DefaultCountryCode = os.Getenv("DEFAULT_COUNTRY_CODE")
	if cfg.DefaultCountryCode == "" {
		cfg.DefaultCountryCode = "55" // Brazil
	}

	if cfg.SendAttempts, err = intEnv("SEND_ATTEMPTS", 3); err != nil {
		return nil, err
	}
	retrySec, err := intEnv("SEND_RETRY_DELAY_SEC", 5)
	if err != nil {
		return nil, err
	}
	cfg.SendRetryDelay = time.Duration(retrySec) * time.Second

	if cfg.IntervalMin, err = intEnv("INTERVAL_MIN", 5); err != nil {
		return nil, err
	}
	if cfg.DaysAhead, err = intEnv("DAYS_AHEAD", 60); err != nil {
		return nil, err
	}
	if cfg.ReminderLeadDays, err = intEnv("REMINDER_LEAD_DAYS", 1); err != nil {
		return nil, err
	}

	cfg.BlockedExecutorIDs, err = idListEnv("BLOCKED_EXECUTOR_IDS")
	if err != nil {
		return nil, err
	}

	if cfg.WebhookPort, err = intEnv("WEBHOOK_PORT", 5000); err != nil {
		return nil, err
	}
	cfg.WebhookVerifyToken = os.Getenv("WEBHOOK_VERIFY_TOKEN")

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	return cfg, nil
}

func intEnv(name string, def int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return v, nil
}

func idListEnv(name string) ([]int64, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s entry %q: %w", name, p, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
