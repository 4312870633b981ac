package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreBackendPostgres = "postgres"
	StoreBackendSheets   = "sheets"
	StoreBackendMemory   = "memory"
)

// Config aggregates runtime configuration for the bot. Loaded once at
// process start; never reloaded.
type Config struct {
	App      AppConfig
	Bot      BotConfig
	Store    StoreConfig
	Postgres PostgresConfig
	Sheets   SheetsConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Notify   NotifyConfig
	Session  SessionConfig
}

// AppConfig controls the ops HTTP surface.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// BotConfig holds chat platform credentials and identity lists.
type BotConfig struct {
	Token              string
	OperatorIDs        []int64
	Timezone           string
	PollTimeoutSeconds int
	DropPending        bool
}

// StoreConfig selects the record store backend.
type StoreConfig struct {
	Backend string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// SheetsConfig holds Google Sheets record store values.
type SheetsConfig struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// RedisConfig holds Redis connection values. Leave Addr empty to run
// without Redis; the inbound dedupe guard then falls back to a local
// cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// NotifyConfig bounds the operator fan-out retry loop.
type NotifyConfig struct {
	MaxAttempts       int
	RetryDelaySeconds int
}

// SessionConfig tunes the optional idle-session sweep. A zero IdleTTL
// disables the sweeper entirely.
type SessionConfig struct {
	SweepIntervalSeconds int
	IdleTTLMinutes       int
}

// Load reads configuration from environment variables, applying
// defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}

	operatorIDs, err := parseIDList(os.Getenv("OPERATOR_IDS"))
	if err != nil {
		return nil, fmt.Errorf("invalid OPERATOR_IDS: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	backend := getEnv("STORE_BACKEND", StoreBackendPostgres)
	switch backend {
	case StoreBackendPostgres, StoreBackendSheets, StoreBackendMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", backend)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "pengaduan-bot"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 10),
		},
		Bot: BotConfig{
			Token:              token,
			OperatorIDs:        operatorIDs,
			Timezone:           getEnv("BOT_TIMEZONE", "Asia/Jakarta"),
			PollTimeoutSeconds: getEnvAsInt("BOT_POLL_TIMEOUT_SECONDS", 30),
			DropPending:        getEnvAsBool("BOT_DROP_PENDING_UPDATES", true),
		},
		Store: StoreConfig{
			Backend: backend,
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Sheets: SheetsConfig{
			SpreadsheetID:   os.Getenv("SHEETS_SPREADSHEET_ID"),
			SheetName:       getEnv("SHEETS_SHEET_NAME", "Sheet1"),
			CredentialsJSON: os.Getenv("GOOGLE_CREDENTIALS"),
			CredentialsFile: os.Getenv("GOOGLE_CREDENTIALS_FILE"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Notify: NotifyConfig{
			MaxAttempts:       getEnvAsInt("NOTIFY_MAX_ATTEMPTS", 3),
			RetryDelaySeconds: getEnvAsInt("NOTIFY_RETRY_DELAY_SECONDS", 2),
		},
		Session: SessionConfig{
			SweepIntervalSeconds: getEnvAsInt("SESSION_SWEEP_INTERVAL_SECONDS", 600),
			IdleTTLMinutes:       getEnvAsInt("SESSION_IDLE_TTL_MINUTES", 0),
		},
	}

	return cfg, nil
}

// Addr returns the ops HTTP bind address.
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

// RetryDelay returns the inter-attempt delay for the notifier.
func (n NotifyConfig) RetryDelay() time.Duration {
	return time.Duration(n.RetryDelaySeconds) * time.Second
}

// SweepInterval returns the idle sweep cadence.
func (s SessionConfig) SweepInterval() time.Duration {
	return time.Duration(s.SweepIntervalSeconds) * time.Second
}

// IdleTTL returns how long a session may stay untouched before the
// sweeper reclaims it. Zero disables sweeping.
func (s SessionConfig) IdleTTL() time.Duration {
	return time.Duration(s.IdleTTLMinutes) * time.Minute
}

func parseIDList(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
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
