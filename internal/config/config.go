package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv string

	HTTPAddr      string
	DatabaseURL   string
	DBAutoMigrate bool

	JWTSecret string
	JWTIssuer string

	// RabbitMQ
	RabbitURL      string
	RabbitExchange string

	// Redis & Caching
	RedisURL        string
	CacheTTLDetails time.Duration
	CacheTTLList    time.Duration

	// Object storage (event images)
	S3Endpoint        string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3UsePathStyle    bool
	S3PublicBucket    string
	S3PublicBaseURL   string
	MaxImageBytes     int64

	// Catalog
	CatalogTimezone string

	// Favorites
	ToggleTimeout time.Duration
	SessionTTL    time.Duration

	// Maintenance
	AuditCron string

	// Rate Limiting
	RLEnabled bool
	RLLimit   int
	RLWindow  time.Duration

	LogLevel  string
	LogFormat string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.AppEnv = getEnv("APP_ENV", "dev")
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")
	cfg.DatabaseURL = getEnv("DATABASE_URL", "")
	cfg.DBAutoMigrate = getBool("DB_AUTO_MIGRATE", cfg.AppEnv == "dev")

	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.JWTIssuer = getEnv("JWT_ISSUER", "")

	cfg.RabbitURL = firstNonEmpty(
		strings.TrimSpace(os.Getenv("RABBITMQ_URL")),
		strings.TrimSpace(os.Getenv("RABBIT_URL")),
	)
	cfg.RabbitExchange = getEnv("RABBIT_EXCHANGE", "city.events")

	cfg.RedisURL = getEnv("REDIS_URL", "")
	cfg.CacheTTLDetails = getDuration("CACHE_TTL_DETAILS", 5*time.Minute)
	cfg.CacheTTLList = getDuration("CACHE_TTL_LIST", 15*time.Second)

	cfg.S3Endpoint = getEnv("S3_ENDPOINT", "")
	cfg.S3Region = getEnv("S3_REGION", "us-east-1")
	cfg.S3AccessKeyID = getEnv("S3_ACCESS_KEY_ID", "")
	cfg.S3SecretAccessKey = getEnv("S3_SECRET_ACCESS_KEY", "")
	cfg.S3UsePathStyle = getBool("S3_USE_PATH_STYLE", true)
	cfg.S3PublicBucket = getEnv("S3_PUBLIC_BUCKET", "event-images")
	cfg.S3PublicBaseURL = getEnv("S3_PUBLIC_BASE_URL", "")
	cfg.MaxImageBytes = int64(getInt("MAX_IMAGE_BYTES", 10<<20))

	cfg.CatalogTimezone = getEnv("CATALOG_TIMEZONE", "UTC")

	cfg.ToggleTimeout = getDuration("TOGGLE_TIMEOUT", 10*time.Second)
	cfg.SessionTTL = getDuration("SESSION_TTL", 30*time.Minute)

	cfg.AuditCron = getEnv("AUDIT_CRON", "@every 1h")

	// Rate Limiting Defaults: 100 reqs / 1 min
	cfg.RLEnabled = getBool("RL_ENABLED", true)
	cfg.RLLimit = getInt("RL_IP_LIMIT", 100)
	cfg.RLWindow = getDuration("RL_IP_WINDOW", 1*time.Minute)

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "console")

	cfg.HTTPReadTimeout = getDuration("HTTP_READ_TIMEOUT", 10*time.Second)
	cfg.HTTPWriteTimeout = getDuration("HTTP_WRITE_TIMEOUT", 20*time.Second)
	cfg.HTTPIdleTimeout = getDuration("HTTP_IDLE_TIMEOUT", 60*time.Second)

	// validation
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing JWT_SECRET")
	}
	// dev may run on in-memory stores; everything else needs postgres
	if cfg.AppEnv != "dev" && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("missing DATABASE_URL (required when APP_ENV != dev)")
	}
	if _, err := time.LoadLocation(cfg.CatalogTimezone); err != nil {
		return nil, fmt.Errorf("invalid CATALOG_TIMEZONE %q: %w", cfg.CatalogTimezone, err)
	}
	if cfg.ToggleTimeout <= 0 {
		return nil, fmt.Errorf("TOGGLE_TIMEOUT must be positive")
	}

	return cfg, nil
}

// S3Enabled reports whether image uploads can be stored.
func (c *Config) S3Enabled() bool {
	return c.S3Endpoint != "" && c.S3AccessKeyID != "" && c.S3SecretAccessKey != ""
}

// Location returns the catalog timezone. Load already validated it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.CatalogTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getBool(k string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
