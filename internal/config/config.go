// Package config loads application configuration from environment
// variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env       string // APP_ENV (e.g. "dev", "prod")
	Port      string // APP_PORT
	DBUser    string // DB_USER
	DBPass    string // DB_PASS (optional)
	DBHost    string // DB_HOST
	DBPort    string // DB_PORT
	DBName    string // DB_NAME
	JWTSecret string // JWT_SECRET

	AccessTTLMin int // ACCESS_TOKEN_TTL_MIN
	BcryptCost   int // BCRYPT_COST

	CORSAllowOrigins []string // CORS_ALLOW_ORIGINS, comma separated
	ForceHTTPS       bool     // FORCE_HTTPS
	GzipMinLength    int      // GZIP_MIN_LENGTH

	EventsEnabled bool   // EVENTS_ENABLED
	RabbitMQURL   string // RABBITMQ_URL, required when events are enabled
	AuditLogPath  string // AUDIT_LOG_PATH

	LogLevel       string // LOG_LEVEL
	LogFormat      string // LOG_FORMAT: "json" or "console"
	MigrateOnStart bool   // MIGRATE_ON_START
}

// AccessTTL returns the access token lifetime.
func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.AccessTTLMin) * time.Minute
}

// Load reads an optional .env file (existing variables win) and then builds
// a Config from the environment.  All missing or malformed variables are
// reported together.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var l loader
	cfg := Config{
		Env:       l.must("APP_ENV"),
		Port:      l.must("APP_PORT"),
		DBUser:    l.must("DB_USER"),
		DBPass:    os.Getenv("DB_PASS"),
		DBHost:    l.must("DB_HOST"),
		DBPort:    l.must("DB_PORT"),
		DBName:    l.must("DB_NAME"),
		JWTSecret: l.must("JWT_SECRET"),

		AccessTTLMin: l.intOr("ACCESS_TOKEN_TTL_MIN", 60),
		BcryptCost:   l.intOr("BCRYPT_COST", 10),

		CORSAllowOrigins: splitList(envOr("CORS_ALLOW_ORIGINS", "*")),
		ForceHTTPS:       l.boolOr("FORCE_HTTPS", false),
		GzipMinLength:    l.intOr("GZIP_MIN_LENGTH", 1000),

		EventsEnabled: l.boolOr("EVENTS_ENABLED", false),
		RabbitMQURL:   os.Getenv("RABBITMQ_URL"),
		AuditLogPath:  envOr("AUDIT_LOG_PATH", "logs/preferences.log"),

		LogLevel:       envOr("LOG_LEVEL", "info"),
		LogFormat:      envOr("LOG_FORMAT", "console"),
		MigrateOnStart: l.boolOr("MIGRATE_ON_START", true),
	}
	if cfg.EventsEnabled && cfg.RabbitMQURL == "" {
		l.errs = append(l.errs, errors.New("RABBITMQ_URL is required when EVENTS_ENABLED=true"))
	}
	if cfg.AccessTTLMin <= 0 {
		l.errs = append(l.errs, fmt.Errorf("ACCESS_TOKEN_TTL_MIN must be positive, got %d", cfg.AccessTTLMin))
	}
	if err := errors.Join(l.errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loader collects errors so every bad variable is reported at once.
type loader struct{ errs []error }

// must retrieves a required environment variable.
func (l *loader) must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		l.errs = append(l.errs, fmt.Errorf("missing required env var: %s", key))
	}
	return v
}

func (l *loader) intOr(key string, def int) int {
	s, ok := os.LookupEnv(key)
	if !ok || s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("invalid int for %s: %q", key, s))
		return def
	}
	return n
}

func (l *loader) boolOr(key string, def bool) bool {
	s, ok := os.LookupEnv(key)
	if !ok || s == "" {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("invalid bool for %s: %q", key, s))
		return def
	}
	return b
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
