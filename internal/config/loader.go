package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/example/internship-portal/internal/logging"
)

// Storage drivers accepted in PORTAL_STORAGE_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Config captures environment driven configuration values for the portal.
type Config struct {
	HTTPPort        int
	StorageDriver   string
	SQLiteDSN       string
	PostgresDSN     string
	SessionSecret   string
	SessionTimeout  time.Duration
	RememberTimeout time.Duration
	MonitorInterval time.Duration
	LoginDelay      time.Duration
	ProtectedPages  []string
	CatalogPath     string
	NATSURL         string
	LogLevel        slog.Level
	OTLPEndpoint    string
}

// Load parses configuration values from the current process environment.
//
// Optional fields fall back to defaults. Malformed values are collected and
// reported together. The session secret is only required by the HTTP server,
// see ValidateServer.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:        8080,
		StorageDriver:   DriverSQLite,
		SQLiteDSN:       "file:portal.db",
		SessionTimeout:  24 * time.Hour,
		RememberTimeout: 30 * 24 * time.Hour,
		MonitorInterval: 5 * time.Minute,
		LoginDelay:      time.Second,
		ProtectedPages:  []string{"/profile.html", "/intern.html"},
		LogLevel:        slog.LevelInfo,
	}

	invalid := make([]string, 0, 4)

	if portValue := env("PORTAL_HTTP_PORT"); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "PORTAL_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if driver := strings.ToLower(env("PORTAL_STORAGE_DRIVER")); driver != "" {
		switch driver {
		case DriverSQLite, DriverMemory, DriverPostgres:
			cfg.StorageDriver = driver
		default:
			invalid = append(invalid, "PORTAL_STORAGE_DRIVER")
		}
	}

	if dsn := env("PORTAL_SQLITE_DSN"); dsn != "" {
		cfg.SQLiteDSN = dsn
	}
	cfg.PostgresDSN = env("PORTAL_POSTGRES_DSN")
	cfg.SessionSecret = env("PORTAL_SESSION_SECRET")

	durations := []struct {
		key    string
		target *time.Duration
		zeroOK bool
	}{
		{"PORTAL_SESSION_TIMEOUT", &cfg.SessionTimeout, false},
		{"PORTAL_REMEMBER_TIMEOUT", &cfg.RememberTimeout, false},
		{"PORTAL_MONITOR_INTERVAL", &cfg.MonitorInterval, false},
		{"PORTAL_LOGIN_DELAY", &cfg.LoginDelay, true},
	}
	for _, d := range durations {
		value := env(d.key)
		if value == "" {
			continue
		}
		parsed, err := time.ParseDuration(value)
		if err != nil || parsed < 0 || (parsed == 0 && !d.zeroOK) {
			invalid = append(invalid, d.key)
			continue
		}
		*d.target = parsed
	}

	if pages := env("PORTAL_PROTECTED_PAGES"); pages != "" {
		cfg.ProtectedPages = splitList(pages)
	}
	cfg.CatalogPath = env("PORTAL_CATALOG_PATH")
	cfg.NATSURL = env("PORTAL_NATS_URL")
	cfg.OTLPEndpoint = env("OTEL_EXPORTER_OTLP_ENDPOINT")

	if levelValue := env("PORTAL_LOG_LEVEL"); levelValue != "" {
		level, err := logging.ParseLevel(levelValue)
		if err != nil {
			invalid = append(invalid, "PORTAL_LOG_LEVEL")
		} else {
			cfg.LogLevel = level
		}
	}

	if cfg.StorageDriver == DriverPostgres && cfg.PostgresDSN == "" {
		invalid = append(invalid, "PORTAL_POSTGRES_DSN")
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}
	return cfg, nil
}

// ValidateServer reports variables the HTTP server needs that are unset.
func (c Config) ValidateServer() error {
	missing := make([]string, 0, 1)
	if c.SessionSecret == "" {
		missing = append(missing, "PORTAL_SESSION_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}
	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
