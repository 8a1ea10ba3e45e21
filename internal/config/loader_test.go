package config

import (
	"log/slog"
	"os"
	"slices"
	"strings"
	"testing"
	"time"
)

var portalVariables = []string{
	"PORTAL_HTTP_PORT",
	"PORTAL_STORAGE_DRIVER",
	"PORTAL_SQLITE_DSN",
	"PORTAL_POSTGRES_DSN",
	"PORTAL_SESSION_SECRET",
	"PORTAL_SESSION_TIMEOUT",
	"PORTAL_REMEMBER_TIMEOUT",
	"PORTAL_MONITOR_INTERVAL",
	"PORTAL_LOGIN_DELAY",
	"PORTAL_PROTECTED_PAGES",
	"PORTAL_CATALOG_PATH",
	"PORTAL_NATS_URL",
	"PORTAL_LOG_LEVEL",
	"OTEL_EXPORTER_OTLP_ENDPOINT",
}

func clearEnvironment(t *testing.T) {
	t.Helper()
	for _, key := range portalVariables {
		// Setenv registers restoration, then the variable is removed.
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}
}

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearEnvironment(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.StorageDriver != DriverSQLite || cfg.SQLiteDSN != "file:portal.db" {
			t.Fatalf("unexpected storage defaults: %q %q", cfg.StorageDriver, cfg.SQLiteDSN)
		}
		if cfg.SessionTimeout != 24*time.Hour || cfg.RememberTimeout != 720*time.Hour {
			t.Fatalf("unexpected timeouts %s %s", cfg.SessionTimeout, cfg.RememberTimeout)
		}
		if cfg.MonitorInterval != 5*time.Minute || cfg.LoginDelay != time.Second {
			t.Fatalf("unexpected intervals %s %s", cfg.MonitorInterval, cfg.LoginDelay)
		}
		if !slices.Equal(cfg.ProtectedPages, []string{"/profile.html", "/intern.html"}) {
			t.Fatalf("unexpected protected pages %v", cfg.ProtectedPages)
		}
		if cfg.LogLevel != slog.LevelInfo {
			t.Fatalf("expected info level, got %v", cfg.LogLevel)
		}
	})

	t.Run("server requires a session secret", func(t *testing.T) {
		clearEnvironment(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		err = cfg.ValidateServer()
		if err == nil {
			t.Fatalf("expected error when the secret is missing")
		}
		expected := "required environment variables are not set: PORTAL_SESSION_SECRET"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}

		t.Setenv("PORTAL_SESSION_SECRET", "  super-secret ")
		cfg, err = Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.SessionSecret != "super-secret" || cfg.ValidateServer() != nil {
			t.Fatalf("expected trimmed secret to satisfy the server, got %q", cfg.SessionSecret)
		}
	})

	t.Run("parses duration and list fields", func(t *testing.T) {
		clearEnvironment(t)
		t.Setenv("PORTAL_HTTP_PORT", "9090")
		t.Setenv("PORTAL_STORAGE_DRIVER", "Memory")
		t.Setenv("PORTAL_SESSION_TIMEOUT", "2h")
		t.Setenv("PORTAL_REMEMBER_TIMEOUT", "168h")
		t.Setenv("PORTAL_MONITOR_INTERVAL", "30s")
		t.Setenv("PORTAL_LOGIN_DELAY", "0s")
		t.Setenv("PORTAL_PROTECTED_PAGES", " /a.html, ,/b.html ")
		t.Setenv("PORTAL_LOG_LEVEL", "debug")
		t.Setenv("PORTAL_NATS_URL", "nats://localhost:4222")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 || cfg.StorageDriver != DriverMemory {
			t.Fatalf("unexpected port/driver %d %q", cfg.HTTPPort, cfg.StorageDriver)
		}
		if cfg.SessionTimeout != 2*time.Hour || cfg.RememberTimeout != 168*time.Hour {
			t.Fatalf("unexpected timeouts %s %s", cfg.SessionTimeout, cfg.RememberTimeout)
		}
		if cfg.MonitorInterval != 30*time.Second || cfg.LoginDelay != 0 {
			t.Fatalf("unexpected intervals %s %s", cfg.MonitorInterval, cfg.LoginDelay)
		}
		if !slices.Equal(cfg.ProtectedPages, []string{"/a.html", "/b.html"}) {
			t.Fatalf("unexpected protected pages %v", cfg.ProtectedPages)
		}
		if cfg.LogLevel != slog.LevelDebug || cfg.NATSURL != "nats://localhost:4222" {
			t.Fatalf("unexpected level/nats %v %q", cfg.LogLevel, cfg.NATSURL)
		}
	})

	t.Run("reports every invalid value", func(t *testing.T) {
		clearEnvironment(t)
		t.Setenv("PORTAL_HTTP_PORT", "http")
		t.Setenv("PORTAL_STORAGE_DRIVER", "redis")
		t.Setenv("PORTAL_SESSION_TIMEOUT", "0s")
		t.Setenv("PORTAL_LOG_LEVEL", "loud")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for invalid values")
		}
		for _, key := range []string{"PORTAL_HTTP_PORT", "PORTAL_STORAGE_DRIVER", "PORTAL_SESSION_TIMEOUT", "PORTAL_LOG_LEVEL"} {
			if !strings.Contains(err.Error(), key) {
				t.Fatalf("expected %s in %q", key, err.Error())
			}
		}
	})

	t.Run("postgres driver needs a DSN", func(t *testing.T) {
		clearEnvironment(t)
		t.Setenv("PORTAL_STORAGE_DRIVER", "postgres")

		_, err := Load()
		if err == nil || !strings.Contains(err.Error(), "PORTAL_POSTGRES_DSN") {
			t.Fatalf("expected missing DSN error, got %v", err)
		}
	})
}
