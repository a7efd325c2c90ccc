package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		unset := []string{
			"AGENDA_HTTP_PORT",
			"AGENDA_SQLITE_DSN",
			"AGENDA_SESSION_TTL",
		}
		for _, key := range unset {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		const secret = "super-secret"
		t.Setenv("AGENDA_SESSION_SECRET", secret)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:agenda.db?_foreign_keys=on" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SessionTTL != 24*time.Hour {
			t.Fatalf("expected default session TTL 24h, got %s", cfg.SessionTTL)
		}
		if cfg.SessionSecret != secret {
			t.Fatalf("expected session secret to be %q, got %q", secret, cfg.SessionSecret)
		}
	})

	t.Run("errors when the session secret is missing", func(t *testing.T) {
		for _, key := range []string{
			"AGENDA_SESSION_SECRET",
			"AGENDA_HTTP_PORT",
			"AGENDA_SQLITE_DSN",
		} {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error when required values are missing")
		}
		if !strings.Contains(err.Error(), "AGENDA_SESSION_SECRET") {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("parses duration and numeric fields", func(t *testing.T) {
		t.Setenv("AGENDA_SESSION_SECRET", "secret-value")
		t.Setenv("AGENDA_HTTP_PORT", "9090")
		t.Setenv("AGENDA_SQLITE_DSN", "file:/tmp/agenda.db")
		t.Setenv("AGENDA_SESSION_TTL", "12h")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected HTTP port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:/tmp/agenda.db" {
			t.Fatalf("unexpected DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SessionTTL != 12*time.Hour {
			t.Fatalf("expected session TTL 12h, got %s", cfg.SessionTTL)
		}
	})

	t.Run("collects invalid values into one error", func(t *testing.T) {
		t.Setenv("AGENDA_SESSION_SECRET", "secret-value")
		t.Setenv("AGENDA_HTTP_PORT", "not-a-port")
		t.Setenv("AGENDA_SESSION_TTL", "-1h")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for invalid values")
		}
		if !strings.Contains(err.Error(), "AGENDA_HTTP_PORT") || !strings.Contains(err.Error(), "AGENDA_SESSION_TTL") {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})
}
