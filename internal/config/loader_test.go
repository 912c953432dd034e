package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var portalKeys = []string{
	"CAMPUS_BACKEND_URL",
	"CAMPUS_BACKEND_TIMEOUT",
	"CAMPUS_HTTP_PORT",
	"CAMPUS_SESSION_STORE",
	"CAMPUS_SQLITE_DSN",
	"CAMPUS_BOLT_PATH",
	"CAMPUS_PROFILE",
	"CAMPUS_CATALOG_TTL",
	"CAMPUS_CORS_ORIGINS",
	"CAMPUS_LOG_LEVEL",
	"CAMPUS_LOG_FORMAT",
	"CAMPUS_LOG_FILE",
	"CAMPUS_DEV_JWT_SECRET",
	"CAMPUS_DEV_HTTP_PORT",
	"CAMPUS_DEV_TOKEN_TTL",
}

// isolate clears the variables and points the .env lookup at an empty file.
func isolate(t *testing.T) {
	t.Helper()
	for _, key := range portalKeys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}
	empty := filepath.Join(t.TempDir(), "empty.env")
	if err := os.WriteFile(empty, nil, 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("CAMPUS_ENV_FILE", empty)
}

func TestLoad(t *testing.T) {
	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		isolate(t)
		t.Setenv("CAMPUS_BACKEND_URL", "http://localhost:8090/")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.BackendURL != "http://localhost:8090" {
			t.Fatalf("unexpected backend url %q", cfg.BackendURL)
		}
		if cfg.HTTPPort != 8081 || cfg.SessionStore != StoreSQLite || cfg.CatalogTTL != 5*time.Minute {
			t.Fatalf("unexpected defaults: %+v", cfg)
		}
		if cfg.BackendTimeout != 30*time.Second || cfg.LogLevel != "info" || cfg.LogFormat != "json" {
			t.Fatalf("unexpected defaults: %+v", cfg)
		}
		if cfg.BoltPath != DefaultBoltPath() {
			t.Fatalf("unexpected bolt path %q", cfg.BoltPath)
		}
	})

	t.Run("errors when required values are missing", func(t *testing.T) {
		isolate(t)

		_, err := Load()
		if err == nil {
			t.Fatal("expected error when required values are missing")
		}
		expected := "required environment variables are not set: CAMPUS_BACKEND_URL"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("reports every invalid value", func(t *testing.T) {
		isolate(t)
		t.Setenv("CAMPUS_BACKEND_URL", "ftp://files")
		t.Setenv("CAMPUS_HTTP_PORT", "eighty")
		t.Setenv("CAMPUS_SESSION_STORE", "cookie")
		t.Setenv("CAMPUS_CATALOG_TTL", "0s")

		_, err := Load()
		if err == nil {
			t.Fatal("expected error for invalid values")
		}
		expected := "environment variables have invalid values: CAMPUS_HTTP_PORT, CAMPUS_SESSION_STORE, CAMPUS_CATALOG_TTL, CAMPUS_BACKEND_URL"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("parses explicit values", func(t *testing.T) {
		isolate(t)
		t.Setenv("CAMPUS_BACKEND_URL", "https://api.college.example")
		t.Setenv("CAMPUS_HTTP_PORT", "9000")
		t.Setenv("CAMPUS_SESSION_STORE", "Bolt")
		t.Setenv("CAMPUS_PROFILE", "tab-7")
		t.Setenv("CAMPUS_CATALOG_TTL", "90s")
		t.Setenv("CAMPUS_BACKEND_TIMEOUT", "0s")
		t.Setenv("CAMPUS_CORS_ORIGINS", "http://localhost:3000, https://portal.example ,")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.HTTPPort != 9000 || cfg.SessionStore != StoreBolt || cfg.Profile != "tab-7" {
			t.Fatalf("unexpected config: %+v", cfg)
		}
		if cfg.CatalogTTL != 90*time.Second || cfg.BackendTimeout != 0 {
			t.Fatalf("unexpected durations: %+v", cfg)
		}
		if diff := cmp.Diff([]string{"http://localhost:3000", "https://portal.example"}, cfg.CORSOrigins); diff != "" {
			t.Fatalf("origins mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("reads a dotenv file", func(t *testing.T) {
		isolate(t)
		path := filepath.Join(t.TempDir(), "portal.env")
		if err := os.WriteFile(path, []byte("CAMPUS_BACKEND_URL=http://from-file:1234\nCAMPUS_HTTP_PORT=7000\n"), 0o600); err != nil {
			t.Fatalf("write env file: %v", err)
		}
		t.Setenv("CAMPUS_ENV_FILE", path)
		t.Setenv("CAMPUS_HTTP_PORT", "7001")
		t.Cleanup(func() { _ = os.Unsetenv("CAMPUS_BACKEND_URL") })

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.BackendURL != "http://from-file:1234" {
			t.Fatalf("backend url = %q", cfg.BackendURL)
		}
		if cfg.HTTPPort != 7001 {
			t.Fatalf("environment must win over the file, got port %d", cfg.HTTPPort)
		}
	})
}

func TestLoadDevBackend(t *testing.T) {
	isolate(t)
	if _, err := LoadDevBackend(); err == nil {
		t.Fatal("expected error without a JWT secret")
	}

	t.Setenv("CAMPUS_DEV_JWT_SECRET", "dev-secret")
	cfg, err := LoadDevBackend()
	if err != nil {
		t.Fatalf("LoadDevBackend returned error: %v", err)
	}
	if cfg.HTTPPort != 8090 || cfg.TokenTTL != 2*time.Hour || cfg.JWTSecret != "dev-secret" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
