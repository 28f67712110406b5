package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeDotEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}
	return path
}

func unsetForTest(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_DefaultsWithoutDotEnv(t *testing.T) {
	unsetForTest(t, "APP_ENV", "PORT", "DB_PATH", "DB_OPEN_TIMEOUT", "LOG_LEVEL", "TEMPLATES_DIR", "SEED_SAMPLES")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" || cfg.DBPath != "./dev.db" || cfg.DBOpenTimeout != 30*time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.IsDev() {
		t.Fatalf("expected dev mode by default")
	}
}

func TestLoad_ReadsDotEnvAndIgnoresNoise(t *testing.T) {
	unsetForTest(t, "APP_ENV", "PORT", "DB_PATH", "SEED_SAMPLES")

	path := writeDotEnv(t, `
# comment

PORT=9090
export DB_PATH=/tmp/pricedesk.db
APP_ENV="prod"
SEED_SAMPLES='true'
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Fatalf("Port=%q, want %q", cfg.Port, "9090")
	}
	if cfg.DBPath != "/tmp/pricedesk.db" {
		t.Fatalf("DBPath=%q", cfg.DBPath)
	}
	if cfg.IsDev() {
		t.Fatalf("expected prod mode")
	}
	if !cfg.SeedSamples {
		t.Fatalf("expected SeedSamples=true")
	}
}

func TestLoad_DoesNotOverwriteExistingEnv(t *testing.T) {
	unsetForTest(t, "DB_PATH")
	t.Setenv("PORT", "7000")

	path := writeDotEnv(t, "PORT=9090\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "7000" {
		t.Fatalf("Port=%q, want %q", cfg.Port, "7000")
	}
}

func TestLoad_RejectsMalformedDuration(t *testing.T) {
	t.Setenv("DB_OPEN_TIMEOUT", "soon")

	if _, err := Load(""); err == nil {
		t.Fatalf("expected parse error")
	}
}
