package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.env")
	content := "APP_PORT=9090\n" +
		"DB_DRIVER=SQLite\n" +
		"DB_SQLITE_PATH=/tmp/onboarding-test.db\n" +
		"JWT_SECRET=secret\n" +
		"JWT_ACCESS_EXPIRY=30m\n" +
		"JWT_REFRESH_EXPIRY=garbage\n" +
		"ONBOARDING_MIN_DOCUMENTS=4\n" +
		"ONBOARDING_VERIFICATION_MODE= Strict \n" +
		"UPLOAD_MAX_BYTES=2048\n" +
		"REDIS_URL=redis://cache:6379/1\n" +
		"REDIS_DIAL_TIMEOUT=2s\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.App.Port != "9090" {
		t.Fatalf("expected port 9090, got %q", cfg.App.Port)
	}
	if cfg.DB.Driver != DriverSQLite {
		t.Fatalf("expected sqlite driver, got %q", cfg.DB.Driver)
	}
	if cfg.JWT.AccessExpiry != 30*time.Minute {
		t.Fatalf("expected 30m access expiry, got %s", cfg.JWT.AccessExpiry)
	}
	if cfg.JWT.RefreshExpiry != 7*24*time.Hour {
		t.Fatalf("expected fallback refresh expiry, got %s", cfg.JWT.RefreshExpiry)
	}
	if cfg.Onboarding.MinDocuments != 4 || cfg.Onboarding.VerificationMode != "strict" {
		t.Fatalf("unexpected onboarding config: %+v", cfg.Onboarding)
	}
	if cfg.Upload.MaxBytes != 2048 {
		t.Fatalf("expected max bytes 2048, got %d", cfg.Upload.MaxBytes)
	}
	if cfg.Redis.URL != "redis://cache:6379/1" || cfg.Redis.DialTimeout != 2*time.Second {
		t.Fatalf("unexpected redis config: %+v", cfg.Redis)
	}
}

func TestLoadConfigWithoutFileUsesDefaultsAndEnv(t *testing.T) {
	t.Setenv("APP_PORT", "7070")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.App.Port != "7070" {
		t.Fatalf("expected env override, got %q", cfg.App.Port)
	}
	if cfg.DB.Driver != DriverPostgres {
		t.Fatalf("expected default driver, got %q", cfg.DB.Driver)
	}
	if cfg.Onboarding.MinDocuments != 3 || cfg.Onboarding.VerificationMode != "independent" {
		t.Fatalf("unexpected default onboarding config: %+v", cfg.Onboarding)
	}
	if cfg.Notify.Stream != "onboarding:events" {
		t.Fatalf("unexpected default stream %q", cfg.Notify.Stream)
	}
	if cfg.Redis.PoolSize != 20 || cfg.Redis.DialTimeout != 5*time.Second {
		t.Fatalf("unexpected default redis pool: %+v", cfg.Redis)
	}
}
